package integration

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"testing"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	_ "github.com/lib/pq"

	"github.com/seu-repo/pdv-varejo/internal/adapter/storage/postgres"
)

// TestEnv holds the shared test environment resources
type TestEnv struct {
	Gorm     *gorm.DB
	DB       *sql.DB
	Redis    *goredis.Client
	RedisURL string

	PostgresContainer testcontainers.Container
	RedisContainer    testcontainers.Container
	Logger            *zap.Logger
	ctx               context.Context
}

var testEnv *TestEnv

// SetupTestEnvironment initializes the test environment. External services
// from DATABASE_URL/REDIS_URL are preferred (CI); otherwise containers are
// started locally.
func SetupTestEnvironment(t *testing.T) *TestEnv {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	if testEnv != nil {
		return testEnv
	}

	ctx := context.Background()

	if os.Getenv("DATABASE_URL") != "" {
		return setupExternalServices(t, ctx)
	}
	return setupContainers(t, ctx)
}

func setupExternalServices(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	gormDB := connectDatabase(t, os.Getenv("DATABASE_URL"), logger)

	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://localhost:6379"
	}
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		t.Fatalf("Failed to parse Redis URL: %v", err)
	}
	redisClient := goredis.NewClient(opt)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to Redis: %v", err)
	}

	testEnv = &TestEnv{
		Gorm:     gormDB,
		DB:       rawDB(t, os.Getenv("DATABASE_URL")),
		Redis:    redisClient,
		RedisURL: redisURL,
		Logger:   logger,
		ctx:      ctx,
	}
	return testEnv
}

func setupContainers(t *testing.T, ctx context.Context) *TestEnv {
	logger, _ := zap.NewDevelopment()

	// Start Postgres container
	postgresContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:16-alpine"),
		tcpostgres.WithDatabase("pdv_test"),
		tcpostgres.WithUsername("pdv"),
		tcpostgres.WithPassword("pdv_test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start postgres container: %v", err)
	}

	pgHost, err := postgresContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get postgres host: %v", err)
	}
	pgPort, err := postgresContainer.MappedPort(ctx, "5432")
	if err != nil {
		t.Fatalf("Failed to get postgres port: %v", err)
	}
	pgConnStr := fmt.Sprintf("postgres://pdv:pdv_test@%s:%s/pdv_test?sslmode=disable", pgHost, pgPort.Port())

	gormDB := connectDatabase(t, pgConnStr, logger)

	// Start Redis container
	redisContainer, err := tcredis.RunContainer(ctx,
		testcontainers.WithImage("redis:7-alpine"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		t.Fatalf("Failed to start redis container: %v", err)
	}

	redisHost, err := redisContainer.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get redis host: %v", err)
	}
	redisPort, err := redisContainer.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get redis port: %v", err)
	}

	redisURL := fmt.Sprintf("redis://%s:%s", redisHost, redisPort.Port())
	redisClient := goredis.NewClient(&goredis.Options{
		Addr: fmt.Sprintf("%s:%s", redisHost, redisPort.Port()),
	})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		t.Fatalf("Failed to connect to redis: %v", err)
	}

	testEnv = &TestEnv{
		Gorm:              gormDB,
		DB:                rawDB(t, pgConnStr),
		Redis:             redisClient,
		RedisURL:          redisURL,
		PostgresContainer: postgresContainer,
		RedisContainer:    redisContainer,
		Logger:            logger,
		ctx:               ctx,
	}
	return testEnv
}

// connectDatabase opens the GORM pool the adapters use and applies the schema.
func connectDatabase(t *testing.T, url string, logger *zap.Logger) *gorm.DB {
	var gormDB *gorm.DB
	var err error
	for i := 0; i < 30; i++ {
		gormDB, err = postgres.NewConnection(url, logger)
		if err == nil {
			break
		}
		time.Sleep(time.Second)
	}
	if err != nil {
		t.Fatalf("Failed to connect to postgres: %v", err)
	}
	if err := postgres.RunMigrations(gormDB); err != nil {
		t.Fatalf("Failed to run migrations: %v", err)
	}
	return gormDB
}

// rawDB opens a plain database/sql handle for fixture cleanup and direct
// row assertions.
func rawDB(t *testing.T, url string) *sql.DB {
	db, err := sql.Open("postgres", url)
	if err != nil {
		t.Fatalf("Failed to open raw connection: %v", err)
	}
	if err := db.Ping(); err != nil {
		t.Fatalf("Failed to ping raw connection: %v", err)
	}
	return db
}

// CleanDatabase truncates all tables between tests
func CleanDatabase(t *testing.T, db *sql.DB) {
	tables := []string{
		"transaction_lines",
		"transactions",
		"vouchers",
		"products",
		"customers",
	}

	for _, table := range tables {
		if _, err := db.Exec(fmt.Sprintf("TRUNCATE TABLE %s CASCADE", table)); err != nil {
			t.Logf("Failed to truncate %s: %v", table, err)
		}
	}
}

// FlushRedis clears all Redis keys
func FlushRedis(t *testing.T, client *goredis.Client) {
	ctx := context.Background()
	if err := client.FlushAll(ctx).Err(); err != nil {
		t.Fatalf("Failed to flush redis: %v", err)
	}
}
