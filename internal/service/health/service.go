package health

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/seu-repo/pdv-varejo/internal/ports"
)

// Status represents the health status
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
	StatusDegraded  Status = "degraded"
)

// CheckResult represents the result of a health check
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration_ms"`
	Timestamp time.Time     `json:"timestamp"`
}

// HealthResponse represents the overall health response
type HealthResponse struct {
	Status    Status    `json:"status"`
	Version   string    `json:"version,omitempty"`
	Uptime    string    `json:"uptime,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadyResponse represents the readiness response
type ReadyResponse struct {
	Ready     bool                   `json:"ready"`
	Status    Status                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Checks    map[string]CheckResult `json:"checks"`
}

// Checker defines a health check function
type Checker func(ctx context.Context) CheckResult

// Service handles health checks
type Service struct {
	startTime time.Time
	version   string
	checkers  map[string]Checker
	log       *zap.Logger
	mu        sync.RWMutex
}

// Config holds health service configuration
type Config struct {
	Version  string
	DB       *sql.DB
	Cache    ports.Cache
	QueueURL string
}

// NewService creates a new health service
func NewService(config *Config, log *zap.Logger) *Service {
	s := &Service{
		startTime: time.Now(),
		version:   config.Version,
		checkers:  make(map[string]Checker),
		log:       log,
	}

	if config.DB != nil {
		s.RegisterChecker("database", databaseChecker(config.DB, log))
	}
	if config.Cache != nil {
		s.RegisterChecker("cache", cacheChecker(config.Cache, log))
	}
	if config.QueueURL != "" {
		s.RegisterChecker("queue", queueChecker(config.QueueURL))
	}

	return s
}

// RegisterChecker registers a custom health checker
func (s *Service) RegisterChecker(name string, checker Checker) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.checkers[name] = checker
	s.log.Info("Registered health checker", zap.String("name", name))
}

// Health performs a basic liveness check
func (s *Service) Health(ctx context.Context) *HealthResponse {
	return &HealthResponse{
		Status:    StatusHealthy,
		Version:   s.version,
		Uptime:    time.Since(s.startTime).String(),
		Timestamp: time.Now(),
	}
}

// Ready performs a comprehensive readiness check
func (s *Service) Ready(ctx context.Context) *ReadyResponse {
	s.mu.RLock()
	checkers := make(map[string]Checker, len(s.checkers))
	for k, v := range s.checkers {
		checkers[k] = v
	}
	s.mu.RUnlock()

	// Run all checks concurrently
	results := make(map[string]CheckResult)
	var wg sync.WaitGroup
	var mu sync.Mutex

	for name, checker := range checkers {
		wg.Add(1)
		go func(name string, checker Checker) {
			defer wg.Done()

			checkCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			defer cancel()

			result := checker(checkCtx)

			mu.Lock()
			results[name] = result
			mu.Unlock()
		}(name, checker)
	}

	wg.Wait()

	overallStatus := StatusHealthy
	allReady := true

	for _, result := range results {
		if result.Status == StatusUnhealthy {
			overallStatus = StatusUnhealthy
			allReady = false
		} else if result.Status == StatusDegraded && overallStatus != StatusUnhealthy {
			overallStatus = StatusDegraded
		}
	}

	return &ReadyResponse{
		Ready:     allReady,
		Status:    overallStatus,
		Timestamp: time.Now(),
		Checks:    results,
	}
}

func databaseChecker(db *sql.DB, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		result := CheckResult{Name: "database", Timestamp: start}

		err := db.PingContext(ctx)
		result.Duration = time.Since(start)

		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Database health check failed", zap.Error(err))
		} else {
			result.Status = StatusHealthy
			result.Message = "connection ok"
		}
		return result
	}
}

// cacheChecker reports degraded rather than unhealthy: the engine keeps
// selling without its product cache.
func cacheChecker(cache ports.Cache, log *zap.Logger) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		result := CheckResult{Name: "cache", Timestamp: start}

		err := cache.Ping()
		result.Duration = time.Since(start)

		if err != nil {
			result.Status = StatusDegraded
			result.Message = fmt.Sprintf("ping failed: %v", err)
			log.Warn("Cache health check failed", zap.Error(err))
		} else {
			result.Status = StatusHealthy
			result.Message = "connection ok"
		}
		return result
	}
}

func queueChecker(url string) Checker {
	return func(ctx context.Context) CheckResult {
		start := time.Now()
		return CheckResult{
			Name:      "queue",
			Timestamp: start,
			Duration:  time.Since(start),
			Status:    StatusHealthy,
			Message:   "configured",
		}
	}
}
