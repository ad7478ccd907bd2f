package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
	"go.uber.org/zap"

	// Internal packages
	"github.com/seu-repo/pdv-varejo/internal/adapter/cache"
	extemail "github.com/seu-repo/pdv-varejo/internal/adapter/external/email"
	"github.com/seu-repo/pdv-varejo/internal/adapter/external/payment"
	"github.com/seu-repo/pdv-varejo/internal/adapter/http/fiber/handlers"
	"github.com/seu-repo/pdv-varejo/internal/adapter/http/fiber/middleware"
	"github.com/seu-repo/pdv-varejo/internal/adapter/queue"
	"github.com/seu-repo/pdv-varejo/internal/adapter/storage/postgres"
	"github.com/seu-repo/pdv-varejo/internal/adapter/vault"
	"github.com/seu-repo/pdv-varejo/internal/domain"
	"github.com/seu-repo/pdv-varejo/internal/observability/telemetry"
	"github.com/seu-repo/pdv-varejo/internal/ports"
	"github.com/seu-repo/pdv-varejo/internal/service/cart"
	"github.com/seu-repo/pdv-varejo/internal/service/catalog"
	"github.com/seu-repo/pdv-varejo/internal/service/checkout"
	"github.com/seu-repo/pdv-varejo/internal/service/customer"
	"github.com/seu-repo/pdv-varejo/internal/service/email"
	"github.com/seu-repo/pdv-varejo/internal/service/health"
	"github.com/seu-repo/pdv-varejo/internal/service/receipt"
	"github.com/seu-repo/pdv-varejo/internal/service/voucher"
	"github.com/seu-repo/pdv-varejo/pkg/config"
)

const (
	serviceName    = "pdv-varejo"
	serviceVersion = "v1.0.0"
)

func main() {
	// 1. Initialize Logger
	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer logger.Sync()

	logger.Info("Starting PDV Varejo",
		zap.String("service", serviceName),
		zap.String("version", serviceVersion),
	)

	// 2. Load Configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	// 3. Resolve secrets from Vault when enabled
	if cfg.Vault.Enabled {
		sm, err := vault.NewSecretManager(cfg.Vault.Address, cfg.Vault.Token)
		if err != nil {
			logger.Fatal("Failed to connect to Vault", zap.Error(err))
		}
		if url, err := sm.GetDatabaseCredentials(); err == nil {
			cfg.Database.URL = url
		}
		if key, err := sm.GetStripeAPIKey(); err == nil {
			cfg.Payment.Stripe.SecretKey = key
		}
		if key, err := sm.GetSendGridAPIKey(); err == nil {
			cfg.Notification.Email.APIKey = key
		}
	}

	// 4. Initialize OpenTelemetry (Distributed Tracing)
	if cfg.OpenTelemetry.Enabled {
		tracerProvider, err := telemetry.InitTracer(serviceName, cfg.OpenTelemetry.Jaeger.Endpoint)
		if err != nil {
			logger.Fatal("Failed to initialize tracer", zap.Error(err))
		}
		defer func() {
			if err := tracerProvider.Shutdown(context.Background()); err != nil {
				logger.Error("Error shutting down tracer provider", zap.Error(err))
			}
		}()
	}

	// 5. Initialize PostgreSQL Connection Pool
	db, err := postgres.NewConnection(cfg.Database.URL, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer postgres.Close(db)

	if cfg.Database.AutoMigrate {
		if err := postgres.RunMigrations(db); err != nil {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// 6. Initialize Cache (Redis, with in-memory fallback)
	var productCache ports.Cache
	if cfg.Redis.URL != "" {
		productCache, err = cache.NewRedisCache(cfg.Redis.URL, logger)
		if err != nil {
			logger.Warn("Redis unavailable, using local cache", zap.Error(err))
			productCache = cache.NewLocalCache(time.Minute, logger)
		}
	} else {
		productCache = cache.NewLocalCache(time.Minute, logger)
	}
	defer productCache.Close()

	// 7. Initialize Message Queue
	messageQueue, err := queue.New(cfg.Queue.Driver, cfg.Queue.URL(), logger)
	if err != nil {
		logger.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer messageQueue.Close()

	// 8. Initialize Repositories and the Transaction Manager
	productRepo := postgres.NewProductRepository(db, logger)
	voucherRepo := postgres.NewVoucherRepository(db, logger)
	customerRepo := postgres.NewCustomerRepository(db, logger)
	txManager := postgres.NewTxManager(db, logger)

	// 9. Initialize Services (Business Logic Layer)
	cartManager := cart.NewManager(cfg.Session.TTL, cfg.Session.CleanupInterval, logger)
	defer cartManager.Close()

	catalogService := catalog.NewService(productRepo, productCache, cfg.Cache.ProductTTL, logger)
	voucherService := voucher.NewService(voucherRepo, logger)
	customerService := customer.NewService(customerRepo, logger)

	paymentGateway := payment.NewStripeService(cfg.Payment.Stripe.SecretKey, logger)
	checkoutService := checkout.NewService(
		cartManager, txManager, paymentGateway, messageQueue, cfg.Payment.Stripe.Currency, logger)

	receiptService := receipt.NewFormatter(domain.ReceiptHeader{
		StoreName: cfg.Store.Name,
		Address:   cfg.Store.Address,
		Phone:     cfg.Store.Phone,
		TaxID:     cfg.Store.TaxID,
	})

	// 10. Start the receipt email worker
	if cfg.Notification.Email.Enabled {
		sender := extemail.NewSendGridSender(
			cfg.Notification.Email.APIKey,
			cfg.Notification.Email.From,
			cfg.Notification.Email.FromName,
		)
		worker := email.NewWorker(messageQueue, checkoutService, customerRepo, receiptService, sender, logger)
		if err := worker.Start(); err != nil {
			logger.Fatal("Failed to start receipt email worker", zap.Error(err))
		}
	}

	// 11. Initialize Fiber HTTP Server
	app := fiber.New(fiber.Config{
		AppName:               serviceName,
		ServerHeader:          serviceName,
		DisableStartupMessage: true,
		ErrorHandler:          middleware.ErrorHandler(logger),
	})

	// Global Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New())
	if cfg.CORS.Enabled {
		app.Use(middleware.NewCORS(cfg.CORS))
	} else {
		app.Use(middleware.DefaultCORS())
	}
	if cfg.CircuitBreaker.Enabled {
		app.Use(middleware.CircuitBreaker(logger))
	}

	// Health Check Endpoints
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("Failed to get underlying SQL DB", zap.Error(err))
	}
	healthService := health.NewService(&health.Config{
		Version:  serviceVersion,
		DB:       sqlDB,
		Cache:    productCache,
		QueueURL: cfg.Queue.URL(),
	}, logger)
	health.NewFiberHandler(healthService).RegisterRoutes(app)

	// Metrics endpoint for Prometheus
	if cfg.Prometheus.Enabled {
		path := cfg.Prometheus.Path
		if path == "" {
			path = "/metrics"
		}
		app.Get(path, func(c *fiber.Ctx) error {
			handler := fasthttpadaptor.NewFastHTTPHandler(promhttp.Handler())
			handler(c.Context())
			return nil
		})
	}

	// API v1 Routes
	v1 := app.Group("/api/v1")

	// Cart session routes
	sessionHandler := handlers.NewSessionHandler(cartManager, catalogService, voucherService, logger)
	v1.Post("/sessions", sessionHandler.Create)
	v1.Get("/sessions/:id", sessionHandler.Get)
	v1.Post("/sessions/:id/lines", sessionHandler.AddLine)
	v1.Patch("/sessions/:id/lines/:productId", sessionHandler.UpdateLine)
	v1.Delete("/sessions/:id/lines/:productId", sessionHandler.RemoveLine)
	v1.Delete("/sessions/:id/lines", sessionHandler.Clear)
	v1.Delete("/sessions/:id", sessionHandler.Destroy)

	// Checkout routes
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService, receiptService, logger)
	v1.Post("/transactions", checkoutHandler.Submit)
	v1.Get("/transactions/:id/receipt", checkoutHandler.Receipt)
	v1.Get("/transactions/:id", checkoutHandler.Get)
	v1.Get("/transactions", checkoutHandler.List)

	// Voucher routes
	voucherHandler := handlers.NewVoucherHandler(voucherService, logger)
	v1.Get("/vouchers/:code", voucherHandler.Get)
	v1.Post("/vouchers/:code/cancel", voucherHandler.Cancel)
	v1.Post("/vouchers", voucherHandler.Issue)

	// Catalog routes
	catalogHandler := handlers.NewCatalogHandler(catalogService, logger)
	v1.Get("/products", catalogHandler.List)
	v1.Get("/products/:id", catalogHandler.Get)
	v1.Post("/products", catalogHandler.Create)
	v1.Patch("/products/:id/stock", catalogHandler.AdjustStock)

	// Customer routes
	customerHandler := handlers.NewCustomerHandler(customerService, logger)
	v1.Get("/customers", customerHandler.Find)
	v1.Post("/customers", customerHandler.Register)

	// 12. Track the cart session gauge
	go func() {
		ticker := time.NewTicker(15 * time.Second)
		defer ticker.Stop()
		for range ticker.C {
			telemetry.ActiveCartSessions.Set(float64(cartManager.ActiveSessions()))
		}
	}()

	// 13. Start HTTP Server
	go func() {
		logger.Info("Starting HTTP Server", zap.Int("port", cfg.HTTP.Port))
		if err := app.Listen(fmt.Sprintf(":%d", cfg.HTTP.Port)); err != nil {
			logger.Fatal("HTTP Server failed", zap.Error(err))
		}
	}()

	// 14. Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited gracefully")
}
