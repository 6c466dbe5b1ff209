package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"paygate/internal/app"
	"paygate/internal/config"
	"paygate/internal/domain"
	"paygate/internal/handler"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository"
	"paygate/internal/repository/postgres"
	"paygate/internal/service"
)

func main() {
	// Load configuration.
	cfg := config.Load()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// Initialize New Relic FIRST (before database so we can instrument DB).
	var nrApp *newrelic.Application
	if cfg.NewRelic.Enabled && cfg.NewRelic.LicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName(cfg.NewRelic.AppName),
			newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
			newrelic.ConfigDistributedTracerEnabled(true),
			newrelic.ConfigAppLogForwardingEnabled(true),
		)
		if err != nil {
			log.Printf("failed to initialize New Relic: %v", err)
		} else {
			log.Printf("New Relic enabled: app=%s (with DB instrumentation)", cfg.NewRelic.AppName)
		}
	}

	// Initialize database with New Relic instrumentation.
	db, err := app.NewDatabase(ctx, cfg.Database, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()
	log.Println("Connected to PostgreSQL")

	if err := postgres.Migrate(ctx, db); err != nil {
		log.Fatalf("failed to run migrations: %v", err)
	}

	// Initialize Redis with New Relic instrumentation.
	redisClient, err := app.NewRedisClient(ctx, cfg.Redis, nrApp)
	if err != nil {
		log.Fatalf("failed to connect to redis: %v", err)
	}
	defer redisClient.Close()
	log.Println("Connected to Redis")

	if cfg.Seed.TestMerchant {
		if err := seedTestMerchant(ctx, postgres.NewMerchantRepository(db)); err != nil {
			log.Fatalf("failed to seed test merchant: %v", err)
		}
		log.Println("Test merchant seeded")
	}

	// Wire dependencies.
	server := wireServer(db, redisClient, nrApp, cfg, logger)

	// Start server in goroutine.
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// Graceful shutdown. In-flight settlement timers are not drained: a
	// resolution lost to process exit simply leaves the payment processing,
	// which the simulation accepts.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
}

// wireServer wires all dependencies and returns the HTTP server.
func wireServer(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config, logger *zap.Logger) *http.Server {
	// Initialize Redis stores.
	cacheStore := internalRedis.NewCacheStore(redisClient)

	// Initialize repositories.
	merchantRepo := postgres.NewMerchantRepository(db)
	orderRepo := postgres.NewOrderRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)

	// Initialize services.
	notifier := service.NewWebhookNotifier(merchantRepo, logger)
	orderService := service.NewOrderService(orderRepo, cacheStore, logger)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, cacheStore, notifier, logger)

	// The scheduler resolves through the payment service, and the payment
	// service hands new payments to the scheduler.
	settlement := service.NewSettlementScheduler(paymentService, cfg.Settlement, logger)
	paymentService.SetSettler(settlement)

	// Initialize handlers.
	orderHandler := handler.NewOrderHandler(orderService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	checkoutHandler := handler.NewCheckoutHandler(orderService, paymentService)
	merchantHandler := handler.NewMerchantHandler()
	healthHandler := handler.NewHealthHandler(db)

	// Create router.
	router := app.NewRouter(app.RouterDeps{
		OrderHandler:    orderHandler,
		PaymentHandler:  paymentHandler,
		CheckoutHandler: checkoutHandler,
		MerchantHandler: merchantHandler,
		HealthHandler:   healthHandler,
		MerchantRepo:    merchantRepo,
		CacheStore:      cacheStore,
		RedisClient:     redisClient,
		NewRelicApp:     nrApp,
	})

	// Create HTTP server.
	return &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}
}

// seedTestMerchant inserts the well-known sandbox merchant used by local
// integrations. The insert is a no-op when the merchant already exists.
func seedTestMerchant(ctx context.Context, merchants repository.MerchantRepository) error {
	now := time.Now().UTC()
	return merchants.Create(ctx, &domain.Merchant{
		ID:        "550e8400-e29b-41d4-a716-446655440000",
		Name:      "Test Merchant",
		Email:     "test@example.com",
		APIKey:    "key_test_abc123",
		APISecret: "secret_test_xyz789",
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	})
}
