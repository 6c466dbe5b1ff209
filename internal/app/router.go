package app

import (
	"github.com/gin-gonic/gin"
	"github.com/newrelic/go-agent/v3/integrations/nrgin"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"paygate/internal/handler"
	"paygate/internal/middleware"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository"
)

// RouterDeps contains all dependencies needed for the router.
type RouterDeps struct {
	OrderHandler    *handler.OrderHandler
	PaymentHandler  *handler.PaymentHandler
	CheckoutHandler *handler.CheckoutHandler
	MerchantHandler *handler.MerchantHandler
	HealthHandler   *handler.HealthHandler
	MerchantRepo    repository.MerchantRepository
	CacheStore      internalRedis.CacheStoreInterface
	RedisClient     *redis.Client
	NewRelicApp     *newrelic.Application
}

// NewRouter creates a new Gin router with all routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()

	// Global middleware.
	router.Use(gin.Recovery())
	router.Use(gin.Logger())
	router.Use(middleware.CORSMiddleware())

	// Add New Relic middleware if enabled.
	if deps.NewRelicApp != nil {
		router.Use(nrgin.Middleware(deps.NewRelicApp))
	}

	router.Use(middleware.IdempotencyMiddleware(deps.RedisClient))

	// Health check.
	router.GET("/health", deps.HealthHandler.Check)

	authenticated := middleware.MerchantAuth(deps.MerchantRepo, deps.CacheStore)

	// API v1 routes.
	v1 := router.Group("/api/v1")
	{
		// Merchant API (authenticated).
		v1.POST("/orders", authenticated, deps.OrderHandler.CreateOrder)
		v1.GET("/orders/:order_id", authenticated, deps.OrderHandler.GetOrder)
		v1.POST("/payments", authenticated, deps.PaymentHandler.CreatePayment)
		v1.GET("/payments/:payment_id", authenticated, deps.PaymentHandler.GetPayment)
		v1.GET("/merchant", authenticated, deps.MerchantHandler.Profile)

		// Hosted checkout (public).
		v1.GET("/orders/:order_id/public", deps.CheckoutHandler.GetOrder)
		v1.POST("/payments/public", deps.CheckoutHandler.CreatePayment)
		v1.GET("/payments/:payment_id/public", deps.CheckoutHandler.GetPayment)
	}

	return router
}
