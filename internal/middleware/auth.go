package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/domain"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository"
)

const (
	apiKeyHeader    = "X-Api-Key"
	apiSecretHeader = "X-Api-Secret"

	merchantContextKey = "merchant"
)

type authError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func abortUnauthenticated(c *gin.Context, description string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": authError{Code: "AUTHENTICATION_ERROR", Description: description},
	})
}

// MerchantAuth authenticates server-to-server calls by API key and secret
// headers. Recently seen credentials are served from cache to keep the auth
// check off the database hot path; the cache may be nil.
func MerchantAuth(merchants repository.MerchantRepository, cache internalRedis.CacheStoreInterface) gin.HandlerFunc {
	return func(c *gin.Context) {
		apiKey := c.GetHeader(apiKeyHeader)
		apiSecret := c.GetHeader(apiSecretHeader)

		if apiKey == "" || apiSecret == "" {
			abortUnauthenticated(c, "API key and secret required")
			return
		}

		ctx := c.Request.Context()

		if cache != nil {
			cached, err := cache.GetMerchantByKey(ctx, apiKey)
			if err == nil && cached != nil {
				if cached.APISecret == apiSecret && cached.IsActive {
					c.Set(merchantContextKey, &domain.Merchant{
						ID:         cached.ID,
						Name:       cached.Name,
						Email:      cached.Email,
						APIKey:     cached.APIKey,
						APISecret:  cached.APISecret,
						WebhookURL: cached.WebhookURL,
						IsActive:   cached.IsActive,
					})
					c.Next()
					return
				}
				abortUnauthenticated(c, "Invalid API credentials")
				return
			}
			// Cache errors fall through to the database.
		}

		merchant, err := merchants.GetByCredentials(ctx, apiKey, apiSecret)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				abortUnauthenticated(c, "Invalid API credentials")
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error": authError{Code: "SERVER_ERROR", Description: "authentication lookup failed"},
			})
			return
		}

		if cache != nil {
			_ = cache.SetMerchant(ctx, &internalRedis.CachedMerchant{
				ID:         merchant.ID,
				Name:       merchant.Name,
				Email:      merchant.Email,
				APIKey:     merchant.APIKey,
				APISecret:  merchant.APISecret,
				WebhookURL: merchant.WebhookURL,
				IsActive:   merchant.IsActive,
			})
		}

		c.Set(merchantContextKey, merchant)
		c.Next()
	}
}

// MerchantFromContext returns the authenticated merchant set by MerchantAuth.
func MerchantFromContext(c *gin.Context) (*domain.Merchant, bool) {
	value, exists := c.Get(merchantContextKey)
	if !exists {
		return nil, false
	}
	merchant, ok := value.(*domain.Merchant)
	return merchant, ok
}
