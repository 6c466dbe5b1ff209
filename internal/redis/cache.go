package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles entity caching in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// Merchant credentials change rarely; this only bounds how long a
	// deactivated merchant can keep authenticating.
	MerchantCacheTTL = 60 * time.Second
	// Order status flips to paid asynchronously, keep this short.
	OrderCacheTTL = 5 * time.Second
)

// Key prefixes
const (
	merchantCachePrefix = "cache:merchant:"
	orderCachePrefix    = "cache:order:"
)

// CachedMerchant represents a cached merchant entity.
type CachedMerchant struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	APIKey     string `json:"api_key"`
	APISecret  string `json:"api_secret"`
	WebhookURL string `json:"webhook_url"`
	IsActive   bool   `json:"is_active"`
}

// CachedOrder represents a cached order entity.
type CachedOrder struct {
	ID         string `json:"id"`
	MerchantID string `json:"merchant_id"`
	Amount     int64  `json:"amount"`
	Currency   string `json:"currency"`
	Status     string `json:"status"`
}

// GetMerchantByKey retrieves a merchant from cache by API key.
// Returns nil on cache miss.
func (s *CacheStore) GetMerchantByKey(ctx context.Context, apiKey string) (*CachedMerchant, error) {
	data, err := s.client.Get(ctx, merchantCachePrefix+apiKey).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var merchant CachedMerchant
	if err := json.Unmarshal(data, &merchant); err != nil {
		return nil, err
	}
	return &merchant, nil
}

// SetMerchant stores a merchant in cache keyed by API key.
func (s *CacheStore) SetMerchant(ctx context.Context, merchant *CachedMerchant) error {
	data, err := json.Marshal(merchant)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, merchantCachePrefix+merchant.APIKey, data, MerchantCacheTTL).Err()
}

// GetOrder retrieves an order from cache. Returns nil on cache miss.
func (s *CacheStore) GetOrder(ctx context.Context, orderID string) (*CachedOrder, error) {
	data, err := s.client.Get(ctx, orderCachePrefix+orderID).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}

	var order CachedOrder
	if err := json.Unmarshal(data, &order); err != nil {
		return nil, err
	}
	return &order, nil
}

// SetOrder stores an order in cache.
func (s *CacheStore) SetOrder(ctx context.Context, order *CachedOrder) error {
	data, err := json.Marshal(order)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, orderCachePrefix+order.ID, data, OrderCacheTTL).Err()
}

// InvalidateOrder drops an order from cache, used when its status advances.
func (s *CacheStore) InvalidateOrder(ctx context.Context, orderID string) error {
	return s.client.Del(ctx, orderCachePrefix+orderID).Err()
}
