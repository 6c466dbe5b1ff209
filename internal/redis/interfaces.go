package redis

import "context"

// CacheStoreInterface defines the caching operations used by the gateway.
type CacheStoreInterface interface {
	GetMerchantByKey(ctx context.Context, apiKey string) (*CachedMerchant, error)
	SetMerchant(ctx context.Context, merchant *CachedMerchant) error
	GetOrder(ctx context.Context, orderID string) (*CachedOrder, error)
	SetOrder(ctx context.Context, order *CachedOrder) error
	InvalidateOrder(ctx context.Context, orderID string) error
}

// Ensure concrete types implement interfaces.
var _ CacheStoreInterface = (*CacheStore)(nil)
