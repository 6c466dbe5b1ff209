package repository

import (
	"context"

	"paygate/internal/domain"
)

// MerchantRepository defines the persistence operations for merchants.
type MerchantRepository interface {
	// Create persists a new merchant. Creating a merchant that already
	// exists is a no-op.
	Create(ctx context.Context, merchant *domain.Merchant) error

	// GetByID retrieves a merchant by ID.
	GetByID(ctx context.Context, id string) (*domain.Merchant, error)

	// GetByCredentials retrieves an active merchant matching the given API
	// key and secret. Returns ErrNotFound when no active merchant matches.
	GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*domain.Merchant, error)
}
