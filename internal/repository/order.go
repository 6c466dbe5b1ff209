package repository

import (
	"context"

	"paygate/internal/domain"
)

// OrderRepository defines the persistence operations for orders.
type OrderRepository interface {
	// Create persists a new order.
	Create(ctx context.Context, order *domain.Order) error

	// GetByID retrieves an order by ID.
	GetByID(ctx context.Context, id string) (*domain.Order, error)

	// MarkPaid advances the order to paid only if it is currently created.
	// Returns true when this call performed the transition, false when the
	// order was already paid. The check and update must be a single
	// conditional write so concurrent callers converge without lost updates.
	MarkPaid(ctx context.Context, id string) (bool, error)
}
