package repository

import (
	"context"

	"paygate/internal/domain"
)

// PaymentRepository defines the persistence operations for payments.
type PaymentRepository interface {
	// Create persists a new payment.
	Create(ctx context.Context, payment *domain.Payment) error

	// GetByID retrieves a payment by ID.
	GetByID(ctx context.Context, id string) (*domain.Payment, error)

	// Resolve transitions a payment from processing to the given terminal
	// status, attaching the error pair when present. Returns true when this
	// call performed the transition, false when the payment was already in a
	// terminal state. The status guard must be part of the write itself so a
	// duplicate resolution is a silent no-op.
	Resolve(ctx context.Context, id string, status domain.PaymentStatus, errorCode, errorDescription string) (bool, error)
}
