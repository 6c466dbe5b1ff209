package postgres

import (
	"context"
	"database/sql"
	"errors"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

// Create persists a new payment.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	query := `
		INSERT INTO payments (id, order_id, merchant_id, amount, currency, method, status, vpa, card_network, card_last4, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`

	var vpa, cardNetwork, cardLast4 sql.NullString
	if payment.VPA != "" {
		vpa = sql.NullString{String: payment.VPA, Valid: true}
	}
	if payment.CardNetwork != "" {
		cardNetwork = sql.NullString{String: string(payment.CardNetwork), Valid: true}
	}
	if payment.CardLast4 != "" {
		cardLast4 = sql.NullString{String: payment.CardLast4, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		payment.ID,
		payment.OrderID,
		payment.MerchantID,
		payment.Amount,
		payment.Currency,
		payment.Method,
		payment.Status,
		vpa,
		cardNetwork,
		cardLast4,
		payment.CreatedAt,
		payment.UpdatedAt,
	)

	return err
}

// GetByID retrieves a payment by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	query := `
		SELECT id, order_id, merchant_id, amount, currency, method, status, vpa, card_network, card_last4, error_code, error_description, created_at, updated_at
		FROM payments WHERE id = $1
	`

	var payment domain.Payment
	var vpa, cardNetwork, cardLast4, errorCode, errorDescription sql.NullString
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&payment.ID,
		&payment.OrderID,
		&payment.MerchantID,
		&payment.Amount,
		&payment.Currency,
		&payment.Method,
		&payment.Status,
		&vpa,
		&cardNetwork,
		&cardLast4,
		&errorCode,
		&errorDescription,
		&payment.CreatedAt,
		&payment.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	payment.VPA = vpa.String
	payment.CardNetwork = domain.CardNetwork(cardNetwork.String)
	payment.CardLast4 = cardLast4.String
	payment.ErrorCode = errorCode.String
	payment.ErrorDescription = errorDescription.String

	return &payment, nil
}

// Resolve transitions a processing payment to a terminal status. The status
// guard is part of the UPDATE, so a payment that is already terminal is left
// untouched and the call reports false.
func (r *PaymentRepository) Resolve(ctx context.Context, id string, status domain.PaymentStatus, errorCode, errorDescription string) (bool, error) {
	query := `
		UPDATE payments SET status = $1, error_code = $2, error_description = $3, updated_at = NOW()
		WHERE id = $4 AND status = $5
	`

	var code, description sql.NullString
	if errorCode != "" {
		code = sql.NullString{String: errorCode, Valid: true}
	}
	if errorDescription != "" {
		description = sql.NullString{String: errorDescription, Valid: true}
	}

	result, err := r.q.ExecContext(ctx, query, status, code, description, id, domain.PaymentStatusProcessing)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
