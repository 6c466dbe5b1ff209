package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// OrderRepository is a PostgreSQL implementation of repository.OrderRepository.
type OrderRepository struct {
	q Querier
}

// NewOrderRepository creates a new PostgreSQL order repository.
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{q: db}
}

// NewOrderRepositoryWithTx creates an order repository using a transaction.
func NewOrderRepositoryWithTx(tx *sql.Tx) *OrderRepository {
	return &OrderRepository{q: tx}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *domain.Order) error {
	query := `
		INSERT INTO orders (id, merchant_id, amount, currency, receipt, notes, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	var receipt sql.NullString
	if order.Receipt != "" {
		receipt = sql.NullString{String: order.Receipt, Valid: true}
	}

	notes := order.Notes
	if notes == nil {
		notes = map[string]string{}
	}
	notesJSON, err := json.Marshal(notes)
	if err != nil {
		return err
	}

	_, err = r.q.ExecContext(ctx, query,
		order.ID,
		order.MerchantID,
		order.Amount,
		order.Currency,
		receipt,
		notesJSON,
		order.Status,
		order.CreatedAt,
		order.UpdatedAt,
	)

	return err
}

// GetByID retrieves an order by ID.
func (r *OrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	query := `
		SELECT id, merchant_id, amount, currency, receipt, notes, status, created_at, updated_at
		FROM orders WHERE id = $1
	`

	var order domain.Order
	var receipt sql.NullString
	var notesJSON []byte
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&order.ID,
		&order.MerchantID,
		&order.Amount,
		&order.Currency,
		&receipt,
		&notesJSON,
		&order.Status,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	order.Receipt = receipt.String
	if len(notesJSON) > 0 {
		if err := json.Unmarshal(notesJSON, &order.Notes); err != nil {
			return nil, err
		}
	}

	return &order, nil
}

// MarkPaid advances the order to paid only if it is currently created.
// The status guard is part of the UPDATE so concurrent successful payments
// cannot double-advance the order.
func (r *OrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	query := `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, domain.OrderStatusPaid, id, domain.OrderStatusCreated)
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}
