package postgres

import (
	"context"
	"database/sql"
	"errors"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// MerchantRepository is a PostgreSQL implementation of repository.MerchantRepository.
type MerchantRepository struct {
	q Querier
}

// NewMerchantRepository creates a new PostgreSQL merchant repository.
func NewMerchantRepository(db *sql.DB) *MerchantRepository {
	return &MerchantRepository{q: db}
}

// Create persists a new merchant. An existing merchant with the same ID is
// left untouched, so seeding is safe to repeat.
func (r *MerchantRepository) Create(ctx context.Context, merchant *domain.Merchant) error {
	query := `
		INSERT INTO merchants (id, name, email, api_key, api_secret, webhook_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (id) DO NOTHING
	`

	var webhookURL sql.NullString
	if merchant.WebhookURL != "" {
		webhookURL = sql.NullString{String: merchant.WebhookURL, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		merchant.ID,
		merchant.Name,
		merchant.Email,
		merchant.APIKey,
		merchant.APISecret,
		webhookURL,
		merchant.IsActive,
		merchant.CreatedAt,
		merchant.UpdatedAt,
	)

	return err
}

// GetByID retrieves a merchant by ID.
func (r *MerchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	query := `
		SELECT id, name, email, api_key, api_secret, webhook_url, is_active, created_at, updated_at
		FROM merchants WHERE id = $1
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, id))
}

// GetByCredentials retrieves an active merchant matching the API key and secret.
func (r *MerchantRepository) GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*domain.Merchant, error) {
	query := `
		SELECT id, name, email, api_key, api_secret, webhook_url, is_active, created_at, updated_at
		FROM merchants WHERE api_key = $1 AND api_secret = $2 AND is_active = true
	`

	return r.scanOne(r.q.QueryRowContext(ctx, query, apiKey, apiSecret))
}

func (r *MerchantRepository) scanOne(row *sql.Row) (*domain.Merchant, error) {
	var merchant domain.Merchant
	var webhookURL sql.NullString
	err := row.Scan(
		&merchant.ID,
		&merchant.Name,
		&merchant.Email,
		&merchant.APIKey,
		&merchant.APISecret,
		&webhookURL,
		&merchant.IsActive,
		&merchant.CreatedAt,
		&merchant.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	merchant.WebhookURL = webhookURL.String
	return &merchant, nil
}
