package postgres

import (
	"context"
	"database/sql"
)

// Migrate creates the gateway schema if it does not exist yet. Statements are
// idempotent, so running them on every startup is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	stmts := []string{

		`CREATE TABLE IF NOT EXISTS merchants (
			id UUID PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) UNIQUE NOT NULL,
			api_key VARCHAR(64) UNIQUE NOT NULL,
			api_secret VARCHAR(64) NOT NULL,
			webhook_url TEXT,
			is_active BOOLEAN DEFAULT true,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS orders (
			id VARCHAR(64) PRIMARY KEY,
			merchant_id UUID NOT NULL REFERENCES merchants(id),
			amount BIGINT NOT NULL,
			currency VARCHAR(3) DEFAULT 'INR',
			receipt VARCHAR(255),
			notes JSON,
			status VARCHAR(20) DEFAULT 'created',
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS payments (
			id VARCHAR(64) PRIMARY KEY,
			order_id VARCHAR(64) NOT NULL REFERENCES orders(id),
			merchant_id UUID NOT NULL REFERENCES merchants(id),
			amount BIGINT NOT NULL,
			currency VARCHAR(3) DEFAULT 'INR',
			method VARCHAR(20) NOT NULL,
			status VARCHAR(20) DEFAULT 'processing',
			vpa VARCHAR(255),
			card_network VARCHAR(20),
			card_last4 VARCHAR(4),
			error_code VARCHAR(50),
			error_description TEXT,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_payments_order_id ON payments(order_id)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}

	return nil
}
