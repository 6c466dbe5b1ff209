package domain

import "time"

// Merchant represents a registered merchant account. API key and secret
// authenticate the merchant's server-to-server calls.
type Merchant struct {
	ID         string
	Name       string
	Email      string
	APIKey     string
	APISecret  string
	WebhookURL string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
