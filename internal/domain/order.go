package domain

import "time"

// OrderStatus represents the current status of an order.
type OrderStatus string

const (
	OrderStatusCreated OrderStatus = "created"
	OrderStatusPaid    OrderStatus = "paid"
)

// Order represents a merchant order that payments are submitted against.
// Status advances created -> paid exactly once and never reverts.
type Order struct {
	ID         string
	MerchantID string
	Amount     int64 // minor currency units
	Currency   string
	Receipt    string
	Notes      map[string]string
	Status     OrderStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
