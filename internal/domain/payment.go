package domain

import "time"

// PaymentStatus represents the current status of a payment.
type PaymentStatus string

const (
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusSuccess    PaymentStatus = "success"
	PaymentStatusFailed     PaymentStatus = "failed"
)

// Terminal reports whether the status permits no further transitions.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentStatusSuccess || s == PaymentStatusFailed
}

// PaymentMethod represents the payment instrument type.
type PaymentMethod string

const (
	PaymentMethodUPI  PaymentMethod = "upi"
	PaymentMethodCard PaymentMethod = "card"
)

// CardNetwork represents the detected card network.
type CardNetwork string

const (
	CardNetworkVisa       CardNetwork = "visa"
	CardNetworkMastercard CardNetwork = "mastercard"
	CardNetworkAmex       CardNetwork = "amex"
	CardNetworkRupay      CardNetwork = "rupay"
	CardNetworkUnknown    CardNetwork = "unknown"
)

// Payment represents a payment attempt against an order. Amount and currency
// are copied from the order at creation time and must match it. The full card
// number and CVV are never stored, only the network tag and last four digits.
type Payment struct {
	ID         string
	OrderID    string
	MerchantID string
	Amount     int64
	Currency   string
	Method     PaymentMethod
	Status     PaymentStatus

	// Method-specific fields.
	VPA         string      // upi only
	CardNetwork CardNetwork // card only
	CardLast4   string      // card only

	// Set iff status is failed.
	ErrorCode        string
	ErrorDescription string

	CreatedAt time.Time
	UpdatedAt time.Time
}
