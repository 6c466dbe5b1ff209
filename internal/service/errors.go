package service

import "errors"

var (
	// ErrInvalidAmount is returned when the order amount is not a positive integer.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidOrderID is returned when the order ID is empty.
	ErrInvalidOrderID = errors.New("invalid order id")

	// ErrInvalidPaymentID is returned when the payment ID is empty.
	ErrInvalidPaymentID = errors.New("invalid payment id")

	// ErrInvalidOutcome is returned when a resolution outcome is not a terminal status.
	ErrInvalidOutcome = errors.New("resolution outcome must be a terminal status")
)
