// Package instrument validates payment instruments. All functions are pure:
// the caller supplies the current time, and no I/O is performed.
package instrument

import (
	"regexp"
	"strings"
	"time"

	"paygate/internal/domain"
)

// FailureKind classifies a validation failure.
type FailureKind string

const (
	FailureInvalidVPA        FailureKind = "invalid_vpa"
	FailureInvalidCard       FailureKind = "invalid_card"
	FailureExpiredCard       FailureKind = "expired_card"
	FailureUnsupportedMethod FailureKind = "unsupported_method"
)

// ValidationError is returned when an instrument fails validation.
type ValidationError struct {
	Kind        FailureKind
	Description string
}

func (e *ValidationError) Error() string {
	return string(e.Kind) + ": " + e.Description
}

// Code returns the wire-level error code for the failure.
func (e *ValidationError) Code() string {
	switch e.Kind {
	case FailureInvalidVPA:
		return "INVALID_VPA"
	case FailureInvalidCard:
		return "INVALID_CARD"
	case FailureExpiredCard:
		return "EXPIRED_CARD"
	default:
		return "BAD_REQUEST_ERROR"
	}
}

// Fields holds the raw method-specific fields submitted with a payment.
type Fields struct {
	VPA         string
	CardNumber  string
	ExpiryMonth int
	ExpiryYear  int
	CVV         string
	HolderName  string
}

// Instrument is a normalized, validated payment instrument. It carries only
// the fields that are safe to persist.
type Instrument struct {
	Method      domain.PaymentMethod
	VPA         string
	CardNetwork domain.CardNetwork
	CardLast4   string
}

var vpaPattern = regexp.MustCompile(`^[A-Za-z0-9._-]+@[A-Za-z0-9]+$`)

// Validate checks the declared fields for the given method and returns a
// normalized instrument descriptor or a *ValidationError.
func Validate(method string, fields Fields, now time.Time) (*Instrument, error) {
	switch domain.PaymentMethod(method) {
	case domain.PaymentMethodUPI:
		return validateUPI(fields)
	case domain.PaymentMethodCard:
		return validateCard(fields, now)
	default:
		return nil, &ValidationError{Kind: FailureUnsupportedMethod, Description: "Invalid payment method"}
	}
}

func validateUPI(fields Fields) (*Instrument, error) {
	if !vpaPattern.MatchString(fields.VPA) {
		return nil, &ValidationError{Kind: FailureInvalidVPA, Description: "Invalid VPA format"}
	}
	return &Instrument{
		Method: domain.PaymentMethodUPI,
		VPA:    fields.VPA,
	}, nil
}

func validateCard(fields Fields, now time.Time) (*Instrument, error) {
	digits := stripNonDigits(fields.CardNumber)
	if len(digits) < 13 || len(digits) > 19 {
		return nil, &ValidationError{Kind: FailureInvalidCard, Description: "Invalid card number"}
	}
	if !luhnValid(digits) {
		return nil, &ValidationError{Kind: FailureInvalidCard, Description: "Invalid card number"}
	}
	if err := checkExpiry(fields.ExpiryMonth, fields.ExpiryYear, now); err != nil {
		return nil, err
	}
	return &Instrument{
		Method:      domain.PaymentMethodCard,
		CardNetwork: DetectNetwork(digits),
		CardLast4:   digits[len(digits)-4:],
	}, nil
}

func stripNonDigits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// luhnValid applies the Luhn checksum: starting from the rightmost digit,
// every second digit moving left is doubled (minus 9 if the result exceeds 9)
// and the total must be divisible by 10.
func luhnValid(digits string) bool {
	sum := 0
	double := false
	for i := len(digits) - 1; i >= 0; i-- {
		d := int(digits[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// DetectNetwork classifies a digit string by leading-digit pattern. Checks run
// in priority order; an unrecognized prefix yields CardNetworkUnknown, which
// is a valid outcome and never a validation failure.
func DetectNetwork(digits string) domain.CardNetwork {
	switch {
	case strings.HasPrefix(digits, "4"):
		return domain.CardNetworkVisa
	case len(digits) >= 2 && digits[0] == '5' && digits[1] >= '1' && digits[1] <= '5':
		return domain.CardNetworkMastercard
	case strings.HasPrefix(digits, "34") || strings.HasPrefix(digits, "37"):
		return domain.CardNetworkAmex
	case strings.HasPrefix(digits, "60") || strings.HasPrefix(digits, "65"):
		return domain.CardNetworkRupay
	case len(digits) >= 2 && digits[0] == '8' && digits[1] >= '1' && digits[1] <= '9':
		return domain.CardNetworkRupay
	default:
		return domain.CardNetworkUnknown
	}
}

// checkExpiry validates the expiry month/year against the current month.
// Two-digit years are resolved in the current century, so 31 means 2031 while
// today's year starts with 20.
func checkExpiry(month, year int, now time.Time) error {
	if month < 1 || month > 12 {
		return &ValidationError{Kind: FailureInvalidCard, Description: "Invalid expiry month"}
	}
	if year < 100 {
		year += now.Year() - now.Year()%100
	}
	if year < now.Year() || (year == now.Year() && month < int(now.Month())) {
		return &ValidationError{Kind: FailureExpiredCard, Description: "Card expired"}
	}
	return nil
}
