package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"paygate/internal/domain"
	"paygate/internal/instrument"
	"paygate/internal/repository"
	"paygate/internal/service"
)

// APIError is the wire-level error payload.
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// ErrorResponse wraps an APIError in the gateway's error envelope.
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// respondError maps an error to its HTTP status and error envelope.
func respondError(c *gin.Context, err error) {
	status, apiErr := classifyError(err)
	c.JSON(status, ErrorResponse{Error: apiErr})
}

func respondBadRequest(c *gin.Context, description string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: APIError{
		Code:        "BAD_REQUEST_ERROR",
		Description: description,
	}})
}

func respondServerError(c *gin.Context, description string) {
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: APIError{
		Code:        "SERVER_ERROR",
		Description: description,
	}})
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

func classifyError(err error) (int, APIError) {
	var verr *instrument.ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest, APIError{Code: verr.Code(), Description: verr.Description}
	}

	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound, APIError{Code: "NOT_FOUND_ERROR", Description: "Not found"}

	case errors.Is(err, service.ErrInvalidAmount),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidPaymentID):
		return http.StatusBadRequest, APIError{Code: "BAD_REQUEST_ERROR", Description: err.Error()}

	default:
		return http.StatusInternalServerError, APIError{Code: "SERVER_ERROR", Description: "Internal server error"}
	}
}

// OrderResponse is the HTTP representation of an order.
type OrderResponse struct {
	ID         string            `json:"id"`
	MerchantID string            `json:"merchant_id"`
	Amount     int64             `json:"amount"`
	Currency   string            `json:"currency"`
	Receipt    string            `json:"receipt,omitempty"`
	Notes      map[string]string `json:"notes,omitempty"`
	Status     string            `json:"status"`
	CreatedAt  time.Time         `json:"created_at"`
	UpdatedAt  time.Time         `json:"updated_at"`
}

func orderResponse(order *domain.Order) OrderResponse {
	return OrderResponse{
		ID:         order.ID,
		MerchantID: order.MerchantID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		Receipt:    order.Receipt,
		Notes:      order.Notes,
		Status:     string(order.Status),
		CreatedAt:  order.CreatedAt,
		UpdatedAt:  order.UpdatedAt,
	}
}

// PaymentResponse is the HTTP representation of a payment.
type PaymentResponse struct {
	ID               string    `json:"id"`
	OrderID          string    `json:"order_id"`
	MerchantID       string    `json:"merchant_id"`
	Amount           int64     `json:"amount"`
	Currency         string    `json:"currency"`
	Method           string    `json:"method"`
	Status           string    `json:"status"`
	VPA              string    `json:"vpa,omitempty"`
	CardNetwork      string    `json:"card_network,omitempty"`
	CardLast4        string    `json:"card_last4,omitempty"`
	ErrorCode        string    `json:"error_code,omitempty"`
	ErrorDescription string    `json:"error_description,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

func paymentResponse(payment *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:               payment.ID,
		OrderID:          payment.OrderID,
		MerchantID:       payment.MerchantID,
		Amount:           payment.Amount,
		Currency:         payment.Currency,
		Method:           string(payment.Method),
		Status:           string(payment.Status),
		VPA:              payment.VPA,
		CardNetwork:      string(payment.CardNetwork),
		CardLast4:        payment.CardLast4,
		ErrorCode:        payment.ErrorCode,
		ErrorDescription: payment.ErrorDescription,
		CreatedAt:        payment.CreatedAt,
		UpdatedAt:        payment.UpdatedAt,
	}
}
