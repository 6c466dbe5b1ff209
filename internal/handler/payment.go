package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/instrument"
	"paygate/internal/middleware"
	"paygate/internal/service"
)

// PaymentHandler handles authenticated HTTP requests for payments.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest is the HTTP request body for submitting a payment.
// CVV and the full card number are validated and discarded, never stored.
type CreatePaymentRequest struct {
	OrderID     string `json:"order_id"`
	Method      string `json:"method"`
	VPA         string `json:"vpa"`
	CardNumber  string `json:"card_number"`
	ExpiryMonth int    `json:"expiry_month"`
	ExpiryYear  int    `json:"expiry_year"`
	CVV         string `json:"cvv"`
	HolderName  string `json:"holder_name"`
}

func (r CreatePaymentRequest) fields() instrument.Fields {
	return instrument.Fields{
		VPA:         r.VPA,
		CardNumber:  r.CardNumber,
		ExpiryMonth: r.ExpiryMonth,
		ExpiryYear:  r.ExpiryYear,
		CVV:         r.CVV,
		HolderName:  r.HolderName,
	}
}

// CreatePayment handles POST /api/v1/payments
func (h *PaymentHandler) CreatePayment(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		respondServerError(c, "merchant missing from request context")
		return
	}

	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.OrderID == "" || req.Method == "" {
		respondBadRequest(c, "order_id and method required")
		return
	}

	payment, err := h.paymentService.CreatePayment(c.Request.Context(), service.CreatePaymentRequest{
		MerchantID: merchant.ID,
		OrderID:    req.OrderID,
		Method:     req.Method,
		Instrument: req.fields(),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, paymentResponse(payment))
}

// GetPayment handles GET /api/v1/payments/:payment_id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		respondServerError(c, "merchant missing from request context")
		return
	}

	payment, err := h.paymentService.GetPayment(c.Request.Context(), merchant.ID, c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, paymentResponse(payment))
}
