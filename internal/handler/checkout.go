package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/service"
)

// CheckoutHandler serves the unauthenticated endpoints used by the hosted
// checkout page. Payment submissions route through the same validator and
// state machine as the authenticated API.
type CheckoutHandler struct {
	orderService   *service.OrderService
	paymentService *service.PaymentService
}

// NewCheckoutHandler creates a new CheckoutHandler.
func NewCheckoutHandler(orderService *service.OrderService, paymentService *service.PaymentService) *CheckoutHandler {
	return &CheckoutHandler{
		orderService:   orderService,
		paymentService: paymentService,
	}
}

// GetOrder handles GET /api/v1/orders/:order_id/public
func (h *CheckoutHandler) GetOrder(c *gin.Context) {
	order, err := h.orderService.GetOrderPublic(c.Request.Context(), c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// The checkout page only needs enough to render the payment form.
	respondJSON(c, http.StatusOK, gin.H{
		"id":          order.ID,
		"merchant_id": order.MerchantID,
		"amount":      order.Amount,
		"currency":    order.Currency,
		"status":      string(order.Status),
	})
}

// CreatePayment handles POST /api/v1/payments/public
func (h *CheckoutHandler) CreatePayment(c *gin.Context) {
	var req CreatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.OrderID == "" || req.Method == "" {
		respondBadRequest(c, "order_id and method required")
		return
	}

	// No merchant scoping: the checkout page holds only the order ID.
	payment, err := h.paymentService.CreatePayment(c.Request.Context(), service.CreatePaymentRequest{
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

// GetPayment handles GET /api/v1/payments/:payment_id/public
func (h *CheckoutHandler) GetPayment(c *gin.Context) {
	payment, err := h.paymentService.GetPaymentPublic(c.Request.Context(), c.Param("payment_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	// Poll response for the checkout page; merchant credentials stay private.
	respondJSON(c, http.StatusOK, gin.H{
		"id":                payment.ID,
		"order_id":          payment.OrderID,
		"amount":            payment.Amount,
		"currency":          payment.Currency,
		"method":            string(payment.Method),
		"status":            string(payment.Status),
		"vpa":               payment.VPA,
		"error_description": payment.ErrorDescription,
	})
}
