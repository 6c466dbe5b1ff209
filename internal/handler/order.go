package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/middleware"
	"paygate/internal/service"
)

// OrderHandler handles authenticated HTTP requests for orders.
type OrderHandler struct {
	orderService *service.OrderService
}

// NewOrderHandler creates a new OrderHandler.
func NewOrderHandler(orderService *service.OrderService) *OrderHandler {
	return &OrderHandler{orderService: orderService}
}

// CreateOrderRequest is the HTTP request body for creating an order.
type CreateOrderRequest struct {
	Amount   int64             `json:"amount"`
	Currency string            `json:"currency"`
	Receipt  string            `json:"receipt"`
	Notes    map[string]string `json:"notes"`
}

// CreateOrder handles POST /api/v1/orders
func (h *OrderHandler) CreateOrder(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		respondServerError(c, "merchant missing from request context")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "invalid request body")
		return
	}

	if req.Amount <= 0 {
		respondBadRequest(c, "Invalid amount")
		return
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), service.CreateOrderRequest{
		MerchantID: merchant.ID,
		Amount:     req.Amount,
		Currency:   req.Currency,
		Receipt:    req.Receipt,
		Notes:      req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, orderResponse(order))
}

// GetOrder handles GET /api/v1/orders/:order_id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		respondServerError(c, "merchant missing from request context")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), merchant.ID, c.Param("order_id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, orderResponse(order))
}
