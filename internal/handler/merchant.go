package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"paygate/internal/middleware"
)

// MerchantHandler handles merchant account requests.
type MerchantHandler struct{}

// NewMerchantHandler creates a new MerchantHandler.
func NewMerchantHandler() *MerchantHandler {
	return &MerchantHandler{}
}

// Profile handles GET /api/v1/merchant, echoing the authenticated merchant
// so integrations can verify their credentials.
func (h *MerchantHandler) Profile(c *gin.Context) {
	merchant, ok := middleware.MerchantFromContext(c)
	if !ok {
		respondServerError(c, "merchant missing from request context")
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"id":          merchant.ID,
		"name":        merchant.Name,
		"email":       merchant.Email,
		"api_key":     merchant.APIKey,
		"webhook_url": merchant.WebhookURL,
	})
}
