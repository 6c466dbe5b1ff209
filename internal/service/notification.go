package service

import (
	"context"

	"go.uber.org/zap"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// NotificationType represents the type of merchant notification.
type NotificationType string

const (
	NotificationPaymentSuccess NotificationType = "PAYMENT_SUCCESS"
	NotificationPaymentFailed  NotificationType = "PAYMENT_FAILED"
)

// WebhookNotifier informs merchants about terminal payment resolutions.
// Delivery is simulated: the event is logged against the merchant's
// registered webhook URL instead of being POSTed to it.
type WebhookNotifier struct {
	merchants repository.MerchantRepository
	logger    *zap.Logger
}

// NewWebhookNotifier creates a new WebhookNotifier.
func NewWebhookNotifier(merchants repository.MerchantRepository, logger *zap.Logger) *WebhookNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WebhookNotifier{
		merchants: merchants,
		logger:    logger,
	}
}

// PaymentResolved emits a notification for a payment that just reached a
// terminal state. Failures here never affect the resolution itself.
func (n *WebhookNotifier) PaymentResolved(ctx context.Context, payment *domain.Payment) {
	eventType := NotificationPaymentSuccess
	if payment.Status == domain.PaymentStatusFailed {
		eventType = NotificationPaymentFailed
	}

	merchant, err := n.merchants.GetByID(ctx, payment.MerchantID)
	if err != nil {
		n.logger.Warn("webhook merchant lookup failed",
			zap.String("payment_id", payment.ID),
			zap.String("merchant_id", payment.MerchantID),
			zap.Error(err),
		)
		return
	}

	if merchant.WebhookURL == "" {
		return
	}

	n.logger.Info("webhook notification",
		zap.String("event", string(eventType)),
		zap.String("webhook_url", merchant.WebhookURL),
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.Int64("amount", payment.Amount),
		zap.String("error_code", payment.ErrorCode),
	)
}
