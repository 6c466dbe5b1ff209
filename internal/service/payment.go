package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"paygate/internal/domain"
	"paygate/internal/instrument"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository"
)

// Fixed error pair attached when a simulated settlement declines. A declined
// payment is a successful resolution with a negative business outcome, not a
// system error.
const (
	declineErrorCode        = "PAYMENT_FAILED"
	declineErrorDescription = "Payment declined by processor"
)

// Settler schedules exactly one deferred resolution for a new payment.
type Settler interface {
	Schedule(paymentID string, method domain.PaymentMethod)
}

// PaymentService owns the payment state machine: processing is the initial
// state, success and failed are terminal, and no transition leaves a terminal
// state.
type PaymentService struct {
	payments   repository.PaymentRepository
	orders     repository.OrderRepository
	cache      internalRedis.CacheStoreInterface
	notifier   *WebhookNotifier
	settlement Settler
	logger     *zap.Logger
}

// NewPaymentService creates a new PaymentService. Cache and notifier may be
// nil. The settlement scheduler is wired afterwards via SetSettler because
// the scheduler in turn resolves through this service.
func NewPaymentService(
	payments repository.PaymentRepository,
	orders repository.OrderRepository,
	cache internalRedis.CacheStoreInterface,
	notifier *WebhookNotifier,
	logger *zap.Logger,
) *PaymentService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PaymentService{
		payments: payments,
		orders:   orders,
		cache:    cache,
		notifier: notifier,
		logger:   logger,
	}
}

// SetSettler attaches the settlement scheduler that will be handed every new
// payment. A nil settler leaves payments in processing forever.
func (s *PaymentService) SetSettler(settler Settler) {
	s.settlement = settler
}

// CreatePaymentRequest contains the parameters for creating a payment.
// MerchantID is empty for unauthenticated checkout calls; when set, the order
// must belong to that merchant.
type CreatePaymentRequest struct {
	MerchantID string
	OrderID    string
	Method     string
	Instrument instrument.Fields
}

// CreatePayment validates the instrument and persists a new payment in the
// processing state, copying amount and currency from the order. The deferred
// resolution is scheduled before returning; the caller does not wait for it.
func (s *PaymentService) CreatePayment(ctx context.Context, req CreatePaymentRequest) (*domain.Payment, error) {
	if req.OrderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orders.GetByID(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if req.MerchantID != "" && order.MerchantID != req.MerchantID {
		return nil, repository.ErrNotFound
	}

	inst, err := instrument.Validate(req.Method, req.Instrument, time.Now())
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	payment := &domain.Payment{
		ID:          newID("pay"),
		OrderID:     order.ID,
		MerchantID:  order.MerchantID,
		Amount:      order.Amount,
		Currency:    order.Currency,
		Method:      inst.Method,
		Status:      domain.PaymentStatusProcessing,
		VPA:         inst.VPA,
		CardNetwork: inst.CardNetwork,
		CardLast4:   inst.CardLast4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, err
	}

	s.logger.Info("payment created",
		zap.String("payment_id", payment.ID),
		zap.String("order_id", payment.OrderID),
		zap.String("method", string(payment.Method)),
		zap.Int64("amount", payment.Amount),
	)

	if s.settlement != nil {
		s.settlement.Schedule(payment.ID, payment.Method)
	}

	return payment, nil
}

// GetPayment retrieves a payment scoped to the calling merchant.
func (s *PaymentService) GetPayment(ctx context.Context, merchantID, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return nil, err
	}
	if payment.MerchantID != merchantID {
		return nil, repository.ErrNotFound
	}

	return payment, nil
}

// GetPaymentPublic retrieves a payment without merchant scoping, for the
// hosted checkout page to poll.
func (s *PaymentService) GetPaymentPublic(ctx context.Context, paymentID string) (*domain.Payment, error) {
	if paymentID == "" {
		return nil, ErrInvalidPaymentID
	}
	return s.payments.GetByID(ctx, paymentID)
}

// ResolvePayment transitions a processing payment to the given terminal
// outcome. Resolving an already-terminal payment is a silent no-op, which
// makes a duplicate scheduler fire harmless. A successful outcome advances
// the parent order to paid; the order update is conditional on its current
// status, so concurrent successes converge on paid exactly once.
func (s *PaymentService) ResolvePayment(ctx context.Context, paymentID string, outcome domain.PaymentStatus) error {
	if paymentID == "" {
		return ErrInvalidPaymentID
	}
	if !outcome.Terminal() {
		return ErrInvalidOutcome
	}

	payment, err := s.payments.GetByID(ctx, paymentID)
	if err != nil {
		return err
	}

	var errorCode, errorDescription string
	if outcome == domain.PaymentStatusFailed {
		errorCode = declineErrorCode
		errorDescription = declineErrorDescription
	}

	resolved, err := s.payments.Resolve(ctx, paymentID, outcome, errorCode, errorDescription)
	if err != nil {
		return err
	}
	if !resolved {
		// Already terminal, nothing to do.
		return nil
	}

	s.logger.Info("payment resolved",
		zap.String("payment_id", paymentID),
		zap.String("order_id", payment.OrderID),
		zap.String("outcome", string(outcome)),
	)

	if outcome == domain.PaymentStatusSuccess {
		if err := s.advanceOrder(ctx, payment.OrderID); err != nil {
			return err
		}
	}

	if s.notifier != nil {
		payment.Status = outcome
		payment.ErrorCode = errorCode
		payment.ErrorDescription = errorDescription
		s.notifier.PaymentResolved(ctx, payment)
	}

	return nil
}

// advanceOrder moves the order to paid if it is still in created. A second
// successful payment against the same order finds it already paid and leaves
// it untouched.
func (s *PaymentService) advanceOrder(ctx context.Context, orderID string) error {
	advanced, err := s.orders.MarkPaid(ctx, orderID)
	if err != nil {
		return err
	}
	if !advanced {
		s.logger.Debug("order already paid", zap.String("order_id", orderID))
		return nil
	}

	s.logger.Info("order paid", zap.String("order_id", orderID))

	if s.cache != nil {
		if err := s.cache.InvalidateOrder(ctx, orderID); err != nil {
			s.logger.Warn("order cache invalidation failed", zap.String("order_id", orderID), zap.Error(err))
		}
	}

	return nil
}
