package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"paygate/internal/domain"
	"paygate/internal/instrument"
	"paygate/internal/repository"
	"paygate/internal/service"
)

// ──────────────────────────────────────────────
// PAYMENT CREATION
// ──────────────────────────────────────────────

func newTestOrder(id, merchantID string) *domain.Order {
	return &domain.Order{
		ID:         id,
		MerchantID: merchantID,
		Amount:     5000,
		Currency:   "INR",
		Status:     domain.OrderStatusCreated,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

func cardFields() instrument.Fields {
	return instrument.Fields{
		CardNumber:  "4111111111111111",
		ExpiryMonth: 12,
		ExpiryYear:  time.Now().Year() + 2,
		CVV:         "123",
	}
}

func TestCreatePayment_CardCopiesOrderFields(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	settler := &RecordingSettler{}

	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
	paymentService.SetSettler(settler)

	payment, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		MerchantID: "merchant-1",
		OrderID:    "order-1",
		Method:     "card",
		Instrument: cardFields(),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected processing, got %s", payment.Status)
	}
	if payment.Amount != 5000 || payment.Currency != "INR" {
		t.Errorf("amount/currency not copied from order: %d %s", payment.Amount, payment.Currency)
	}
	if payment.CardNetwork != domain.CardNetworkVisa || payment.CardLast4 != "1111" {
		t.Errorf("card fields not populated: %s %s", payment.CardNetwork, payment.CardLast4)
	}
	if payment.VPA != "" {
		t.Errorf("vpa should be empty for card payments, got %q", payment.VPA)
	}

	// Exactly one deferred resolution scheduled.
	if settler.Count() != 1 {
		t.Fatalf("expected 1 scheduled settlement, got %d", settler.Count())
	}
	if settler.Scheduled[0].PaymentID != payment.ID || settler.Scheduled[0].Method != domain.PaymentMethodCard {
		t.Errorf("unexpected schedule %+v", settler.Scheduled[0])
	}
}

func TestCreatePayment_UPIStoresVPA(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)

	payment, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		MerchantID: "merchant-1",
		OrderID:    "order-1",
		Method:     "upi",
		Instrument: instrument.Fields{VPA: "alice.k@hdfc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if payment.Method != domain.PaymentMethodUPI || payment.VPA != "alice.k@hdfc" {
		t.Errorf("unexpected instrument fields: %s %q", payment.Method, payment.VPA)
	}
	if payment.CardNetwork != "" || payment.CardLast4 != "" {
		t.Errorf("card fields should be empty for upi payments")
	}
}

func TestCreatePayment_OrderNotFound(t *testing.T) {
	t.Parallel()

	paymentService := service.NewPaymentService(NewMockPaymentRepository(), NewMockOrderRepository(), nil, nil, nil)

	_, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		MerchantID: "merchant-1",
		OrderID:    "order-missing",
		Method:     "card",
		Instrument: cardFields(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePayment_ForeignOrderHidden(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	paymentService := service.NewPaymentService(NewMockPaymentRepository(), orderRepo, nil, nil, nil)

	// Another merchant's order reads as not found, not forbidden.
	_, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		MerchantID: "merchant-2",
		OrderID:    "order-1",
		Method:     "card",
		Instrument: cardFields(),
	})
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreatePayment_PublicCheckoutSkipsMerchantScope(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)

	payment, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		OrderID:    "order-1",
		Method:     "upi",
		Instrument: instrument.Fields{VPA: "bob@icici"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if payment.MerchantID != "merchant-1" {
		t.Errorf("payment should inherit the order's merchant, got %q", payment.MerchantID)
	}
}

func TestCreatePayment_InvalidInstrumentRejected(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	settler := &RecordingSettler{}
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
	paymentService.SetSettler(settler)

	_, err := paymentService.CreatePayment(context.Background(), service.CreatePaymentRequest{
		MerchantID: "merchant-1",
		OrderID:    "order-1",
		Method:     "upi",
		Instrument: instrument.Fields{VPA: "@hdfc"},
	})

	var verr *instrument.ValidationError
	if !errors.As(err, &verr) || verr.Kind != instrument.FailureInvalidVPA {
		t.Fatalf("expected invalid_vpa validation error, got %v", err)
	}

	// Nothing persisted, nothing scheduled.
	if paymentRepo.CountPayments() != 0 {
		t.Errorf("expected no payments, got %d", paymentRepo.CountPayments())
	}
	if settler.Count() != 0 {
		t.Errorf("expected no scheduled settlements, got %d", settler.Count())
	}
}

// ──────────────────────────────────────────────
// PAYMENT RESOLUTION
// ──────────────────────────────────────────────

func addProcessingPayment(paymentRepo *MockPaymentRepository, id, orderID, merchantID string) {
	paymentRepo.AddPayment(&domain.Payment{
		ID:         id,
		OrderID:    orderID,
		MerchantID: merchantID,
		Amount:     5000,
		Currency:   "INR",
		Method:     domain.PaymentMethodCard,
		Status:     domain.PaymentStatusProcessing,
	})
}

func TestResolvePayment_SuccessAdvancesOrder(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)

	err := paymentService.ResolvePayment(context.Background(), "pay-1", domain.PaymentStatusSuccess)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusSuccess {
		t.Errorf("expected success, got %s", got)
	}
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusPaid {
		t.Errorf("expected order paid, got %s", got)
	}
}

func TestResolvePayment_FailureAttachesErrorPair(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)

	err := paymentService.ResolvePayment(context.Background(), "pay-1", domain.PaymentStatusFailed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payment := paymentRepo.GetPayment("pay-1")
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected failed, got %s", payment.Status)
	}
	if payment.ErrorCode != "PAYMENT_FAILED" || payment.ErrorDescription != "Payment declined by processor" {
		t.Errorf("unexpected error pair: %q %q", payment.ErrorCode, payment.ErrorDescription)
	}

	// A declined payment never advances the order.
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("expected order still created, got %s", got)
	}
}

func TestResolvePayment_SecondResolutionIsNoOp(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
	ctx := context.Background()

	if err := paymentService.ResolvePayment(ctx, "pay-1", domain.PaymentStatusFailed); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// A duplicate fire with the opposite outcome must not change anything.
	if err := paymentService.ResolvePayment(ctx, "pay-1", domain.PaymentStatusSuccess); err != nil {
		t.Fatalf("duplicate resolution should be silent, got %v", err)
	}

	payment := paymentRepo.GetPayment("pay-1")
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("first resolution must win, got %s", payment.Status)
	}
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("no-op resolution must not touch the order, got %s", got)
	}
}

func TestResolvePayment_UnknownPayment(t *testing.T) {
	t.Parallel()

	paymentService := service.NewPaymentService(NewMockPaymentRepository(), NewMockOrderRepository(), nil, nil, nil)

	err := paymentService.ResolvePayment(context.Background(), "pay-missing", domain.PaymentStatusSuccess)
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolvePayment_NonTerminalOutcomeRejected(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, NewMockOrderRepository(), nil, nil, nil)

	err := paymentService.ResolvePayment(context.Background(), "pay-1", domain.PaymentStatusProcessing)
	if !errors.Is(err, service.ErrInvalidOutcome) {
		t.Fatalf("expected ErrInvalidOutcome, got %v", err)
	}
}

// ──────────────────────────────────────────────
// ORDER ADVANCEMENT UNDER RETRIES AND RACES
// ──────────────────────────────────────────────

func TestResolvePayment_TwoSuccessesAdvanceOrderOnce(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")
	addProcessingPayment(paymentRepo, "pay-2", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
	ctx := context.Background()

	if err := paymentService.ResolvePayment(ctx, "pay-1", domain.PaymentStatusSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := paymentService.ResolvePayment(ctx, "pay-2", domain.PaymentStatusSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusPaid {
		t.Errorf("expected order paid, got %s", got)
	}
	if got := atomic.LoadInt32(&orderRepo.PaidTransitions); got != 1 {
		t.Errorf("expected exactly 1 paid transition, got %d", got)
	}
}

func TestResolvePayment_ConcurrentSuccessesConverge(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))

	const workers = 16
	for i := 0; i < workers; i++ {
		addProcessingPayment(paymentRepo, "pay-"+string(rune('a'+i)), "order-1", "merchant-1")
	}

	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_ = paymentService.ResolvePayment(context.Background(), id, domain.PaymentStatusSuccess)
		}("pay-" + string(rune('a'+i)))
	}
	wg.Wait()

	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusPaid {
		t.Errorf("expected order paid, got %s", got)
	}
	if got := atomic.LoadInt32(&orderRepo.PaidTransitions); got != 1 {
		t.Errorf("expected exactly 1 paid transition, got %d", got)
	}
}

// ──────────────────────────────────────────────
// MERCHANT SCOPED READS
// ──────────────────────────────────────────────

func TestGetPayment_ScopedToMerchant(t *testing.T) {
	t.Parallel()

	paymentRepo := NewMockPaymentRepository()
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	paymentService := service.NewPaymentService(paymentRepo, NewMockOrderRepository(), nil, nil, nil)
	ctx := context.Background()

	if _, err := paymentService.GetPayment(ctx, "merchant-1", "pay-1"); err != nil {
		t.Fatalf("owner lookup failed: %v", err)
	}

	if _, err := paymentService.GetPayment(ctx, "merchant-2", "pay-1"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for foreign merchant, got %v", err)
	}
}

func TestResolvePayment_NotifiesMerchantWebhook(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	merchantRepo := NewMockMerchantRepository()
	merchantRepo.AddMerchant(&domain.Merchant{
		ID:         "merchant-1",
		Name:       "Test Merchant",
		WebhookURL: "https://merchant.example.com/hooks",
		IsActive:   true,
	})
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")

	notifier := service.NewWebhookNotifier(merchantRepo, nil)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, notifier, nil)

	// The notifier must not interfere with the resolution itself.
	if err := paymentService.ResolvePayment(context.Background(), "pay-1", domain.PaymentStatusSuccess); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusSuccess {
		t.Errorf("expected success, got %s", got)
	}
}
