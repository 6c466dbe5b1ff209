package tests

import (
	"context"
	"testing"
	"time"

	"paygate/internal/domain"
	"paygate/internal/instrument"
	"paygate/internal/service"
)

// ──────────────────────────────────────────────
// SETTLEMENT SCHEDULING
// ──────────────────────────────────────────────

func settlementConfig() service.SettlementConfig {
	return service.SettlementConfig{
		MinDelay:        5 * time.Second,
		MaxDelay:        10 * time.Second,
		UPISuccessRate:  0.90,
		CardSuccessRate: 0.95,
	}
}

func newResolvedFixture(t *testing.T) (*MockOrderRepository, *MockPaymentRepository, *service.PaymentService) {
	t.Helper()
	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	orderRepo.AddOrder(newTestOrder("order-1", "merchant-1"))
	addProcessingPayment(paymentRepo, "pay-1", "order-1", "merchant-1")
	return orderRepo, paymentRepo, service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
}

func TestSchedule_DelayDrawnFromWindow(t *testing.T) {
	t.Parallel()

	_, _, paymentService := newResolvedFixture(t)
	clock := NewFakeClock(time.Now())
	// First draw picks the delay.
	rnd := NewFakeRand(0.5)

	scheduler := service.NewSettlementSchedulerWithSources(paymentService, settlementConfig(), clock, rnd, nil)
	scheduler.Schedule("pay-1", domain.PaymentMethodCard)

	delays := clock.PendingDelays()
	if len(delays) != 1 {
		t.Fatalf("expected 1 pending timer, got %d", len(delays))
	}
	// 5s + 0.5*(10s-5s) = 7.5s
	if delays[0] != 7500*time.Millisecond {
		t.Errorf("expected 7.5s delay, got %s", delays[0])
	}
}

func TestSchedule_DegenerateWindowUsesMinDelay(t *testing.T) {
	t.Parallel()

	_, _, paymentService := newResolvedFixture(t)
	clock := NewFakeClock(time.Now())

	cfg := settlementConfig()
	cfg.MaxDelay = cfg.MinDelay

	scheduler := service.NewSettlementSchedulerWithSources(paymentService, cfg, clock, NewFakeRand(0.99), nil)
	scheduler.Schedule("pay-1", domain.PaymentMethodUPI)

	delays := clock.PendingDelays()
	if len(delays) != 1 || delays[0] != cfg.MinDelay {
		t.Fatalf("expected single timer at min delay, got %v", delays)
	}
}

func TestSchedule_OutcomeBelowRateSucceeds(t *testing.T) {
	t.Parallel()

	orderRepo, paymentRepo, paymentService := newResolvedFixture(t)
	clock := NewFakeClock(time.Now())
	// First draw: delay. Second draw: outcome, 0.1 < 0.90 succeeds.
	rnd := NewFakeRand(0.0, 0.1)

	scheduler := service.NewSettlementSchedulerWithSources(paymentService, settlementConfig(), clock, rnd, nil)
	scheduler.Schedule("pay-1", domain.PaymentMethodUPI)
	clock.Fire()

	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusSuccess {
		t.Errorf("expected success, got %s", got)
	}
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusPaid {
		t.Errorf("expected order paid, got %s", got)
	}
}

func TestSchedule_OutcomeAboveRateFails(t *testing.T) {
	t.Parallel()

	orderRepo, paymentRepo, paymentService := newResolvedFixture(t)
	clock := NewFakeClock(time.Now())
	// 0.95 >= 0.90, the UPI flip fails.
	rnd := NewFakeRand(0.0, 0.95)

	scheduler := service.NewSettlementSchedulerWithSources(paymentService, settlementConfig(), clock, rnd, nil)
	scheduler.Schedule("pay-1", domain.PaymentMethodUPI)
	clock.Fire()

	payment := paymentRepo.GetPayment("pay-1")
	if payment.Status != domain.PaymentStatusFailed {
		t.Errorf("expected failed, got %s", payment.Status)
	}
	if payment.ErrorCode != "PAYMENT_FAILED" {
		t.Errorf("expected PAYMENT_FAILED, got %q", payment.ErrorCode)
	}
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("declined settlement must not advance the order, got %s", got)
	}
}

func TestSchedule_RateDependsOnMethod(t *testing.T) {
	t.Parallel()

	// 0.92 fails the 0.90 UPI flip but passes the 0.95 card flip.
	const draw = 0.92

	upiOrders, upiPayments, upiService := newResolvedFixture(t)
	upiClock := NewFakeClock(time.Now())
	upiScheduler := service.NewSettlementSchedulerWithSources(upiService, settlementConfig(), upiClock, NewFakeRand(0.0, draw), nil)
	upiScheduler.Schedule("pay-1", domain.PaymentMethodUPI)
	upiClock.Fire()

	if got := upiPayments.GetPayment("pay-1").Status; got != domain.PaymentStatusFailed {
		t.Errorf("upi: expected failed, got %s", got)
	}
	if got := upiOrders.GetOrder("order-1").Status; got != domain.OrderStatusCreated {
		t.Errorf("upi: expected order created, got %s", got)
	}

	_, cardPayments, cardService := newResolvedFixture(t)
	cardClock := NewFakeClock(time.Now())
	cardScheduler := service.NewSettlementSchedulerWithSources(cardService, settlementConfig(), cardClock, NewFakeRand(0.0, draw), nil)
	cardScheduler.Schedule("pay-1", domain.PaymentMethodCard)
	cardClock.Fire()

	if got := cardPayments.GetPayment("pay-1").Status; got != domain.PaymentStatusSuccess {
		t.Errorf("card: expected success, got %s", got)
	}
}

func TestSchedule_DuplicateFireIsHarmless(t *testing.T) {
	t.Parallel()

	orderRepo, paymentRepo, paymentService := newResolvedFixture(t)
	clock := NewFakeClock(time.Now())
	// First fire succeeds; a duplicate fire would draw 0.99 and fail.
	rnd := NewFakeRand(0.0, 0.1, 0.99)

	scheduler := service.NewSettlementSchedulerWithSources(paymentService, settlementConfig(), clock, rnd, nil)
	scheduler.Schedule("pay-1", domain.PaymentMethodUPI)
	clock.Fire()

	// Simulate a spurious duplicate timer for the same payment.
	scheduler.Schedule("pay-1", domain.PaymentMethodUPI)
	clock.Fire()

	if got := paymentRepo.GetPayment("pay-1").Status; got != domain.PaymentStatusSuccess {
		t.Errorf("terminal state must not change, got %s", got)
	}
	if got := orderRepo.GetOrder("order-1").Status; got != domain.OrderStatusPaid {
		t.Errorf("expected order paid, got %s", got)
	}
}

// ──────────────────────────────────────────────
// END TO END LIFECYCLE
// ──────────────────────────────────────────────

func TestLifecycle_CardPaymentEndToEnd(t *testing.T) {
	t.Parallel()

	orderRepo := NewMockOrderRepository()
	paymentRepo := NewMockPaymentRepository()
	clock := NewFakeClock(time.Now())
	rnd := NewFakeRand(0.3, 0.2) // delay draw, then a successful outcome draw

	orderService := service.NewOrderService(orderRepo, nil, nil)
	paymentService := service.NewPaymentService(paymentRepo, orderRepo, nil, nil, nil)
	scheduler := service.NewSettlementSchedulerWithSources(paymentService, settlementConfig(), clock, rnd, nil)
	paymentService.SetSettler(scheduler)

	ctx := context.Background()

	order, err := orderService.CreateOrder(ctx, service.CreateOrderRequest{
		MerchantID: "merchant-1",
		Amount:     5000,
		Currency:   "INR",
		Receipt:    "rcpt-42",
	})
	if err != nil {
		t.Fatalf("create order: %v", err)
	}
	if order.Status != domain.OrderStatusCreated {
		t.Fatalf("expected created order, got %s", order.Status)
	}

	payment, err := paymentService.CreatePayment(ctx, service.CreatePaymentRequest{
		MerchantID: "merchant-1",
		OrderID:    order.ID,
		Method:     "card",
		Instrument: instrument.Fields{
			CardNumber:  "4111111111111111",
			ExpiryMonth: 12,
			ExpiryYear:  time.Now().Year() + 2,
			CVV:         "123",
		},
	})
	if err != nil {
		t.Fatalf("create payment: %v", err)
	}

	// The response the caller saw: processing, with network and last4.
	if payment.Status != domain.PaymentStatusProcessing {
		t.Errorf("expected processing, got %s", payment.Status)
	}
	if payment.CardNetwork != domain.CardNetworkVisa || payment.CardLast4 != "1111" {
		t.Errorf("card descriptor missing: %s %s", payment.CardNetwork, payment.CardLast4)
	}

	// Settlement fires after the request completed.
	clock.Fire()

	resolved := paymentRepo.GetPayment(payment.ID)
	if !resolved.Status.Terminal() {
		t.Fatalf("expected terminal status after settlement, got %s", resolved.Status)
	}
	if resolved.Status == domain.PaymentStatusSuccess {
		if got := orderRepo.GetOrder(order.ID).Status; got != domain.OrderStatusPaid {
			t.Errorf("successful payment must mark the order paid, got %s", got)
		}
	}
}
