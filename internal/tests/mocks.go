package tests

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"paygate/internal/domain"
	"paygate/internal/repository"
)

// ──────────────────────────────────────────────
// MOCK ORDER REPOSITORY
// ──────────────────────────────────────────────

// MockOrderRepository is a mock implementation of OrderRepository.
type MockOrderRepository struct {
	mu     sync.RWMutex
	orders map[string]*domain.Order

	// Counters for verification
	CreateCallCount   int32
	MarkPaidCallCount int32
	// PaidTransitions counts calls that actually advanced an order.
	PaidTransitions int32

	// Error injection
	CreateError   error
	GetError      error
	MarkPaidError error
}

// NewMockOrderRepository creates a new mock order repository.
func NewMockOrderRepository() *MockOrderRepository {
	return &MockOrderRepository{
		orders: make(map[string]*domain.Order),
	}
}

// AddOrder adds an order to the mock repository.
func (m *MockOrderRepository) AddOrder(order *domain.Order) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
}

func (m *MockOrderRepository) Create(ctx context.Context, order *domain.Order) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.orders[order.ID] = order
	return nil
}

func (m *MockOrderRepository) GetByID(ctx context.Context, id string) (*domain.Order, error) {
	if m.GetError != nil {
		return nil, m.GetError
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	order, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	// Return a copy to avoid mutation issues.
	copy := *order
	return &copy, nil
}

func (m *MockOrderRepository) MarkPaid(ctx context.Context, id string) (bool, error) {
	atomic.AddInt32(&m.MarkPaidCallCount, 1)
	if m.MarkPaidError != nil {
		return false, m.MarkPaidError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	order, ok := m.orders[id]
	if !ok || order.Status != domain.OrderStatusCreated {
		return false, nil
	}
	order.Status = domain.OrderStatusPaid
	order.UpdatedAt = time.Now()
	atomic.AddInt32(&m.PaidTransitions, 1)
	return true, nil
}

// GetOrder returns an order for test assertions.
func (m *MockOrderRepository) GetOrder(id string) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

// ──────────────────────────────────────────────
// MOCK PAYMENT REPOSITORY
// ──────────────────────────────────────────────

// MockPaymentRepository is a mock implementation of PaymentRepository.
type MockPaymentRepository struct {
	mu       sync.RWMutex
	payments map[string]*domain.Payment

	// Counters for verification
	CreateCallCount  int32
	ResolveCallCount int32

	// Error injection
	CreateError  error
	ResolveError error
}

// NewMockPaymentRepository creates a new mock payment repository.
func NewMockPaymentRepository() *MockPaymentRepository {
	return &MockPaymentRepository{
		payments: make(map[string]*domain.Payment),
	}
}

// AddPayment adds a payment to the mock repository.
func (m *MockPaymentRepository) AddPayment(payment *domain.Payment) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
}

func (m *MockPaymentRepository) Create(ctx context.Context, payment *domain.Payment) error {
	atomic.AddInt32(&m.CreateCallCount, 1)
	if m.CreateError != nil {
		return m.CreateError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payments[payment.ID] = payment
	return nil
}

func (m *MockPaymentRepository) GetByID(ctx context.Context, id string) (*domain.Payment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	payment, ok := m.payments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *payment
	return &copy, nil
}

func (m *MockPaymentRepository) Resolve(ctx context.Context, id string, status domain.PaymentStatus, errorCode, errorDescription string) (bool, error) {
	atomic.AddInt32(&m.ResolveCallCount, 1)
	if m.ResolveError != nil {
		return false, m.ResolveError
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	payment, ok := m.payments[id]
	// Matches the conditional UPDATE: only a processing row transitions.
	if !ok || payment.Status != domain.PaymentStatusProcessing {
		return false, nil
	}
	payment.Status = status
	payment.ErrorCode = errorCode
	payment.ErrorDescription = errorDescription
	payment.UpdatedAt = time.Now()
	return true, nil
}

// GetPayment returns a payment for test assertions.
func (m *MockPaymentRepository) GetPayment(id string) *domain.Payment {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.payments[id]
}

// CountPayments returns the number of stored payments.
func (m *MockPaymentRepository) CountPayments() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.payments)
}

// ──────────────────────────────────────────────
// MOCK MERCHANT REPOSITORY
// ──────────────────────────────────────────────

// MockMerchantRepository is a mock implementation of MerchantRepository.
type MockMerchantRepository struct {
	mu        sync.RWMutex
	merchants map[string]*domain.Merchant
}

// NewMockMerchantRepository creates a new mock merchant repository.
func NewMockMerchantRepository() *MockMerchantRepository {
	return &MockMerchantRepository{
		merchants: make(map[string]*domain.Merchant),
	}
}

// AddMerchant adds a merchant to the mock repository.
func (m *MockMerchantRepository) AddMerchant(merchant *domain.Merchant) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.merchants[merchant.ID] = merchant
}

func (m *MockMerchantRepository) Create(ctx context.Context, merchant *domain.Merchant) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.merchants[merchant.ID]; ok {
		return nil
	}
	m.merchants[merchant.ID] = merchant
	return nil
}

func (m *MockMerchantRepository) GetByID(ctx context.Context, id string) (*domain.Merchant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	merchant, ok := m.merchants[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	copy := *merchant
	return &copy, nil
}

func (m *MockMerchantRepository) GetByCredentials(ctx context.Context, apiKey, apiSecret string) (*domain.Merchant, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, merchant := range m.merchants {
		if merchant.APIKey == apiKey && merchant.APISecret == apiSecret && merchant.IsActive {
			copy := *merchant
			return &copy, nil
		}
	}
	return nil, repository.ErrNotFound
}

// ──────────────────────────────────────────────
// FAKE CLOCK AND RANDOMNESS
// ──────────────────────────────────────────────

type fakeTimer struct {
	delay time.Duration
	fn    func()
}

// FakeClock implements service.Clock with manually fired timers.
type FakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []fakeTimer
}

// NewFakeClock creates a fake clock anchored at the given time.
func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now}
}

func (c *FakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *FakeClock) AfterFunc(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.timers = append(c.timers, fakeTimer{delay: d, fn: fn})
}

// PendingDelays returns the delays of all timers not yet fired.
func (c *FakeClock) PendingDelays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	delays := make([]time.Duration, 0, len(c.timers))
	for _, t := range c.timers {
		delays = append(delays, t.delay)
	}
	return delays
}

// Fire runs every pending timer synchronously and clears the queue.
func (c *FakeClock) Fire() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()

	for _, t := range timers {
		t.fn()
	}
}

// FakeRand implements service.RandSource, yielding a fixed sequence of
// values and repeating the last one when exhausted.
type FakeRand struct {
	mu     sync.Mutex
	values []float64
	index  int
}

// NewFakeRand creates a fake random source with the given draw sequence.
func NewFakeRand(values ...float64) *FakeRand {
	return &FakeRand{values: values}
}

func (r *FakeRand) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.index]
	if r.index < len(r.values)-1 {
		r.index++
	}
	return v
}

// ──────────────────────────────────────────────
// RECORDING SETTLER
// ──────────────────────────────────────────────

// ScheduledSettlement records one Schedule call.
type ScheduledSettlement struct {
	PaymentID string
	Method    domain.PaymentMethod
}

// RecordingSettler captures scheduled settlements without firing them.
type RecordingSettler struct {
	mu        sync.Mutex
	Scheduled []ScheduledSettlement
}

func (s *RecordingSettler) Schedule(paymentID string, method domain.PaymentMethod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Scheduled = append(s.Scheduled, ScheduledSettlement{PaymentID: paymentID, Method: method})
}

// Count returns the number of scheduled settlements.
func (s *RecordingSettler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Scheduled)
}
