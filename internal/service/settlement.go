package service

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"paygate/internal/domain"
)

// Clock abstracts time for the scheduler so tests can trigger resolutions
// deterministically.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, fn func())
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, fn func()) { time.AfterFunc(d, fn) }

// RandSource abstracts randomness for delay and outcome sampling.
type RandSource interface {
	Float64() float64
}

// systemRand draws from the package-level math/rand source, which is safe for
// concurrent use.
type systemRand struct{}

func (systemRand) Float64() float64 { return rand.Float64() }

// SettlementConfig controls the simulated settlement behavior.
type SettlementConfig struct {
	MinDelay        time.Duration
	MaxDelay        time.Duration
	UPISuccessRate  float64
	CardSuccessRate float64
}

// PaymentResolver is the slice of the state machine the scheduler drives.
type PaymentResolver interface {
	ResolvePayment(ctx context.Context, paymentID string, outcome domain.PaymentStatus) error
}

// SettlementScheduler simulates settlement latency and nondeterministic
// outcome. Each payment gets exactly one deferred resolution; there is no
// cancellation or rescheduling. Resolutions run detached from the request
// that created the payment, so they fire after the response has been sent.
type SettlementScheduler struct {
	resolver PaymentResolver
	cfg      SettlementConfig
	clock    Clock
	rand     RandSource
	logger   *zap.Logger

	resolveTimeout time.Duration
}

// NewSettlementScheduler creates a scheduler using the wall clock and the
// shared math/rand source.
func NewSettlementScheduler(resolver PaymentResolver, cfg SettlementConfig, logger *zap.Logger) *SettlementScheduler {
	return NewSettlementSchedulerWithSources(resolver, cfg, systemClock{}, systemRand{}, logger)
}

// NewSettlementSchedulerWithSources creates a scheduler with injected clock
// and randomness.
func NewSettlementSchedulerWithSources(resolver PaymentResolver, cfg SettlementConfig, clock Clock, rnd RandSource, logger *zap.Logger) *SettlementScheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettlementScheduler{
		resolver:       resolver,
		cfg:            cfg,
		clock:          clock,
		rand:           rnd,
		logger:         logger,
		resolveTimeout: 10 * time.Second,
	}
}

// Schedule enqueues the single deferred resolution for a freshly created
// payment. The delay is drawn uniformly from [MinDelay, MaxDelay]; the
// outcome is drawn at resolution time as a weighted coin flip with the
// method's configured success rate.
func (s *SettlementScheduler) Schedule(paymentID string, method domain.PaymentMethod) {
	delay := s.cfg.MinDelay
	if window := s.cfg.MaxDelay - s.cfg.MinDelay; window > 0 {
		delay += time.Duration(s.rand.Float64() * float64(window))
	}

	s.logger.Info("settlement scheduled",
		zap.String("payment_id", paymentID),
		zap.String("method", string(method)),
		zap.Duration("delay", delay),
	)

	s.clock.AfterFunc(delay, func() {
		s.fire(paymentID, method)
	})
}

func (s *SettlementScheduler) fire(paymentID string, method domain.PaymentMethod) {
	outcome := domain.PaymentStatusFailed
	if s.rand.Float64() < s.successRate(method) {
		outcome = domain.PaymentStatusSuccess
	}

	// The originating request is long gone; resolution runs on its own context.
	ctx, cancel := context.WithTimeout(context.Background(), s.resolveTimeout)
	defer cancel()

	if err := s.resolver.ResolvePayment(ctx, paymentID, outcome); err != nil {
		s.logger.Error("settlement resolution failed",
			zap.String("payment_id", paymentID),
			zap.String("outcome", string(outcome)),
			zap.Error(err),
		)
	}
}

func (s *SettlementScheduler) successRate(method domain.PaymentMethod) float64 {
	if method == domain.PaymentMethodUPI {
		return s.cfg.UPISuccessRate
	}
	return s.cfg.CardSuccessRate
}
