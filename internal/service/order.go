package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"paygate/internal/domain"
	internalRedis "paygate/internal/redis"
	"paygate/internal/repository"
)

// OrderService handles order creation and lookup.
type OrderService struct {
	orders repository.OrderRepository
	cache  internalRedis.CacheStoreInterface
	logger *zap.Logger
}

// NewOrderService creates a new OrderService. The cache may be nil.
func NewOrderService(orders repository.OrderRepository, cache internalRedis.CacheStoreInterface, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{
		orders: orders,
		cache:  cache,
		logger: logger,
	}
}

// CreateOrderRequest contains the parameters for creating an order.
type CreateOrderRequest struct {
	MerchantID string
	Amount     int64
	Currency   string
	Receipt    string
	Notes      map[string]string
}

// CreateOrder persists a new order in the created state.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*domain.Order, error) {
	if req.Amount <= 0 {
		return nil, ErrInvalidAmount
	}

	currency := req.Currency
	if currency == "" {
		currency = "INR"
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:         newID("order"),
		MerchantID: req.MerchantID,
		Amount:     req.Amount,
		Currency:   currency,
		Receipt:    req.Receipt,
		Notes:      req.Notes,
		Status:     domain.OrderStatusCreated,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.orders.Create(ctx, order); err != nil {
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("merchant_id", order.MerchantID),
		zap.Int64("amount", order.Amount),
		zap.String("currency", order.Currency),
	)

	return order, nil
}

// GetOrder retrieves an order scoped to the calling merchant. An order owned
// by another merchant is reported as not found, never as forbidden, so order
// identifiers cannot be probed across accounts.
func (s *OrderService) GetOrder(ctx context.Context, merchantID, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.MerchantID != merchantID {
		return nil, repository.ErrNotFound
	}

	return order, nil
}

// GetOrderPublic retrieves an order without merchant scoping, for the hosted
// checkout page. Reads go through the cache when one is configured.
func (s *OrderService) GetOrderPublic(ctx context.Context, orderID string) (*domain.Order, error) {
	if orderID == "" {
		return nil, ErrInvalidOrderID
	}

	if s.cache != nil {
		cached, err := s.cache.GetOrder(ctx, orderID)
		if err != nil {
			s.logger.Warn("order cache read failed", zap.String("order_id", orderID), zap.Error(err))
		} else if cached != nil {
			return &domain.Order{
				ID:         cached.ID,
				MerchantID: cached.MerchantID,
				Amount:     cached.Amount,
				Currency:   cached.Currency,
				Status:     domain.OrderStatus(cached.Status),
			}, nil
		}
	}

	order, err := s.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.SetOrder(ctx, &internalRedis.CachedOrder{
			ID:         order.ID,
			MerchantID: order.MerchantID,
			Amount:     order.Amount,
			Currency:   order.Currency,
			Status:     string(order.Status),
		})
	}

	return order, nil
}
