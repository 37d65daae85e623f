package order

import (
	"context"
	"time"

	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

const (
	// DefaultOrderTTL is how long a fetched order stays in the read cache
	DefaultOrderTTL = 30 * time.Second
	// DefaultListTTL is how long a fetched order page stays in the read cache
	DefaultListTTL = 15 * time.Second
)

// Transitions lists the statuses an order may move to
type Transitions struct {
	OrderID string         `json:"order_id"`
	Current order.Status   `json:"current"`
	Allowed []order.Status `json:"allowed"`
}

// QueryService serves order reads through the read cache
type QueryService struct {
	store    order.Store
	cache    order.Cache
	logger   *zap.Logger
	orderTTL time.Duration
	listTTL  time.Duration
}

// QueryOption configures a QueryService
type QueryOption func(*QueryService)

// WithCacheTTL sets the cache lifetimes for single orders and order pages
func WithCacheTTL(orderTTL, listTTL time.Duration) QueryOption {
	return func(s *QueryService) {
		s.orderTTL = orderTTL
		s.listTTL = listTTL
	}
}

// NewQueryService creates a QueryService. cache may be nil.
func NewQueryService(store order.Store, cache order.Cache, logger *zap.Logger, opts ...QueryOption) *QueryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &QueryService{
		store:    store,
		cache:    cache,
		logger:   logger,
		orderTTL: DefaultOrderTTL,
		listTTL:  DefaultListTTL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns an order, from the cache when present
func (s *QueryService) Get(ctx context.Context, id string) (*order.Order, error) {
	if s.cache != nil {
		o, ok, err := s.cache.GetOrder(ctx, id)
		if err != nil {
			logger.Ctx(ctx, s.logger).Warn("Order cache read failed", zap.String("order_id", id), zap.Error(err))
		} else if ok {
			return o, nil
		}
	}
	return s.Fetch(ctx, id)
}

// Fetch reads an order from the order store and refreshes the cache entry
func (s *QueryService) Fetch(ctx context.Context, id string) (*order.Order, error) {
	o, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetOrder(ctx, o, s.orderTTL); err != nil {
			logger.Ctx(ctx, s.logger).Warn("Order cache write failed", zap.String("order_id", id), zap.Error(err))
		}
	}
	return o, nil
}

// List returns one page of orders
func (s *QueryService) List(ctx context.Context, filter order.ListFilter) (*order.Page, error) {
	key := filter.CacheKey()
	if s.cache != nil {
		page, ok, err := s.cache.GetList(ctx, key)
		if err != nil {
			logger.Ctx(ctx, s.logger).Warn("Order list cache read failed", zap.String("key", key), zap.Error(err))
		} else if ok {
			return page, nil
		}
	}

	page, err := s.store.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetList(ctx, key, page, s.listTTL); err != nil {
			logger.Ctx(ctx, s.logger).Warn("Order list cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return page, nil
}

// AvailableTransitions returns the choices to present for an order.
// The order is read fresh so the operator never picks from a stale status.
func (s *QueryService) AvailableTransitions(ctx context.Context, id string) (*Transitions, error) {
	o, err := s.Fetch(ctx, id)
	if err != nil {
		return nil, err
	}
	return &Transitions{
		OrderID: o.ID,
		Current: o.Status,
		Allowed: o.AllowedTransitions(),
	}, nil
}
