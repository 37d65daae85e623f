package order

import (
	"context"
	"errors"

	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Outcomes reported to StatusMetrics
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// StatusMetrics records status change attempts
type StatusMetrics interface {
	RecordStatusChange(ctx context.Context, from, to order.Status, outcome string)
}

type nopStatusMetrics struct{}

func (nopStatusMetrics) RecordStatusChange(context.Context, order.Status, order.Status, string) {}

// StatusController validates and applies order status changes.
// Displayed status always comes from a confirmed server round-trip.
type StatusController struct {
	store   order.Store
	cache   order.Cache
	queries *QueryService
	logger  *zap.Logger
	metrics StatusMetrics
}

// ControllerOption configures a StatusController
type ControllerOption func(*StatusController)

// WithStatusMetrics sets the metrics recorder
func WithStatusMetrics(m StatusMetrics) ControllerOption {
	return func(c *StatusController) {
		if m != nil {
			c.metrics = m
		}
	}
}

// NewStatusController creates a StatusController. cache may be nil.
func NewStatusController(store order.Store, cache order.Cache, logger *zap.Logger, opts ...ControllerOption) *StatusController {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &StatusController{
		store:   store,
		cache:   cache,
		queries: NewQueryService(store, cache, logger),
		logger:  logger,
		metrics: nopStatusMetrics{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ChangeStatus moves an order to the requested status.
//
// The transition is validated locally first; an invalid request never reaches the order store.
// Exactly one remote mutation is issued otherwise. On success every cached copy of the order and
// every cached order page is dropped and the server's order is returned. On failure nothing local
// changes and nothing is retried.
func (c *StatusController) ChangeStatus(ctx context.Context, orderID string, requested order.Status) (*order.Order, error) {
	if !requested.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Unknown order status: "+requested.String())
	}

	current, err := c.queries.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if err := current.RequestTransition(requested); err != nil {
		logger.Ctx(ctx, c.logger).Info("Order status change rejected",
			zap.String("order_id", orderID),
			zap.String("from", current.Status.String()),
			zap.String("to", requested.String()))
		c.metrics.RecordStatusChange(ctx, current.Status, requested, OutcomeRejected)
		return nil, err
	}

	updated, err := c.store.UpdateStatus(ctx, orderID, requested)
	if err != nil {
		logger.Ctx(ctx, c.logger).Warn("Order status change failed",
			zap.String("order_id", orderID),
			zap.String("from", current.Status.String()),
			zap.String("to", requested.String()),
			zap.Error(err))
		c.metrics.RecordStatusChange(ctx, current.Status, requested, OutcomeFailed)
		if errors.Is(err, shared.ErrNotFound) {
			// a stale cached copy must not outlive the order
			c.invalidate(ctx, orderID)
		}
		return nil, err
	}

	c.invalidate(ctx, orderID)
	c.metrics.RecordStatusChange(ctx, current.Status, requested, OutcomeAccepted)
	logger.Ctx(ctx, c.logger).Info("Order status changed",
		zap.String("order_id", orderID),
		zap.String("from", current.Status.String()),
		zap.String("to", updated.Status.String()))

	return updated, nil
}

func (c *StatusController) invalidate(ctx context.Context, orderID string) {
	if c.cache == nil {
		return
	}
	if err := c.cache.InvalidateOrder(ctx, orderID); err != nil {
		logger.Ctx(ctx, c.logger).Warn("Order cache invalidation failed", zap.String("order_id", orderID), zap.Error(err))
	}
	if err := c.cache.InvalidateLists(ctx); err != nil {
		logger.Ctx(ctx, c.logger).Warn("Order list cache invalidation failed", zap.Error(err))
	}
}
