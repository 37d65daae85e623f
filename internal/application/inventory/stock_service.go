package inventory

import (
	"context"
	"strings"

	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// Listing names used in logs and metrics
const (
	ListingLowStock   = "low_stock"
	ListingOutOfStock = "out_of_stock"
)

// ClassificationMetrics records listing rows whose effective status disagrees with the listing
type ClassificationMetrics interface {
	RecordStockMismatch(ctx context.Context, listing string, count int)
}

type nopClassificationMetrics struct{}

func (nopClassificationMetrics) RecordStockMismatch(context.Context, string, int) {}

// ClassifiedProduct is a listing row with its recomputed status
type ClassifiedProduct struct {
	inventory.ProductStock
	EffectiveStatus inventory.StockStatus `json:"effectiveStatus"`
	// Stale is true when the stored label differs from the effective status
	Stale bool `json:"stale"`
}

// Listing is one classified page of a stock listing
type Listing struct {
	Products   []ClassifiedProduct
	Page       int
	Limit      int
	TotalPages int
	TotalItems int64
	// Mismatched counts rows the listing should not have returned
	Mismatched int
}

// StockService reads and adjusts product stock through the remote inventory store
type StockService struct {
	store   inventory.Store
	logger  *zap.Logger
	metrics ClassificationMetrics
}

// StockServiceOption configures a StockService
type StockServiceOption func(*StockService)

// WithClassificationMetrics sets the mismatch recorder
func WithClassificationMetrics(m ClassificationMetrics) StockServiceOption {
	return func(s *StockService) {
		if m != nil {
			s.metrics = m
		}
	}
}

// NewStockService creates a new StockService
func NewStockService(store inventory.Store, logger *zap.Logger, opts ...StockServiceOption) *StockService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &StockService{
		store:   store,
		logger:  logger,
		metrics: nopClassificationMetrics{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListLowStock returns the low-stock listing, reclassified
func (s *StockService) ListLowStock(ctx context.Context, page shared.PageRequest) (*Listing, error) {
	raw, err := s.store.ListLowStock(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}
	return s.classifyPage(ctx, ListingLowStock, raw, func(p inventory.ProductStock) bool {
		return inventory.IsLowStock(p.StockQuantity, p.LowStockThreshold)
	}), nil
}

// ListOutOfStock returns the out-of-stock listing, reclassified
func (s *StockService) ListOutOfStock(ctx context.Context, page shared.PageRequest) (*Listing, error) {
	raw, err := s.store.ListOutOfStock(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}
	return s.classifyPage(ctx, ListingOutOfStock, raw, func(p inventory.ProductStock) bool {
		return inventory.IsOutOfStock(p.StockQuantity)
	}), nil
}

func (s *StockService) classifyPage(ctx context.Context, listing string, raw *inventory.ProductPage, belongs func(inventory.ProductStock) bool) *Listing {
	out := &Listing{
		Products:   make([]ClassifiedProduct, 0, len(raw.Products)),
		Page:       raw.Page,
		Limit:      raw.Limit,
		TotalPages: raw.TotalPages,
		TotalItems: raw.TotalItems,
	}
	var mismatched []string
	for _, p := range raw.Products {
		out.Products = append(out.Products, Classify(p))
		if !belongs(p) {
			mismatched = append(mismatched, p.ID)
		}
	}
	out.Mismatched = len(mismatched)
	if out.Mismatched > 0 {
		logger.Ctx(ctx, s.logger).Warn("Stock listing disagrees with classifier",
			zap.String("listing", listing),
			zap.Int("mismatched", out.Mismatched),
			zap.Strings("product_ids", mismatched))
		s.metrics.RecordStockMismatch(ctx, listing, out.Mismatched)
	}
	return out
}

// Classify recomputes the status of one product row
func Classify(p inventory.ProductStock) ClassifiedProduct {
	rec := p.Record()
	return ClassifiedProduct{
		ProductStock:    p,
		EffectiveStatus: rec.EffectiveStatus(),
		Stale:           rec.IsStale(),
	}
}

// ClassifyRecords recomputes the status of arbitrary stock records
func ClassifyRecords(records []inventory.StockRecord) []ClassifiedRecord {
	out := make([]ClassifiedRecord, 0, len(records))
	for _, r := range records {
		out = append(out, ClassifiedRecord{
			StockRecord:     r,
			EffectiveStatus: r.EffectiveStatus(),
			Stale:           r.IsStale(),
		})
	}
	return out
}

// ClassifiedRecord is a stock record with its recomputed status
type ClassifiedRecord struct {
	inventory.StockRecord
	EffectiveStatus inventory.StockStatus `json:"effectiveStatus"`
	Stale           bool                  `json:"stale"`
}

// UpdateStock sets the stock quantity of a product
func (s *StockService) UpdateStock(ctx context.Context, productID string, quantity int, reason string) error {
	if strings.TrimSpace(productID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if err := inventory.ValidateQuantity(quantity); err != nil {
		return err
	}
	if err := s.store.UpdateStock(ctx, productID, quantity, strings.TrimSpace(reason)); err != nil {
		logger.Ctx(ctx, s.logger).Warn("Stock update failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	logger.Ctx(ctx, s.logger).Info("Stock updated",
		zap.String("product_id", productID),
		zap.Int("quantity", quantity),
		zap.String("reason", reason))
	return nil
}

// UpdateThreshold sets the low-stock threshold of a product
func (s *StockService) UpdateThreshold(ctx context.Context, productID string, threshold int) error {
	if strings.TrimSpace(productID) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Product ID cannot be empty")
	}
	if err := inventory.ValidateThreshold(threshold); err != nil {
		return err
	}
	if err := s.store.UpdateThreshold(ctx, productID, threshold); err != nil {
		logger.Ctx(ctx, s.logger).Warn("Threshold update failed", zap.String("product_id", productID), zap.Error(err))
		return err
	}
	logger.Ctx(ctx, s.logger).Info("Low stock threshold updated",
		zap.String("product_id", productID),
		zap.Int("threshold", threshold))
	return nil
}
