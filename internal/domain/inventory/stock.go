package inventory

import (
	"github.com/storefront/console/internal/domain/shared"
)

// StockStatus is the stock classification of a product
type StockStatus string

const (
	StockStatusInStock    StockStatus = "IN_STOCK"
	StockStatusLowStock   StockStatus = "LOW_STOCK"
	StockStatusOutOfStock StockStatus = "OUT_OF_STOCK"
)

// IsValid checks if the status is a known StockStatus
func (s StockStatus) IsValid() bool {
	switch s {
	case StockStatusInStock, StockStatusLowStock, StockStatusOutOfStock:
		return true
	}
	return false
}

// String returns the string representation of StockStatus
func (s StockStatus) String() string {
	return string(s)
}

// Classify derives the effective stock status from quantity and threshold.
//
// A product with stock but no threshold (threshold == 0) has no rule that
// applies; the stored status is returned unchanged for it.
func Classify(quantity, threshold int, stored StockStatus) StockStatus {
	switch {
	case quantity <= 0:
		return StockStatusOutOfStock
	case threshold <= 0:
		return stored
	case quantity <= threshold:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsOutOfStock is the predicate an out-of-stock listing must apply
func IsOutOfStock(quantity int) bool {
	return quantity <= 0
}

// IsLowStock is the predicate a low-stock listing must apply.
// Out-of-stock rows are not low-stock.
func IsLowStock(quantity, threshold int) bool {
	return quantity > 0 && threshold > 0 && quantity <= threshold
}

// StockRecord is the stock state of one product.
// StoredStatus is a cached label; callers read EffectiveStatus.
type StockRecord struct {
	ProductID         string      `json:"productId"`
	Quantity          int         `json:"quantity"`
	LowStockThreshold int         `json:"lowStockThreshold"`
	StoredStatus      StockStatus `json:"storedStatus"`
}

// NewStockRecord validates and builds a StockRecord
func NewStockRecord(productID string, quantity, threshold int, stored StockStatus) (*StockRecord, error) {
	if productID == "" {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product ID cannot be empty")
	}
	if err := ValidateQuantity(quantity); err != nil {
		return nil, err
	}
	if err := ValidateThreshold(threshold); err != nil {
		return nil, err
	}
	return &StockRecord{
		ProductID:         productID,
		Quantity:          quantity,
		LowStockThreshold: threshold,
		StoredStatus:      stored,
	}, nil
}

// EffectiveStatus recomputes the classification on every read
func (r StockRecord) EffectiveStatus() StockStatus {
	return Classify(r.Quantity, r.LowStockThreshold, r.StoredStatus)
}

// IsStale reports whether the stored label disagrees with the effective status
func (r StockRecord) IsStale() bool {
	return r.StoredStatus != r.EffectiveStatus()
}

// ValidateQuantity checks a stock quantity
func ValidateQuantity(quantity int) error {
	if quantity < 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Quantity cannot be negative")
	}
	return nil
}

// ValidateThreshold checks a low-stock threshold
func ValidateThreshold(threshold int) error {
	if threshold < 0 {
		return shared.NewDomainError("INVALID_THRESHOLD", "Low stock threshold cannot be negative")
	}
	return nil
}
