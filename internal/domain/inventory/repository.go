package inventory

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/storefront/console/internal/domain/shared"
)

// ProductStock is a product row as returned by the inventory listings
type ProductStock struct {
	ID                string          `json:"id"`
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency,omitempty"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	StockStatus       StockStatus     `json:"stockStatus"`
}

// Record returns the stock portion of the product
func (p ProductStock) Record() StockRecord {
	return StockRecord{
		ProductID:         p.ID,
		Quantity:          p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		StoredStatus:      p.StockStatus,
	}
}

// ProductPage is one page of products from a listing endpoint
type ProductPage struct {
	Products   []ProductStock
	Page       int
	Limit      int
	TotalPages int
	TotalItems int64
}

// NewProduct is the payload of a product creation request
type NewProduct struct {
	Name              string          `json:"name"`
	Price             decimal.Decimal `json:"price"`
	Currency          string          `json:"currency"`
	CategoryID        string          `json:"categoryId"`
	Description       string          `json:"description"`
	StockQuantity     int             `json:"stockQuantity"`
	LowStockThreshold int             `json:"lowStockThreshold"`
	StockStatus       StockStatus     `json:"stockStatus"`
}

// Store is the remote inventory store
type Store interface {
	UpdateStock(ctx context.Context, productID string, quantity int, reason string) error
	UpdateThreshold(ctx context.Context, productID string, threshold int) error
	ListLowStock(ctx context.Context, page shared.PageRequest) (*ProductPage, error)
	ListOutOfStock(ctx context.Context, page shared.PageRequest) (*ProductPage, error)
	CreateProduct(ctx context.Context, p NewProduct) (*ProductStock, error)
}
