package handler

import (
	"strings"

	"github.com/shopspring/decimal"
	inventoryapp "github.com/storefront/console/internal/application/inventory"
	"github.com/storefront/console/internal/domain/inventory"
)

// UpdateStockRequest sets the stock quantity of a product
type UpdateStockRequest struct {
	Quantity *int   `json:"quantity" binding:"required,gte=0"`
	Reason   string `json:"reason" binding:"omitempty,max=255"`
}

// UpdateThresholdRequest sets the low-stock threshold of a product
type UpdateThresholdRequest struct {
	Threshold *int `json:"threshold" binding:"required,gte=0"`
}

// StockRecordInput is one row submitted for classification
type StockRecordInput struct {
	ProductID         string `json:"productId" binding:"required"`
	Quantity          *int   `json:"quantity" binding:"required"`
	LowStockThreshold *int   `json:"lowStockThreshold" binding:"required,gte=0"`
	StoredStatus      string `json:"storedStatus" binding:"omitempty,stock_status"`
}

// ClassifyRequest holds the rows to classify
type ClassifyRequest struct {
	Records []StockRecordInput `json:"records" binding:"required,min=1,max=500,dive"`
}

// StockRecords converts the request rows. A missing stored status reads as IN_STOCK.
func (r ClassifyRequest) StockRecords() ([]inventory.StockRecord, error) {
	out := make([]inventory.StockRecord, 0, len(r.Records))
	for _, in := range r.Records {
		stored := inventory.StockStatus(in.StoredStatus)
		if stored == "" {
			stored = inventory.StockStatusInStock
		}
		rec, err := inventory.NewStockRecord(in.ProductID, *in.Quantity, *in.LowStockThreshold, stored)
		if err != nil {
			return nil, err
		}
		out = append(out, *rec)
	}
	return out, nil
}

// CreateProductRequest creates a product and then sets its stock and threshold
type CreateProductRequest struct {
	Name        string          `json:"name" binding:"required,min=1,max=200"`
	Price       decimal.Decimal `json:"price"`
	Currency    string          `json:"currency" binding:"omitempty,len=3"`
	CategoryID  string          `json:"categoryId"`
	Description string          `json:"description" binding:"omitempty,max=2000"`
	Quantity    *int            `json:"quantity" binding:"required,gte=0"`
	Threshold   *int            `json:"threshold" binding:"required,gte=0"`
	Reason      string          `json:"reason" binding:"omitempty,max=255"`
}

// ProvisionRequest converts the body into the application request.
// The product is created with the status its stock classifies to.
func (r CreateProductRequest) ProvisionRequest() inventoryapp.ProvisionRequest {
	quantity, threshold := *r.Quantity, *r.Threshold
	return inventoryapp.ProvisionRequest{
		Product: inventory.NewProduct{
			Name:              strings.TrimSpace(r.Name),
			Price:             r.Price,
			Currency:          strings.ToUpper(r.Currency),
			CategoryID:        r.CategoryID,
			Description:       r.Description,
			StockQuantity:     quantity,
			LowStockThreshold: threshold,
			StockStatus:       inventory.Classify(quantity, threshold, inventory.StockStatusInStock),
		},
		Quantity:  quantity,
		Threshold: threshold,
		Reason:    r.Reason,
	}
}

// ListingResponse is one classified page of a stock listing
type ListingResponse struct {
	Products []inventoryapp.ClassifiedProduct `json:"products"`
	// Mismatched counts rows whose effective status does not belong in the listing
	Mismatched int `json:"mismatched"`
}
