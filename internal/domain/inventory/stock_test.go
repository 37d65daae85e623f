package inventory

import (
	"testing"

	"github.com/storefront/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name      string
		quantity  int
		threshold int
		stored    StockStatus
		want      StockStatus
	}{
		{"zero quantity is out of stock", 0, 5, StockStatusInStock, StockStatusOutOfStock},
		{"negative quantity is out of stock", -3, 5, StockStatusInStock, StockStatusOutOfStock},
		{"zero quantity without threshold", 0, 0, StockStatusInStock, StockStatusOutOfStock},
		{"below threshold is low stock", 3, 5, StockStatusInStock, StockStatusLowStock},
		{"at threshold is low stock", 5, 5, StockStatusInStock, StockStatusLowStock},
		{"above threshold is in stock", 10, 5, StockStatusLowStock, StockStatusInStock},
		{"one above threshold", 6, 5, StockStatusOutOfStock, StockStatusInStock},
		{"no threshold keeps stored in stock", 7, 0, StockStatusInStock, StockStatusInStock},
		{"no threshold keeps stored low stock", 7, 0, StockStatusLowStock, StockStatusLowStock},
		{"no threshold keeps stored out of stock", 1, 0, StockStatusOutOfStock, StockStatusOutOfStock},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.quantity, tt.threshold, tt.stored))
		})
	}
}

func TestClassify_AgreesWithListingPredicates(t *testing.T) {
	for q := -1; q <= 12; q++ {
		for th := 1; th <= 8; th++ {
			got := Classify(q, th, StockStatusInStock)
			assert.Equal(t, got == StockStatusOutOfStock, IsOutOfStock(q), "q=%d th=%d", q, th)
			assert.Equal(t, got == StockStatusLowStock, IsLowStock(q, th), "q=%d th=%d", q, th)
		}
	}
}

func TestStockRecord_EffectiveStatus(t *testing.T) {
	rec, err := NewStockRecord("prod-1", 2, 5, StockStatusInStock)
	require.NoError(t, err)

	assert.Equal(t, StockStatusLowStock, rec.EffectiveStatus())
	assert.True(t, rec.IsStale())
	assert.Equal(t, StockStatusInStock, rec.StoredStatus, "stored label is never rewritten")
}

func TestNewStockRecord_Validation(t *testing.T) {
	_, err := NewStockRecord("", 1, 1, StockStatusInStock)
	assert.Error(t, err)

	_, err = NewStockRecord("p", -1, 1, StockStatusInStock)
	var de *shared.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_QUANTITY", de.Code)

	_, err = NewStockRecord("p", 1, -1, StockStatusInStock)
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "INVALID_THRESHOLD", de.Code)
}

func TestStockStatus_IsValid(t *testing.T) {
	assert.True(t, StockStatusInStock.IsValid())
	assert.True(t, StockStatusLowStock.IsValid())
	assert.True(t, StockStatusOutOfStock.IsValid())
	assert.False(t, StockStatus("DISCONTINUED").IsValid())
}

func TestProductStock_Record(t *testing.T) {
	p := ProductStock{ID: "p-1", StockQuantity: 4, LowStockThreshold: 4, StockStatus: StockStatusInStock}
	rec := p.Record()
	assert.Equal(t, "p-1", rec.ProductID)
	assert.Equal(t, StockStatusLowStock, rec.EffectiveStatus())
}
