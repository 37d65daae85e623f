package inventory

import (
	"context"
	"testing"

	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockInventoryStore is a mock implementation of inventory.Store
type MockInventoryStore struct {
	mock.Mock
}

func (m *MockInventoryStore) UpdateStock(ctx context.Context, productID string, quantity int, reason string) error {
	args := m.Called(ctx, productID, quantity, reason)
	return args.Error(0)
}

func (m *MockInventoryStore) UpdateThreshold(ctx context.Context, productID string, threshold int) error {
	args := m.Called(ctx, productID, threshold)
	return args.Error(0)
}

func (m *MockInventoryStore) ListLowStock(ctx context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductPage), args.Error(1)
}

func (m *MockInventoryStore) ListOutOfStock(ctx context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductPage), args.Error(1)
}

func (m *MockInventoryStore) CreateProduct(ctx context.Context, p inventory.NewProduct) (*inventory.ProductStock, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.ProductStock), args.Error(1)
}

type fakeMismatchMetrics struct {
	listing string
	count   int
}

func (f *fakeMismatchMetrics) RecordStockMismatch(_ context.Context, listing string, count int) {
	f.listing = listing
	f.count += count
}

// ============================================
// Listing Tests
// ============================================

func TestStockService_ListLowStock_Reclassifies(t *testing.T) {
	store := new(MockInventoryStore)
	metrics := &fakeMismatchMetrics{}
	core, logs := observer.New(zapcore.WarnLevel)
	ctx := context.Background()

	store.On("ListLowStock", ctx, shared.PageRequest{Page: 1, Limit: 10}).Return(&inventory.ProductPage{
		Products: []inventory.ProductStock{
			{ID: "a", StockQuantity: 3, LowStockThreshold: 5, StockStatus: inventory.StockStatusInStock},
			{ID: "b", StockQuantity: 5, LowStockThreshold: 5, StockStatus: inventory.StockStatusLowStock},
			{ID: "c", StockQuantity: 0, LowStockThreshold: 5, StockStatus: inventory.StockStatusLowStock},
		},
		Page: 1, Limit: 10, TotalPages: 1, TotalItems: 3,
	}, nil)

	svc := NewStockService(store, zap.New(core), WithClassificationMetrics(metrics))
	listing, err := svc.ListLowStock(ctx, shared.PageRequest{})
	require.NoError(t, err)

	require.Len(t, listing.Products, 3)
	assert.Equal(t, inventory.StockStatusLowStock, listing.Products[0].EffectiveStatus)
	assert.True(t, listing.Products[0].Stale)
	assert.Equal(t, inventory.StockStatusInStock, listing.Products[0].StockStatus)
	assert.False(t, listing.Products[1].Stale)
	assert.Equal(t, inventory.StockStatusOutOfStock, listing.Products[2].EffectiveStatus)

	assert.Equal(t, 1, listing.Mismatched)
	assert.Equal(t, ListingLowStock, metrics.listing)
	assert.Equal(t, 1, metrics.count)
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "Stock listing disagrees with classifier", logs.All()[0].Message)
}

func TestStockService_ListOutOfStock_Clean(t *testing.T) {
	store := new(MockInventoryStore)
	metrics := &fakeMismatchMetrics{}
	ctx := context.Background()
	page := shared.PageRequest{Page: 2, Limit: 5}

	store.On("ListOutOfStock", ctx, page).Return(&inventory.ProductPage{
		Products: []inventory.ProductStock{
			{ID: "x", StockQuantity: 0, LowStockThreshold: 3, StockStatus: inventory.StockStatusOutOfStock},
		},
		Page: 2, Limit: 5, TotalPages: 2, TotalItems: 6,
	}, nil)

	listing, err := NewStockService(store, nil, WithClassificationMetrics(metrics)).ListOutOfStock(ctx, page)
	require.NoError(t, err)
	assert.Zero(t, listing.Mismatched)
	assert.Zero(t, metrics.count)
	assert.Equal(t, int64(6), listing.TotalItems)
}

func TestStockService_ListOutOfStock_RemoteError(t *testing.T) {
	store := new(MockInventoryStore)
	ctx := context.Background()
	store.On("ListOutOfStock", ctx, shared.PageRequest{Page: 1, Limit: 10}).
		Return(nil, shared.NewRemoteError("list out-of-stock", 503, "unavailable", nil))

	_, err := NewStockService(store, nil).ListOutOfStock(ctx, shared.PageRequest{})
	assert.ErrorIs(t, err, shared.ErrRemote)
}

func TestClassifyRecords(t *testing.T) {
	out := ClassifyRecords([]inventory.StockRecord{
		{ProductID: "a", Quantity: 0, LowStockThreshold: 5, StoredStatus: inventory.StockStatusInStock},
		{ProductID: "b", Quantity: 10, LowStockThreshold: 5, StoredStatus: inventory.StockStatusLowStock},
		{ProductID: "c", Quantity: 4, LowStockThreshold: 0, StoredStatus: inventory.StockStatusLowStock},
	})
	require.Len(t, out, 3)
	assert.Equal(t, inventory.StockStatusOutOfStock, out[0].EffectiveStatus)
	assert.Equal(t, inventory.StockStatusInStock, out[1].EffectiveStatus)
	assert.Equal(t, inventory.StockStatusLowStock, out[2].EffectiveStatus)
	assert.False(t, out[2].Stale)
}

// ============================================
// Update Tests
// ============================================

func TestStockService_UpdateStock(t *testing.T) {
	ctx := context.Background()

	t.Run("negative quantity is rejected locally", func(t *testing.T) {
		store := new(MockInventoryStore)
		err := NewStockService(store, nil).UpdateStock(ctx, "p-1", -1, "")
		var de *shared.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, "INVALID_QUANTITY", de.Code)
		store.AssertNotCalled(t, "UpdateStock", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("reason is trimmed", func(t *testing.T) {
		store := new(MockInventoryStore)
		store.On("UpdateStock", ctx, "p-1", 12, "recount").Return(nil).Once()
		require.NoError(t, NewStockService(store, nil).UpdateStock(ctx, "p-1", 12, "  recount "))
		store.AssertExpectations(t)
	})

	t.Run("empty product id", func(t *testing.T) {
		store := new(MockInventoryStore)
		assert.ErrorIs(t, NewStockService(store, nil).UpdateStock(ctx, " ", 1, ""), shared.ErrInvalidInput)
	})
}

func TestStockService_UpdateThreshold(t *testing.T) {
	ctx := context.Background()
	store := new(MockInventoryStore)
	store.On("UpdateThreshold", ctx, "p-1", 4).Return(nil).Once()

	svc := NewStockService(store, nil)
	require.NoError(t, svc.UpdateThreshold(ctx, "p-1", 4))
	assert.Error(t, svc.UpdateThreshold(ctx, "p-1", -2))
	store.AssertNumberOfCalls(t, "UpdateThreshold", 1)
}
