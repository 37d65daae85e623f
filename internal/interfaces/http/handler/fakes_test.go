package handler

import (
	"context"
	"sync"

	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/domain/order"
	"github.com/storefront/console/internal/domain/shared"
	"github.com/storefront/console/internal/interfaces/http/middleware"
)

func init() {
	middleware.SetupValidator()
}

// fakeOrderStore is an in-memory order.Store
type fakeOrderStore struct {
	mu        sync.Mutex
	orders    map[string]*order.Order
	listErr   error
	updateErr error
	updates   int
	lastList  order.ListFilter
}

func newFakeOrderStore(orders ...*order.Order) *fakeOrderStore {
	s := &fakeOrderStore{orders: make(map[string]*order.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *fakeOrderStore) Get(_ context.Context, id string) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Order "+id+" not found")
	}
	cp := *o
	return &cp, nil
}

func (s *fakeOrderStore) List(_ context.Context, filter order.ListFilter) (*order.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastList = filter
	if s.listErr != nil {
		return nil, s.listErr
	}
	page := &order.Page{Page: filter.Page, Limit: filter.Limit, TotalPages: 1}
	for _, o := range s.orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		page.Orders = append(page.Orders, *o)
	}
	page.TotalItems = int64(len(page.Orders))
	return page, nil
}

func (s *fakeOrderStore) UpdateStatus(_ context.Context, id string, status order.Status) (*order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates++
	if s.updateErr != nil {
		return nil, s.updateErr
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeNotFound, "Order "+id+" not found")
	}
	o.Status = status
	cp := *o
	return &cp, nil
}

// fakeInventoryStore is a scripted inventory.Store
type fakeInventoryStore struct {
	mu           sync.Mutex
	low          *inventory.ProductPage
	out          *inventory.ProductPage
	stock        map[string]int
	thresholds   map[string]int
	createErr    error
	stockErr     error
	thresholdErr error
	lastPage     shared.PageRequest
	created      []inventory.NewProduct
}

func newFakeInventoryStore() *fakeInventoryStore {
	return &fakeInventoryStore{
		stock:      make(map[string]int),
		thresholds: make(map[string]int),
	}
}

func (s *fakeInventoryStore) UpdateStock(_ context.Context, productID string, quantity int, _ string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stockErr != nil {
		return s.stockErr
	}
	s.stock[productID] = quantity
	return nil
}

func (s *fakeInventoryStore) UpdateThreshold(_ context.Context, productID string, threshold int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.thresholdErr != nil {
		return s.thresholdErr
	}
	s.thresholds[productID] = threshold
	return nil
}

func (s *fakeInventoryStore) ListLowStock(_ context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPage = page
	if s.low == nil {
		return &inventory.ProductPage{Page: 1, Limit: 10}, nil
	}
	return s.low, nil
}

func (s *fakeInventoryStore) ListOutOfStock(_ context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastPage = page
	if s.out == nil {
		return &inventory.ProductPage{Page: 1, Limit: 10}, nil
	}
	return s.out, nil
}

func (s *fakeInventoryStore) CreateProduct(_ context.Context, p inventory.NewProduct) (*inventory.ProductStock, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		return nil, s.createErr
	}
	s.created = append(s.created, p)
	return &inventory.ProductStock{
		ID:                "prod-new",
		Name:              p.Name,
		Price:             p.Price,
		Currency:          p.Currency,
		StockQuantity:     p.StockQuantity,
		LowStockThreshold: p.LowStockThreshold,
		StockStatus:       p.StockStatus,
	}, nil
}
