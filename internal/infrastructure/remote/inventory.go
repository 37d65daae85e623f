package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storefront/console/internal/domain/inventory"
	"github.com/storefront/console/internal/domain/shared"
)

// InventoryStore implements inventory.Store over the retail API
type InventoryStore struct {
	client *Client
}

// NewInventoryStore creates an InventoryStore
func NewInventoryStore(client *Client) *InventoryStore {
	return &InventoryStore{client: client}
}

type stockUpdate struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason,omitempty"`
}

// UpdateStock sets the stock quantity of a product
func (s *InventoryStore) UpdateStock(ctx context.Context, productID string, quantity int, reason string) error {
	return s.client.do(ctx, request{
		op:     "update stock",
		route:  "PUT /inventory/:id/stock",
		method: http.MethodPut,
		path:   []string{"inventory", productID, "stock"},
		body:   stockUpdate{Quantity: quantity, Reason: reason},
	}, nil)
}

// UpdateThreshold sets the low-stock threshold of a product
func (s *InventoryStore) UpdateThreshold(ctx context.Context, productID string, threshold int) error {
	return s.client.do(ctx, request{
		op:     "update threshold",
		route:  "PUT /inventory/:id/threshold",
		method: http.MethodPut,
		path:   []string{"inventory", productID, "threshold"},
		body:   map[string]int{"threshold": threshold},
	}, nil)
}

// lowStockResponse is the body of GET /inventory/low-stock
type lowStockResponse struct {
	Products []inventory.ProductStock `json:"products"`
	Page     int                      `json:"page"`
	Pages    int                      `json:"pages"`
	Total    int64                    `json:"total"`
}

// outOfStockResponse is the body of GET /inventory/out-of-stock
type outOfStockResponse struct {
	Data  []inventory.ProductStock `json:"data"`
	Page  int                      `json:"page"`
	Pages int                      `json:"pages"`
	Total int64                    `json:"total"`
}

// ListLowStock fetches one page of the low-stock listing
func (s *InventoryStore) ListLowStock(ctx context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	page = page.Normalize()
	var resp lowStockResponse
	err := s.client.do(ctx, request{
		op:     "list low stock",
		route:  "GET /inventory/low-stock",
		method: http.MethodGet,
		path:   []string{"inventory", "low-stock"},
		query:  pageQuery(page),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return newProductPage(resp.Products, resp.Page, page.Limit, resp.Pages, resp.Total), nil
}

// ListOutOfStock fetches one page of the out-of-stock listing
func (s *InventoryStore) ListOutOfStock(ctx context.Context, page shared.PageRequest) (*inventory.ProductPage, error) {
	page = page.Normalize()
	var resp outOfStockResponse
	err := s.client.do(ctx, request{
		op:     "list out of stock",
		route:  "GET /inventory/out-of-stock",
		method: http.MethodGet,
		path:   []string{"inventory", "out-of-stock"},
		query:  pageQuery(page),
	}, &resp)
	if err != nil {
		return nil, err
	}
	return newProductPage(resp.Data, resp.Page, page.Limit, resp.Pages, resp.Total), nil
}

// CreateProduct creates a product and returns it as stored
func (s *InventoryStore) CreateProduct(ctx context.Context, p inventory.NewProduct) (*inventory.ProductStock, error) {
	var created inventory.ProductStock
	err := s.client.do(ctx, request{
		op:     "create product",
		route:  "POST /products",
		method: http.MethodPost,
		path:   []string{"products"},
		body:   p,
	}, &created)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

func pageQuery(p shared.PageRequest) url.Values {
	return url.Values{
		"page":  []string{strconv.Itoa(p.Page)},
		"limit": []string{strconv.Itoa(p.Limit)},
	}
}

func newProductPage(products []inventory.ProductStock, page, limit, pages int, total int64) *inventory.ProductPage {
	if products == nil {
		products = []inventory.ProductStock{}
	}
	return &inventory.ProductPage{
		Products:   products,
		Page:       page,
		Limit:      limit,
		TotalPages: pages,
		TotalItems: total,
	}
}
