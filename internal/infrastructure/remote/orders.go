package remote

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/storefront/console/internal/domain/order"
)

// OrderStore implements order.Store over the retail API
type OrderStore struct {
	client *Client
}

// NewOrderStore creates an OrderStore
func NewOrderStore(client *Client) *OrderStore {
	return &OrderStore{client: client}
}

// Get fetches one order. A 404 becomes a not-found domain error.
func (s *OrderStore) Get(ctx context.Context, id string) (*order.Order, error) {
	var o order.Order
	err := s.client.do(ctx, request{
		op:     "get order",
		route:  "GET /orders/:id",
		method: http.MethodGet,
		path:   []string{"orders", id},
	}, &o)
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound(id)
		}
		return nil, err
	}
	return &o, nil
}

// List fetches one page of orders
func (s *OrderStore) List(ctx context.Context, filter order.ListFilter) (*order.Page, error) {
	var page order.Page
	err := s.client.do(ctx, request{
		op:     "list orders",
		route:  "GET /orders",
		method: http.MethodGet,
		path:   []string{"orders"},
		query:  listQuery(filter),
	}, &page)
	if err != nil {
		return nil, err
	}
	if page.Orders == nil {
		page.Orders = []order.Order{}
	}
	return &page, nil
}

// UpdateStatus issues PUT /orders/:id/status and returns the server's order
func (s *OrderStore) UpdateStatus(ctx context.Context, id string, status order.Status) (*order.Order, error) {
	var o order.Order
	err := s.client.do(ctx, request{
		op:     "update order status",
		route:  "PUT /orders/:id/status",
		method: http.MethodPut,
		path:   []string{"orders", id, "status"},
		body:   map[string]string{"status": status.String()},
	}, &o)
	if err != nil {
		if isNotFound(err) {
			return nil, order.ErrOrderNotFound(id)
		}
		return nil, err
	}
	return &o, nil
}

// listQuery only sends the parameters that are set
func listQuery(f order.ListFilter) url.Values {
	q := url.Values{}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.Status != "" {
		q.Set("status", f.Status.String())
	}
	if f.StartDate != "" {
		q.Set("startDate", f.StartDate)
	}
	if f.EndDate != "" {
		q.Set("endDate", f.EndDate)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}
