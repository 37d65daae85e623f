package order

import (
	"context"
	"time"
)

// Store is the remote order store. It owns orders and re-enforces the
// transition table on its side.
type Store interface {
	// Get returns the order or a not-found error
	Get(ctx context.Context, id string) (*Order, error)
	// List returns one page of orders matching the filter
	List(ctx context.Context, filter ListFilter) (*Page, error)
	// UpdateStatus issues the status mutation and returns the updated order
	UpdateStatus(ctx context.Context, id string, status Status) (*Order, error)
}

// Cache is the console's read cache of orders and order lists.
// A miss is reported with ok == false and a nil error.
type Cache interface {
	GetOrder(ctx context.Context, id string) (*Order, bool, error)
	SetOrder(ctx context.Context, o *Order, ttl time.Duration) error
	InvalidateOrder(ctx context.Context, id string) error

	GetList(ctx context.Context, key string) (*Page, bool, error)
	SetList(ctx context.Context, key string, page *Page, ttl time.Duration) error
	// InvalidateLists drops every cached order list
	InvalidateLists(ctx context.Context) error
}
