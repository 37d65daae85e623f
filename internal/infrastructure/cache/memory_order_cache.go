// Package cache implements the order read cache.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/storefront/console/internal/domain/order"
)

type cachedOrder struct {
	order     order.Order
	expiresAt time.Time
}

type cachedPage struct {
	page      order.Page
	expiresAt time.Time
}

// MemoryOrderCache implements order.Cache with process-local maps.
// It suits a single console instance.
type MemoryOrderCache struct {
	mu     sync.RWMutex
	orders map[string]cachedOrder
	lists  map[string]cachedPage
	now    func() time.Time

	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// MemoryOption configures a MemoryOrderCache
type MemoryOption func(*MemoryOrderCache)

// WithMemoryClock overrides the clock used for expiry
func WithMemoryClock(now func() time.Time) MemoryOption {
	return func(c *MemoryOrderCache) {
		c.now = now
	}
}

// NewMemoryOrderCache creates the cache and starts its expiry sweep
func NewMemoryOrderCache(opts ...MemoryOption) *MemoryOrderCache {
	c := &MemoryOrderCache{
		orders:   make(map[string]cachedOrder),
		lists:    make(map[string]cachedPage),
		now:      time.Now,
		stopChan: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.wg.Add(1)
	go c.cleanupLoop()

	return c
}

// GetOrder returns a copy of the cached order
func (c *MemoryOrderCache) GetOrder(_ context.Context, id string) (*order.Order, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.orders[id]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	o := e.order
	return &o, true, nil
}

// SetOrder caches the order for ttl
func (c *MemoryOrderCache) SetOrder(_ context.Context, o *order.Order, ttl time.Duration) error {
	if o == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.orders[o.ID] = cachedOrder{order: *o, expiresAt: c.now().Add(ttl)}
	return nil
}

// InvalidateOrder drops the cached order
func (c *MemoryOrderCache) InvalidateOrder(_ context.Context, id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, id)
	return nil
}

// GetList returns a copy of the cached page
func (c *MemoryOrderCache) GetList(_ context.Context, key string) (*order.Page, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.lists[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return nil, false, nil
	}
	p := e.page
	p.Orders = append([]order.Order(nil), e.page.Orders...)
	return &p, true, nil
}

// SetList caches the page for ttl
func (c *MemoryOrderCache) SetList(_ context.Context, key string, page *order.Page, ttl time.Duration) error {
	if page == nil || ttl <= 0 {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	p := *page
	p.Orders = append([]order.Order(nil), page.Orders...)
	c.lists[key] = cachedPage{page: p, expiresAt: c.now().Add(ttl)}
	return nil
}

// InvalidateLists drops every cached page
func (c *MemoryOrderCache) InvalidateLists(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lists = make(map[string]cachedPage)
	return nil
}

// Len returns the number of cached orders and pages, expired ones included
func (c *MemoryOrderCache) Len() (orders, lists int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.orders), len(c.lists)
}

// Close stops the sweep goroutine. Safe to call multiple times.
func (c *MemoryOrderCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *MemoryOrderCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *MemoryOrderCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for id, e := range c.orders {
		if !now.Before(e.expiresAt) {
			delete(c.orders, id)
		}
	}
	for key, e := range c.lists {
		if !now.Before(e.expiresAt) {
			delete(c.lists, key)
		}
	}
}

var _ order.Cache = (*MemoryOrderCache)(nil)
