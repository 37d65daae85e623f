package router

import (
	"github.com/storefront/console/internal/interfaces/http/handler"
)

// Handlers are the console's API handlers. Nil handlers leave their group out.
type Handlers struct {
	Orders        *handler.OrderHandler
	Inventory     *handler.InventoryHandler
	Notifications *handler.NotificationHandler
	Stream        *handler.NotificationStreamHandler
	System        *handler.SystemHandler
}

// ConsoleGroups builds the route groups served under the versioned API root
func ConsoleGroups(h Handlers) []*DomainGroup {
	var groups []*DomainGroup

	if h.Orders != nil {
		groups = append(groups, NewDomainGroup("/orders").
			GET("", h.Orders.List).
			GET("/statuses", h.Orders.Statuses).
			GET("/:id", h.Orders.Get).
			GET("/:id/transitions", h.Orders.Transitions).
			PUT("/:id/status", h.Orders.UpdateStatus))
	}

	if h.Inventory != nil {
		groups = append(groups, NewDomainGroup("/inventory").
			GET("/low-stock", h.Inventory.ListLowStock).
			GET("/out-of-stock", h.Inventory.ListOutOfStock).
			POST("/classify", h.Inventory.Classify).
			POST("/products", h.Inventory.CreateProduct).
			PUT("/:id/stock", h.Inventory.UpdateStock).
			PUT("/:id/threshold", h.Inventory.UpdateThreshold))
	}

	if h.Notifications != nil {
		g := NewDomainGroup("/notifications").
			GET("", h.Notifications.List).
			DELETE("", h.Notifications.Clear).
			DELETE("/:id", h.Notifications.Delete)
		if h.Stream != nil {
			g.GET("/stream", h.Stream.Stream)
		}
		groups = append(groups, g)
	}

	if h.System != nil {
		groups = append(groups, NewDomainGroup("/system").
			GET("/info", h.System.GetSystemInfo).
			GET("/ping", h.System.Ping))
	}

	return groups
}

// Mount registers the console routes on the router and sets them up.
// The health check is served at the engine root, outside the versioned API.
func (r *Router) Mount(h Handlers) {
	for _, g := range ConsoleGroups(h) {
		r.Register(g)
	}
	r.Setup()

	if h.System != nil {
		r.engine.GET("/health", h.System.Health)
	}
}
