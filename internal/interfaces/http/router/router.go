// Package router assembles the console's gin routes.
package router

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/storefront/console/internal/interfaces/http/middleware"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// APIRoot is the prefix of every versioned console route
const APIRoot = "/api/v1"

// RouteRegistrar registers a set of routes on a gin group
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router collects registrars and installs them under APIRoot
type Router struct {
	engine     *gin.Engine
	registrars []RouteRegistrar
}

// NewRouter creates a Router for engine
func NewRouter(engine *gin.Engine) *Router {
	return &Router{engine: engine}
}

// Register queues a registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup installs every queued registrar
func (r *Router) Setup() {
	api := r.engine.Group(APIRoot)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// MountDocs serves the registered swagger document and UI at /swagger/*any.
// The docs package must be imported by the caller for the document to exist.
func (r *Router) MountDocs(cfg middleware.SwaggerConfig) {
	r.engine.GET("/swagger/*any",
		middleware.SwaggerProtection(cfg),
		ginSwagger.WrapHandler(swaggerFiles.Handler),
	)
}

// Route is a method and full path, relative to APIRoot
type Route struct {
	Method string
	Path   string
}

type routeDefinition struct {
	Route
	handlers []gin.HandlerFunc
}

// DomainGroup is the routes of one resource under a shared prefix
type DomainGroup struct {
	prefix     string
	routes     []routeDefinition
	middleware []gin.HandlerFunc
}

// NewDomainGroup creates an empty group rooted at prefix
func NewDomainGroup(prefix string) *DomainGroup {
	return &DomainGroup{prefix: prefix}
}

// Use adds middleware that runs before every route of the group
func (dg *DomainGroup) Use(middleware ...gin.HandlerFunc) *DomainGroup {
	dg.middleware = append(dg.middleware, middleware...)
	return dg
}

// Handle registers a route. path is relative to the group prefix.
func (dg *DomainGroup) Handle(method, path string, handlers ...gin.HandlerFunc) *DomainGroup {
	dg.routes = append(dg.routes, routeDefinition{
		Route:    Route{Method: method, Path: path},
		handlers: handlers,
	})
	return dg
}

func (dg *DomainGroup) GET(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodGet, path, handlers...)
}

func (dg *DomainGroup) POST(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPost, path, handlers...)
}

func (dg *DomainGroup) PUT(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodPut, path, handlers...)
}

func (dg *DomainGroup) DELETE(path string, handlers ...gin.HandlerFunc) *DomainGroup {
	return dg.Handle(http.MethodDelete, path, handlers...)
}

// RegisterRoutes implements RouteRegistrar
func (dg *DomainGroup) RegisterRoutes(rg *gin.RouterGroup) {
	group := rg.Group(dg.prefix, dg.middleware...)
	for _, route := range dg.routes {
		group.Handle(route.Method, route.Path, route.handlers...)
	}
}

// Routes lists the group's routes with the prefix joined on
func (dg *DomainGroup) Routes() []Route {
	out := make([]Route, 0, len(dg.routes))
	for _, route := range dg.routes {
		out = append(out, Route{Method: route.Method, Path: joinPath(dg.prefix, route.Path)})
	}
	return out
}

func joinPath(prefix, path string) string {
	if path == "" || path == "/" {
		return prefix
	}
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(path, "/")
}
