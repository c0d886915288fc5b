package router

import (
	"github.com/gin-gonic/gin"
)

// RouteRegistrar is implemented by handlers that own a set of API routes
type RouteRegistrar interface {
	RegisterRoutes(rg *gin.RouterGroup)
}

// Router mounts the versioned swap API on an engine. Routes registered on the
// engine directly, such as /health, bypass the API middleware.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware gin.HandlersChain
	registrars []RouteRegistrar
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the version segment of the prefix, e.g. "v2"
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		if version != "" {
			r.apiVersion = version
		}
	}
}

// NewRouter creates a Router serving /api/v1 unless configured otherwise
func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{engine: engine, apiVersion: "v1"}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use appends middleware applied to the API group only (tenant resolution,
// span attributes)
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// Register queues a registrar for Setup
func (r *Router) Register(registrar RouteRegistrar) *Router {
	r.registrars = append(r.registrars, registrar)
	return r
}

// Setup creates the API group and lets every registrar add its routes
func (r *Router) Setup() {
	api := r.engine.Group(r.APIPrefix(), r.middleware...)
	for _, registrar := range r.registrars {
		registrar.RegisterRoutes(api)
	}
}

// APIPrefix returns the versioned route prefix, e.g. /api/v1
func (r *Router) APIPrefix() string {
	return "/api/" + r.apiVersion
}
