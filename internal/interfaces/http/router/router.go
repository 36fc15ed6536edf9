package router

import (
	"github.com/gin-gonic/gin"
)

// Router mounts the route table on a gin engine. Root routes are served at
// paths fixed by third parties, such as the gateway return and IPN URLs.
// Everything else lives under /api/<version> behind the API middleware.
type Router struct {
	engine     *gin.Engine
	apiVersion string
	middleware []gin.HandlerFunc
}

// RouterOption configures a Router
type RouterOption func(*Router)

// WithAPIVersion sets the API version prefix ("v1" by default)
func WithAPIVersion(version string) RouterOption {
	return func(r *Router) {
		r.apiVersion = version
	}
}

func NewRouter(engine *gin.Engine, opts ...RouterOption) *Router {
	r := &Router{
		engine:     engine,
		apiVersion: "v1",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Use adds middleware applied to the versioned API routes only
func (r *Router) Use(middleware ...gin.HandlerFunc) *Router {
	r.middleware = append(r.middleware, middleware...)
	return r
}

// APIPrefix is the path every non-root route is mounted under
func (r *Router) APIPrefix() string {
	return "/api/" + r.apiVersion
}

// Mount registers the routes of every non-nil handler in h
func (r *Router) Mount(h Handlers) {
	var api *gin.RouterGroup
	for _, rt := range routeTable(h) {
		if rt.root {
			r.engine.Handle(rt.method, rt.path, rt.handler)
			continue
		}
		if api == nil {
			api = r.engine.Group(r.APIPrefix())
			api.Use(r.middleware...)
		}
		api.Handle(rt.method, rt.path, rt.handler)
	}
}
