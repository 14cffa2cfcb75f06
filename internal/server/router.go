package server

import (
	"net/http"
	"strings"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] method patterns internally, so a path registered for one
// method answers 405 to the others.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      []string
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{mux: http.NewServeMux()}
}

// Use adds [Middleware] to the router's stack, applied in the order it's added.
// Only handlers registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers handler for method and path.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	pattern := strings.ToUpper(method) + " " + path
	r.routes = append(r.routes, pattern)
	r.mux.Handle(pattern, r.Apply(handler))
}

// Handler registers a [Handler] for GET on each of its routes.
func (r *BasicRouter) Handler(handler Handler) {
	for _, route := range handler.Routes() {
		r.Handle(http.MethodGet, route, handler)
	}
}

// Routes returns the registered patterns in registration order.
func (r *BasicRouter) Routes() []string {
	return append([]string(nil), r.routes...)
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware, first added outermost.
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	for i := len(r.middlewares) - 1; i >= 0; i-- {
		handler = r.middlewares[i](handler)
	}
	return handler
}
