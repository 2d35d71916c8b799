package routing

import "net/http"

// Service is the uniform invocation capability every routed operation
// exposes: accept a request, write a response. A Service cannot fail
// out-of-band; anything that can go wrong while processing the request is
// rendered into the response before it reaches this interface.
type Service interface {
	Call(w http.ResponseWriter, r *http.Request)
}

// ServiceFunc adapts a function to a Service.
type ServiceFunc func(w http.ResponseWriter, r *http.Request)

func (f ServiceFunc) Call(w http.ResponseWriter, r *http.Request) { f(w, r) }

// Route is an opaque, cheaply copyable handle to a Service. Wrapping erases
// the concrete handler type, so a route table can hold a homogeneous
// collection of heterogeneous operation implementations.
//
// Copies of a Route share the underlying Service, so concurrent matches may
// each hold their own copy without synchronization; the shared value stays
// alive as long as any copy does.
type Route struct {
	inner Service
}

// NewRoute wraps svc in a type-erased handle.
func NewRoute(svc Service) Route { return Route{inner: svc} }

// Call invokes the underlying service. Route itself satisfies Service, so
// layered wrappers can be re-wrapped.
func (rt Route) Call(w http.ResponseWriter, r *http.Request) {
	rt.inner.Call(w, r)
}
