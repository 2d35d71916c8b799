// Package middleware provides cross-cutting layers for queryserve routers.
//
// A Layer wraps one routing.Service in another. Applied through
// awsquery.Layer, a Layer uniformly wraps every registered handle without
// changing which actions are routable:
//
//	router = awsquery.Layer(router, middleware.Chained(
//	    middleware.Recover(logger),
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	))
package middleware

import (
	"net/http"

	"github.com/mnehpets/queryserve/routing"
)

// Layer wraps a service with additional behavior. The alias keeps layers
// directly usable as the transform argument of awsquery.Layer.
type Layer = func(routing.Service) routing.Service

// Chain wraps svc with layers, first layer outermost.
func Chain(svc routing.Service, layers ...Layer) routing.Service {
	for i := len(layers) - 1; i >= 0; i-- {
		svc = layers[i](svc)
	}
	return svc
}

// Chained composes layers into one, first layer outermost.
func Chained(layers ...Layer) Layer {
	return func(svc routing.Service) routing.Service {
		return Chain(svc, layers...)
	}
}

// statusWriter captures the status code and body size written by inner
// handlers, for logging and metrics.
type statusWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(b []byte) (int, error) {
	if sw.status == 0 {
		sw.status = http.StatusOK
	}
	n, err := sw.ResponseWriter.Write(b)
	sw.size += n
	return n, err
}

func (sw *statusWriter) Flush() {
	if f, ok := sw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (sw *statusWriter) statusOrDefault() int {
	if sw.status == 0 {
		return http.StatusOK
	}
	return sw.status
}
