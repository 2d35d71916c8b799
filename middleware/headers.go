package middleware

import (
	"net/http"

	"github.com/mnehpets/queryserve/routing"
)

// APIHeaders returns a layer that sets the response headers recommended for
// machine-consumed API surfaces: responses must not be sniffed, cached, or
// framed. Header values already set by an outer layer are left alone.
func APIHeaders() Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			setIfAbsent(h, "X-Content-Type-Options", "nosniff")
			setIfAbsent(h, "Cache-Control", "no-store")
			setIfAbsent(h, "X-Frame-Options", "DENY")
			next.Call(w, r)
		})
	}
}

func setIfAbsent(h http.Header, key, value string) {
	if h.Get(key) == "" {
		h.Set(key, value)
	}
}
