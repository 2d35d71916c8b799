package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/mnehpets/queryserve/routing"
)

// requestIDHeader is the response header carrying the assigned request id.
const requestIDHeader = "x-amzn-RequestId"

// RequestID returns a layer that assigns a fresh request id to each
// dispatched request, exposing it in the x-amzn-RequestId response header
// and in the request's extension carrier. An id already present on the
// inbound request (set by an upstream proxy layer) is kept.
func RequestID() Layer {
	return func(next routing.Service) routing.Service {
		return routing.ServiceFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := routing.RequestID(r.Context())
			if !ok {
				id = uuid.NewString()
				routing.SetRequestID(r.Context(), id)
			}
			w.Header().Set(requestIDHeader, id)
			next.Call(w, r)
		})
	}
}
