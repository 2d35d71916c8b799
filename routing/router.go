package routing

import (
	"net/http"
	"strings"
)

// Router is what a protocol adapter exposes to the transport once its route
// table has been type-erased: given a request, produce the matched handle or
// a protocol-specific routing error.
//
// MatchRoute must be pure: no I/O, no locks, safe to call concurrently and
// repeatedly against the same Router.
type Router interface {
	MatchRoute(r *http.Request) (Route, error)
}

// WriteMethodNotAllowed writes the method-not-allowed response shared by the
// protocol adapters: status 405 with the Allow header and no body.
func WriteMethodNotAllowed(w http.ResponseWriter, allow ...string) {
	if len(allow) > 0 {
		w.Header().Set("Allow", strings.Join(allow, ", "))
	}
	w.WriteHeader(http.StatusMethodNotAllowed)
}
