package awsquery

import (
	"net/http"
	"net/url"

	"github.com/mnehpets/queryserve/routing"
)

// routeCutoff determines when the route table switches from a linear-scan
// slice to an indexed map. At 15, small services dispatch out of a slice
// that is cheaper to build and scan, while larger ones get O(1) lookups.
// Tuned independently of table construction; see routing.NewTinyMap.
const routeCutoff = 15

// A boxed router is what the transport consumes.
var _ routing.Router = Router[routing.Route]{}

// Router dispatches AWS Query requests to operation handles of type S.
//
// A Router is immutable once built: Layer and Boxed return new routers and
// matching never mutates the table, so a published Router serves concurrent
// requests without synchronization.
type Router[S any] struct {
	routes *routing.TinyMap[S]
}

// NewRouter bulk-collects (action, handle) entries into a router. Entries
// keep their insertion order; actions must be unique.
func NewRouter[S any](entries []routing.Entry[S]) Router[S] {
	return Router[S]{routes: routing.NewTinyMap(entries, routeCutoff)}
}

// MatchRoute resolves the operation handle for req.
//
// Any method other than POST fails with ErrMethodNotAllowed, independent of
// the URI. A missing Action parameter, an unparsable query string, or an
// Action naming no registered operation all fail with ErrNotFound. On
// success the returned handle is a shared copy; the table is never consumed
// or mutated. Matching performs no I/O and holds no locks.
func (rt Router[S]) MatchRoute(req *http.Request) (S, error) {
	var zero S
	if req.Method != http.MethodPost {
		return zero, ErrMethodNotAllowed
	}
	action, ok := actionOf(req)
	if !ok {
		return zero, ErrNotFound
	}
	handle, ok := rt.routes.Get(action)
	if !ok {
		return zero, ErrNotFound
	}
	return handle, nil
}

// Actions returns the registered action names in registration order.
func (rt Router[S]) Actions() []string { return rt.routes.Keys() }

// actionOf extracts the operation discriminator: the first "Action" query
// parameter. Every kind of absence, including an unparsable query string,
// is reported as !ok; callers map that to ErrNotFound rather than a
// distinct error class.
func actionOf(req *http.Request) (string, bool) {
	if req.URL == nil {
		return "", false
	}
	values, err := url.ParseQuery(req.URL.RawQuery)
	if err != nil {
		return "", false
	}
	actions := values["Action"]
	if len(actions) == 0 {
		return "", false
	}
	return actions[0], true
}

// Layer applies transform uniformly to every handle, producing a new router
// with an identical action set and order. Layering never changes which
// actions are routable, only how the matched handle behaves when invoked.
//
// Go methods cannot introduce type parameters, so the transformation that
// changes the handle type is a package function rather than a method.
func Layer[S, T any](rt Router[S], transform func(S) T) Router[T] {
	return Router[T]{
		routes: routing.MapTinyMap(rt.routes, func(_ string, s S) T {
			return transform(s)
		}),
	}
}

// Boxed erases the concrete handle type across the whole table, producing a
// router of uniform routing.Route handles. A boxed router satisfies
// routing.Router.
func Boxed[S routing.Service](rt Router[S]) Router[routing.Route] {
	return Layer(rt, func(s S) routing.Route { return routing.NewRoute(s) })
}

// Handler adapts a boxed router to the transport: requests are matched and
// dispatched, routing failures are rendered by the protocol error mapping.
// It also installs the response-extension carrier consumed by logging and
// metrics layers. The surrounding server loop, including cancellation of
// in-flight requests, stays the transport's responsibility.
func Handler(rt Router[routing.Route]) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = r.WithContext(routing.WithExtensions(r.Context()))
		route, err := rt.MatchRoute(r)
		if err != nil {
			WriteError(w, r, err)
			return
		}
		route.Call(w, r)
	})
}
