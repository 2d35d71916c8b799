package routing

import "context"

// Response extensions carry machine-readable response metadata out of band,
// for logging and metrics. The pattern mirrors deferred response hooks: the
// dispatch glue installs a carrier in the request context before calling the
// matched handle, error renderers write into it, and observability layers
// read it after the handle returns. Every accessor is a no-op when no
// carrier is installed, so handles remain usable outside the dispatch glue.

type extensionsKey struct{}

// extensions is per-request state; it is written and read on the request
// goroutine only.
type extensions struct {
	errorName string
	requestID string
}

// WithExtensions returns a context with an empty extension carrier
// installed. If ctx already carries one, it is returned unchanged.
func WithExtensions(ctx context.Context) context.Context {
	if _, ok := ctx.Value(extensionsKey{}).(*extensions); ok {
		return ctx
	}
	return context.WithValue(ctx, extensionsKey{}, &extensions{})
}

// SetErrorName records the machine-readable error name for the in-flight
// response, independent of the response body.
func SetErrorName(ctx context.Context, name string) {
	if e, ok := ctx.Value(extensionsKey{}).(*extensions); ok {
		e.errorName = name
	}
}

// ErrorName reports the error name recorded for the in-flight response.
func ErrorName(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(extensionsKey{}).(*extensions)
	if !ok || e.errorName == "" {
		return "", false
	}
	return e.errorName, true
}

// SetRequestID records the request identifier assigned to this request.
func SetRequestID(ctx context.Context, id string) {
	if e, ok := ctx.Value(extensionsKey{}).(*extensions); ok {
		e.requestID = id
	}
}

// RequestID reports the request identifier assigned to this request.
func RequestID(ctx context.Context) (string, bool) {
	e, ok := ctx.Value(extensionsKey{}).(*extensions)
	if !ok || e.requestID == "" {
		return "", false
	}
	return e.requestID, true
}
