package awsquery

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/http/httpguts"

	"github.com/mnehpets/queryserve/routing"
)

const (
	// contentTypeAmzJSON is the content type of every runtime-tier error
	// response.
	contentTypeAmzJSON = "application/x-amz-json-1.1"

	// notFoundContentType and notFoundBody are a legacy wire artifact: the
	// body is JSON-shaped but XML-content-typed. Clients depend on the
	// literal bytes, so both are preserved verbatim.
	notFoundContentType = "text/xml"
	notFoundBody        = "{}"
)

// RoutingError is a routing-tier failure: produced strictly before any
// operation handle is found. It never carries a cause and is always
// externally visible as-is.
type RoutingError uint8

const (
	// ErrMethodNotAllowed reports a request whose method was not POST.
	ErrMethodNotAllowed RoutingError = iota
	// ErrNotFound reports a request with no Action parameter, or an Action
	// naming no registered operation.
	ErrNotFound
)

func (e RoutingError) Error() string {
	switch e {
	case ErrMethodNotAllowed:
		return "method not POST"
	case ErrNotFound:
		return "operation not found"
	default:
		return fmt.Sprintf("unknown routing error (%d)", uint8(e))
	}
}

// Render writes the wire response for a routing error.
func (e RoutingError) Render(w http.ResponseWriter, r *http.Request) error {
	switch e {
	case ErrNotFound:
		setHeader(w.Header(), "Content-Type", notFoundContentType, "routing error")
		w.WriteHeader(http.StatusNotFound)
		_, err := io.WriteString(w, notFoundBody)
		return err
	default:
		routing.WriteMethodNotAllowed(w, http.MethodPost)
		return nil
	}
}

// WriteError renders any adapter failure to the wire. Routing and runtime
// errors use their protocol mappings; anything else is treated as an
// internal failure, so no failure escapes the adapter boundary unhandled.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var re RoutingError
	if errors.As(err, &re) {
		_ = re.Render(w, r)
		return
	}
	var rte *RuntimeError
	if !errors.As(err, &rte) {
		rte = NewInternalFailure(err)
	}
	_ = rte.Render(w, r)
}

// setHeader installs a response header, treating an invalid value as a
// programming-contract violation inside the adapter rather than a
// recoverable runtime condition. The panic names the offending code path;
// responses built from package constants can never trip it.
func setHeader(h http.Header, key, value, where string) {
	if !httpguts.ValidHeaderFieldName(key) || !httpguts.ValidHeaderFieldValue(value) {
		panic(fmt.Sprintf(
			"awsquery: invalid %s response header %q: %q; this is a bug in queryserve, please report it",
			where, key, value,
		))
	}
	h.Set(key, value)
}
