// Package operation turns typed operation implementations into the uniform
// services an awsquery router dispatches.
//
// An operation is a function from a typed input to a typed output:
//
//	type DescribeInvoiceInput struct {
//	    InvoiceId string `query:"InvoiceId" validate:"required"`
//	}
//
//	op := operation.New("Billing.DescribeInvoice",
//	    func(ctx context.Context, in DescribeInvoiceInput) (Invoice, error) { ... })
//
// Invoking the built service runs the protocol pipeline: negotiate content
// types, decode the input from the form-encoded body and query string,
// validate it against its constraints, call the function, and encode the
// output as the operation's XML response document. Every failure along the
// way is converted into the protocol's runtime-error mapping; nothing
// escapes as an unhandled error.
package operation

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/mnehpets/queryserve/awsquery"
	"github.com/mnehpets/queryserve/routing"
)

// contentTypeForm is the only request body media type the protocol accepts.
const contentTypeForm = "application/x-www-form-urlencoded"

// Func is a typed operation implementation.
type Func[I, O any] func(ctx context.Context, input I) (O, error)

// Operation binds an action name to a typed implementation. Build one with
// New; the zero value is not usable.
type Operation[I, O any] struct {
	name  string
	fn    Func[I, O]
	xmlns string
}

// Option configures an Operation.
type Option func(*options)

type options struct {
	xmlns string
}

// WithXMLNamespace sets the xmlns attribute on the operation's response
// document, e.g. "https://billing.example.com/doc/2025-01-01/".
func WithXMLNamespace(ns string) Option {
	return func(o *options) { o.xmlns = ns }
}

// New builds an operation. The name is the full action discriminator,
// "Service.Operation".
func New[I, O any](name string, fn Func[I, O], opts ...Option) *Operation[I, O] {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	return &Operation[I, O]{name: name, fn: fn, xmlns: o.xmlns}
}

// Name returns the action discriminator the operation registers under.
func (op *Operation[I, O]) Name() string { return op.name }

// Entry returns the route-table entry for the operation, so routers collect
// operations directly:
//
//	awsquery.NewRouter([]routing.Entry[routing.Service]{op.Entry(), ...})
func (op *Operation[I, O]) Entry() routing.Entry[routing.Service] {
	return routing.Entry[routing.Service]{Key: op.name, Value: op}
}

// Call implements routing.Service: it runs the full pipeline and always
// writes a response.
func (op *Operation[I, O]) Call(w http.ResponseWriter, r *http.Request) {
	if err := negotiate(r); err != nil {
		_ = awsquery.FromRejection(err).Render(w, r)
		return
	}

	var input I
	if err := DecodeInput(r, &input); err != nil {
		_ = awsquery.FromRejection(err).Render(w, r)
		return
	}
	if err := Validate(&input); err != nil {
		_ = awsquery.FromRejection(err).Render(w, r)
		return
	}

	output, err := op.fn(r.Context(), input)
	if err != nil {
		op.writeError(w, r, err)
		return
	}

	// Encode into a buffer first: a serialization failure must still map to
	// its wire response, which is impossible once headers are written.
	var buf bytes.Buffer
	if err := encodeResult(&buf, op.shortName(), op.xmlns, requestID(r.Context()), output); err != nil {
		_ = awsquery.NewSerializationError(err).Render(w, r)
		return
	}

	w.Header().Set("Content-Type", "text/xml")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeError renders a failure returned by the operation implementation.
// Modeled service errors become ErrorResponse documents; anything else is an
// internal failure, cause withheld from the wire.
func (op *Operation[I, O]) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var se *ServiceError
	if errors.As(err, &se) {
		routing.SetErrorName(r.Context(), se.Code)

		var buf bytes.Buffer
		if encErr := encodeErrorResponse(&buf, se, requestID(r.Context())); encErr != nil {
			_ = awsquery.NewSerializationError(encErr).Render(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/xml")
		w.WriteHeader(se.status())
		_, _ = w.Write(buf.Bytes())
		return
	}

	var rte *awsquery.RuntimeError
	if !errors.As(err, &rte) {
		rte = awsquery.NewInternalFailure(err)
	}
	_ = rte.Render(w, r)
}

// shortName is the operation part of the action, after the service prefix:
// "Billing.DescribeInvoice" -> "DescribeInvoice".
func (op *Operation[I, O]) shortName() string {
	if i := strings.LastIndexByte(op.name, '.'); i >= 0 {
		return op.name[i+1:]
	}
	return op.name
}

// negotiate checks the request's content negotiation headers. The router has
// already verified the method; body decoding relies on the content type
// checked here.
func negotiate(r *http.Request) error {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil || mt != contentTypeForm {
			return awsquery.NewUnsupportedMediaType()
		}
	}
	if accept := r.Header.Get("Accept"); accept != "" && !accepts(accept, "text", "xml") {
		return awsquery.NewNotAcceptable()
	}
	return nil
}

// accepts reports whether any range in an Accept header admits
// wantType/wantSub. Unparsable ranges are skipped.
func accepts(header, wantType, wantSub string) bool {
	for part := range strings.SplitSeq(header, ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		typ, sub, _ := strings.Cut(mt, "/")
		if (typ == "*" || typ == wantType) && (sub == "*" || sub == wantSub) {
			return true
		}
	}
	return false
}

// requestID returns the request id assigned by middleware, or a fresh one
// for responses produced outside a full middleware stack.
func requestID(ctx context.Context) string {
	if id, ok := routing.RequestID(ctx); ok {
		return id
	}
	return uuid.NewString()
}
