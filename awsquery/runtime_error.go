package awsquery

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/mnehpets/queryserve/routing"
)

type runtimeErrorKind uint8

const (
	kindSerialization runtimeErrorKind = iota
	kindInternalFailure
	kindNotAcceptable
	kindUnsupportedMediaType
	kindValidation
)

// RuntimeError is a runtime-tier failure: raised while processing a matched
// operation, after routing has already succeeded.
//
// Serialization and internal failures wrap their cause as an opaque
// diagnostic; the cause may be logged but is never exposed in the wire body.
// Validation failures carry a reason that is returned verbatim to the
// caller.
type RuntimeError struct {
	kind   runtimeErrorKind
	cause  error
	reason string
}

// NewSerializationError reports a request that failed to deserialize or a
// response that failed to serialize.
func NewSerializationError(cause error) *RuntimeError {
	return &RuntimeError{kind: kindSerialization, cause: cause}
}

// NewInternalFailure reports an unexpected failure inside the service.
func NewInternalFailure(cause error) *RuntimeError {
	return &RuntimeError{kind: kindInternalFailure, cause: cause}
}

// NewNotAcceptable reports a request whose Accept header rules out every
// response representation the protocol can produce.
func NewNotAcceptable() *RuntimeError {
	return &RuntimeError{kind: kindNotAcceptable}
}

// NewUnsupportedMediaType reports a request without the expected
// Content-Type header value.
func NewUnsupportedMediaType() *RuntimeError {
	return &RuntimeError{kind: kindUnsupportedMediaType}
}

// NewValidationError reports operation input that does not adhere to the
// modeled constraints. The reason is returned verbatim in the response body.
func NewValidationError(reason string) *RuntimeError {
	return &RuntimeError{kind: kindValidation, reason: reason}
}

// Name returns the machine-readable error name recorded as a response
// extension for downstream logging and metrics.
func (e *RuntimeError) Name() string {
	switch e.kind {
	case kindSerialization:
		return "SerializationException"
	case kindInternalFailure:
		return "InternalFailureException"
	case kindNotAcceptable:
		return "NotAcceptableException"
	case kindUnsupportedMediaType:
		return "UnsupportedMediaTypeException"
	case kindValidation:
		return "ValidationException"
	default:
		return "InternalFailureException"
	}
}

// StatusCode returns the HTTP status the error maps to.
func (e *RuntimeError) StatusCode() int {
	switch e.kind {
	case kindSerialization, kindValidation:
		return http.StatusBadRequest
	case kindInternalFailure:
		return http.StatusInternalServerError
	case kindNotAcceptable:
		return http.StatusNotAcceptable
	case kindUnsupportedMediaType:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

func (e *RuntimeError) Error() string {
	switch e.kind {
	case kindSerialization:
		return fmt.Sprintf("request failed to deserialize or response failed to serialize: %v", e.cause)
	case kindInternalFailure:
		if e.cause == nil {
			return "internal failure"
		}
		return fmt.Sprintf("internal failure: %v", e.cause)
	case kindNotAcceptable:
		return "not acceptable request: the Accept header rules out every response representation the server can produce"
	case kindUnsupportedMediaType:
		return "unsupported media type: request does not contain the expected Content-Type header value"
	case kindValidation:
		return fmt.Sprintf("validation failure: operation input contains data that does not adhere to the modeled constraints: %s", e.reason)
	default:
		return "unknown runtime error"
	}
}

// Unwrap exposes the wrapped cause for diagnostics.
func (e *RuntimeError) Unwrap() error { return e.cause }

// Render writes the wire response for a runtime error: the status from the
// authoritative mapping, Content-Type application/x-amz-json-1.1, an empty
// body except for validation failures, and the machine-readable error name
// recorded as a response extension.
func (e *RuntimeError) Render(w http.ResponseWriter, r *http.Request) error {
	routing.SetErrorName(r.Context(), e.Name())
	setHeader(w.Header(), "Content-Type", contentTypeAmzJSON, "runtime error")
	w.WriteHeader(e.StatusCode())
	if e.kind != kindValidation || e.reason == "" {
		return nil
	}
	_, err := io.WriteString(w, e.reason)
	return err
}

// constraintViolator is implemented by rejections raised when modeled input
// fails its constraints (see the operation package). The interface keeps the
// adapter decoupled from every possible upstream rejection type.
type constraintViolator interface {
	error
	ConstraintViolation() string
}

// FromRejection converts an upstream request- or response-processing
// rejection into a RuntimeError. A rejection that is already a RuntimeError
// passes through unchanged; a constraint violation becomes a validation
// failure with its reason on the wire; every other rejection becomes a
// serialization failure wrapping the cause for diagnostics only.
func FromRejection(err error) *RuntimeError {
	var rte *RuntimeError
	if errors.As(err, &rte) {
		return rte
	}
	var cv constraintViolator
	if errors.As(err, &cv) {
		return NewValidationError(cv.ConstraintViolation())
	}
	return NewSerializationError(err)
}
