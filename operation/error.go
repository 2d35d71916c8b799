package operation

import "net/http"

// ConstraintViolationError reports modeled input that failed its
// constraints. The error mapper turns it into a validation failure with
// Reason on the wire; everything else raised during decoding converts to a
// serialization failure instead.
type ConstraintViolationError struct {
	Reason string
}

func (e *ConstraintViolationError) Error() string {
	return "constraint violation: " + e.Reason
}

// ConstraintViolation returns the reason shown to the caller.
func (e *ConstraintViolationError) ConstraintViolation() string { return e.Reason }

// ServiceError is a modeled operation failure, returned to the caller as an
// ErrorResponse document. Operation implementations return it (possibly
// wrapped) for failures that are part of their contract:
//
//	return Invoice{}, &operation.ServiceError{
//	    Code:    "InvoiceNotFound",
//	    Status:  http.StatusNotFound,
//	    Message: "no invoice with id " + in.InvoiceId,
//	}
type ServiceError struct {
	// Code is the machine-readable error code, e.g. "InvalidParameterValue".
	Code string
	// Status is the HTTP status; zero means 400.
	Status int
	// Message is a human-readable description included in the response body.
	Message string
	// Cause is kept for diagnostics and never exposed on the wire.
	Cause error
}

func (e *ServiceError) Error() string {
	if e.Cause != nil {
		return e.Code + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *ServiceError) Unwrap() error { return e.Cause }

func (e *ServiceError) status() int {
	if e.Status == 0 {
		return http.StatusBadRequest
	}
	return e.Status
}

// faultType distinguishes caller faults from service faults in the error
// document, following the protocol's Sender/Receiver convention.
func (e *ServiceError) faultType() string {
	if e.status() >= 500 {
		return "Receiver"
	}
	return "Sender"
}
