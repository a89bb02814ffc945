// Package rpcerr defines the error taxonomy surfaced at the tool boundary.
//
// Every component in the core constructs a *rpcerr.Error (or returns a plain
// error that the dispatcher wraps into one) rather than an ad hoc string.
// The Kind enum is the wire-visible classification; Message
// is human-readable; CorrelationID and RetryAfterMs round-trip into the
// JSON-RPC error object's data field.
package rpcerr

import "fmt"

// Kind classifies an error for the JSON-RPC error envelope.
type Kind string

const (
	KindInvalidInput         Kind = "InvalidInput"
	KindPathUnsafe           Kind = "PathUnsafe"
	KindNotFound             Kind = "NotFound"
	KindSessionInvalidState  Kind = "SessionInvalidState"
	KindProviderUnavailable  Kind = "ProviderUnavailable"
	KindProviderTransient    Kind = "ProviderTransient"
	KindProviderPermanent    Kind = "ProviderPermanent"
	KindTimeout              Kind = "Timeout"
	KindCancelled            Kind = "Cancelled"
	KindInternal             Kind = "Internal"
)

// Error is the typed error every component returns at its public boundary.
// It wraps an optional cause so callers can still errors.Is/As through it.
type Error struct {
	Kind          Kind
	Message       string
	CorrelationID string
	RetryAfterMs  int64
	cause         error
}

// New constructs an *Error with no correlation id attached yet; dispatch
// attaches one when it has the request's correlation id in scope.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap constructs an *Error that preserves cause for errors.Unwrap/errors.Is.
func Wrap(kind Kind, cause error) *Error {
	if cause == nil {
		return New(kind, string(kind))
	}
	return &Error{Kind: kind, Message: cause.Error(), cause: cause}
}

// WithCorrelationID returns a copy of e carrying the given correlation id.
func (e *Error) WithCorrelationID(id string) *Error {
	cp := *e
	cp.CorrelationID = id
	return &cp
}

// WithRetryAfter returns a copy of e carrying a retry-after hint.
func (e *Error) WithRetryAfter(ms int64) *Error {
	cp := *e
	cp.RetryAfterMs = ms
	return &cp
}

func (e *Error) Error() string {
	if e.CorrelationID != "" {
		return fmt.Sprintf("%s: %s (correlation_id=%s)", e.Kind, e.Message, e.CorrelationID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target is an *Error with the same Kind, letting
// callers write errors.Is(err, rpcerr.New(rpcerr.KindNotFound, "")).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// Retryable reports whether the Router/Scheduler/Tournament may attempt a
// single internal retry for this error kind.
func (e *Error) Retryable() bool {
	return e.Kind == KindProviderTransient
}
