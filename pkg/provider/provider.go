// Package provider implements the ProviderGateway: an abstraction over
// concrete model back ends, a runtime credential store, and an
// availability-aware gateway that the Router, ConversationScheduler, and
// TournamentEngine call directly with no shared back-reference to any of
// them.
package provider

import (
	"context"
	"time"
)

// FailureKind folds a provider's native error taxonomy down to three
// buckets.
type FailureKind string

const (
	FailureTransient FailureKind = "TransientError"
	FailurePermanent FailureKind = "PermanentError"
	FailureCancelled FailureKind = "Cancelled"
)

// Failure is the error type every Provider method returns on failure.
type Failure struct {
	Kind         FailureKind
	Message      string
	RetryAfterMs int64
}

func (f *Failure) Error() string { return string(f.Kind) + ": " + f.Message }

// CompleteOptions configures a one-shot completion call.
type CompleteOptions struct {
	Model            string
	Temperature      float32
	MaxOutputTokens  int
	Timeout          time.Duration
}

// ConverseOptions configures a multi-turn call.
type ConverseOptions struct {
	Model       string
	Temperature float32
	Timeout     time.Duration
}

// ConverseResult carries the provider-side conversation handle (opaque,
// provider-defined) plus the model's reply.
type ConverseResult struct {
	Handle string
	Reply  string
}

// Provider is the small capability surface every concrete model back end
// must implement. This package ships one reference implementation in
// ./grpcprovider.
type Provider interface {
	Name() string
	Available() bool
	Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error)
	Converse(ctx context.Context, handle string, message string, opts ConverseOptions) (ConverseResult, error)
}
