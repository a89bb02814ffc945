// Package grpcprovider is a concrete provider.Provider implementation that
// talks to an external LLM sidecar over gRPC through a lazily dialed
// grpc.ClientConn, with model parameters taken from an explicit Config.
//
// Rather than hand-maintaining protoc-generated bindings for a one-off
// demo service, requests and replies are carried as
// google.golang.org/protobuf's well-known structpb/wrapperspb types
// directly over a plain grpc.ClientConnInterface.Invoke call, a real,
// idiomatic way to speak protobuf-over-gRPC without committing generated
// code for a trivial method set.
package grpcprovider

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/deepreason/orchestrator/pkg/provider"
)

const (
	completeMethod = "/reasoncore.llm.LLMService/Complete"
	converseMethod = "/reasoncore.llm.LLMService/Converse"
)

// Config configures a Provider: its registered name and the model
// parameters applied to every call, taken as explicit fields instead of
// reading the environment directly (config *loading* is out of scope).
// The sidecar address is passed to New separately.
type Config struct {
	Name        string
	Model       string
	Temperature float32
	MaxTokens   int32
}

// Provider wraps a gRPC connection to an LLM sidecar.
type Provider struct {
	cfg  Config
	conn *grpc.ClientConn

	credentials *provider.CredentialStore
}

// New dials addr and returns a Provider. The connection is lazy (grpc.NewClient
// does not block).
func New(addr string, cfg Config, credentials *provider.CredentialStore) (*Provider, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("grpcprovider: failed to connect to %s: %w", addr, err)
	}
	return &Provider{cfg: cfg, conn: conn, credentials: credentials}, nil
}

// Close releases the underlying gRPC connection.
func (p *Provider) Close() error {
	return p.conn.Close()
}

// Name implements provider.Provider.
func (p *Provider) Name() string { return p.cfg.Name }

// Available implements provider.Provider: ready once a live credential is
// present, or always when no credential store is configured. The state of
// the gRPC connection is not consulted.
func (p *Provider) Available() bool {
	if p.credentials == nil {
		return true
	}
	_, ok := p.credentials.Get(p.cfg.Name)
	return ok
}

// Complete implements provider.Provider.
func (p *Provider) Complete(ctx context.Context, prompt string, opts provider.CompleteOptions) (string, error) {
	if !p.Available() {
		return "", &provider.Failure{Kind: provider.FailurePermanent, Message: "no live credential for " + p.cfg.Name}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"prompt":      prompt,
		"model":       firstNonEmpty(opts.Model, p.cfg.Model),
		"temperature": float64(firstNonZeroF32(opts.Temperature, p.cfg.Temperature)),
		"max_tokens":  float64(firstNonZeroInt(opts.MaxOutputTokens, int(p.cfg.MaxTokens))),
	})
	if err != nil {
		return "", fmt.Errorf("grpcprovider: building request: %w", err)
	}

	reply := new(wrapperspb.StringValue)
	if err := p.conn.Invoke(callCtx, completeMethod, req, reply); err != nil {
		return "", classify(callCtx, err)
	}
	return reply.GetValue(), nil
}

// Converse implements provider.Provider.
func (p *Provider) Converse(ctx context.Context, handle, message string, opts provider.ConverseOptions) (provider.ConverseResult, error) {
	if !p.Available() {
		return provider.ConverseResult{}, &provider.Failure{Kind: provider.FailurePermanent, Message: "no live credential for " + p.cfg.Name}
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := structpb.NewStruct(map[string]any{
		"handle":  handle,
		"message": message,
		"model":   firstNonEmpty(opts.Model, p.cfg.Model),
	})
	if err != nil {
		return provider.ConverseResult{}, fmt.Errorf("grpcprovider: building request: %w", err)
	}

	reply := new(structpb.Struct)
	if err := p.conn.Invoke(callCtx, converseMethod, req, reply); err != nil {
		return provider.ConverseResult{}, classify(callCtx, err)
	}

	fields := reply.GetFields()
	return provider.ConverseResult{
		Handle: fields["handle"].GetStringValue(),
		Reply:  fields["reply"].GetStringValue(),
	}, nil
}

// classify folds a gRPC/context error into the provider.Failure taxonomy.
func classify(ctx context.Context, err error) error {
	if ctx.Err() == context.Canceled {
		return &provider.Failure{Kind: provider.FailureCancelled, Message: err.Error()}
	}
	if ctx.Err() == context.DeadlineExceeded {
		return &provider.Failure{Kind: provider.FailureTransient, Message: "deadline exceeded: " + err.Error()}
	}
	// Conservative default: treat unclassified transport errors as
	// transient so the Router may retry once
	return &provider.Failure{Kind: provider.FailureTransient, Message: err.Error()}
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func firstNonZeroF32(a, b float32) float32 {
	if a != 0 {
		return a
	}
	return b
}

func firstNonZeroInt(a, b int) int {
	if a != 0 {
		return a
	}
	return b
}
