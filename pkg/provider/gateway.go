package provider

import (
	"context"
	"fmt"
	"sync"
)

// Gateway abstracts a set of named Providers behind one surface: it
// mediates all access, ties provider availability to the
// CredentialStore, and folds whatever error a Provider raises into the
// rpcerr taxonomy at the call site via the Router, ConversationScheduler,
// or TournamentEngine (the Gateway itself returns plain Failure values;
// callers classify).
type Gateway struct {
	mu          sync.RWMutex
	providers   map[string]Provider
	credentials *CredentialStore
}

// NewGateway constructs a Gateway backed by the given credential store. A
// nil store is replaced with a fresh, empty one.
func NewGateway(credentials *CredentialStore) *Gateway {
	if credentials == nil {
		credentials = NewCredentialStore(nil)
	}
	return &Gateway{
		providers:   make(map[string]Provider),
		credentials: credentials,
	}
}

// Register adds a concrete Provider under its own Name(). Re-registering a
// name replaces the prior provider.
func (g *Gateway) Register(p Provider) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.providers[p.Name()] = p
}

// Credentials exposes the underlying store so callers (typically the
// process wiring in cmd/reasonctl) can inject credentials at runtime.
func (g *Gateway) Credentials() *CredentialStore {
	return g.credentials
}

// Available reports whether name is registered, has a live credential
// (when the provider requires one), and reports itself available.
func (g *Gateway) Available(name string) bool {
	g.mu.RLock()
	p, ok := g.providers[name]
	g.mu.RUnlock()
	if !ok {
		return false
	}
	return p.Available()
}

// AnyAvailable reports whether at least one registered provider is ready,
// used by strategies whose canHandle requires "a provider" without naming
// one.
func (g *Gateway) AnyAvailable() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	for _, p := range g.providers {
		if p.Available() {
			return true
		}
	}
	return false
}

// Names returns the registered provider names.
func (g *Gateway) Names() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()
	out := make([]string, 0, len(g.providers))
	for name := range g.providers {
		out = append(out, name)
	}
	return out
}

// Complete dispatches a one-shot completion to the named provider.
func (g *Gateway) Complete(ctx context.Context, name, prompt string, opts CompleteOptions) (string, error) {
	p, err := g.lookup(name)
	if err != nil {
		return "", err
	}
	return p.Complete(ctx, prompt, opts)
}

// Converse dispatches a multi-turn call to the named provider.
func (g *Gateway) Converse(ctx context.Context, name, handle, message string, opts ConverseOptions) (ConverseResult, error) {
	p, err := g.lookup(name)
	if err != nil {
		return ConverseResult{}, err
	}
	return p.Converse(ctx, handle, message, opts)
}

// CompleteAny dispatches to the first available provider found, used by
// callers (Router's default strategies) that don't pin a specific back end.
func (g *Gateway) CompleteAny(ctx context.Context, prompt string, opts CompleteOptions) (providerName, result string, err error) {
	g.mu.RLock()
	candidates := make([]Provider, 0, len(g.providers))
	for _, p := range g.providers {
		if p.Available() {
			candidates = append(candidates, p)
		}
	}
	g.mu.RUnlock()

	if len(candidates) == 0 {
		return "", "", &Failure{Kind: FailurePermanent, Message: "no provider available"}
	}
	p := candidates[0]
	out, err := p.Complete(ctx, prompt, opts)
	return p.Name(), out, err
}

func (g *Gateway) lookup(name string) (Provider, error) {
	g.mu.RLock()
	p, ok := g.providers[name]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("provider %q is not registered", name)
	}
	if !p.Available() {
		return nil, &Failure{Kind: FailurePermanent, Message: fmt.Sprintf("provider %q is not available", name)}
	}
	return p, nil
}
