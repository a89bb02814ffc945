package strategy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/cache"
	"github.com/deepreason/orchestrator/pkg/provider"
)

// countingProvider wraps fakeProvider and records how many times Complete
// was actually invoked, so a cache hit can be told apart from a fresh
// provider round trip.
type countingProvider struct {
	fakeProvider
	calls int
}

func (p *countingProvider) Complete(ctx context.Context, prompt string, opts provider.CompleteOptions) (string, error) {
	p.calls++
	return p.fakeProvider.Complete(ctx, prompt, opts)
}

func newCountingGateway() (*provider.Gateway, *countingProvider) {
	cp := &countingProvider{fakeProvider: fakeProvider{name: "mock", available: true, reply: "ok"}}
	gw := provider.NewGateway(nil)
	gw.Register(cp)
	return gw, cp
}

func TestDeepStrategy_CachesRoundTrip(t *testing.T) {
	gw, cp := newCountingGateway()
	c := cache.New(100, 1<<20, time.Minute)
	d := &DeepStrategy{Gateway: gw, Cache: c}

	req := deepRequest()

	first, err := d.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.calls)

	second, err := d.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.calls, "second Run should be served from cache, not a new provider call")
	assert.Equal(t, first.Reasoning, second.Reasoning)
}

func TestQuickStrategy_CachesRoundTrip(t *testing.T) {
	gw, cp := newCountingGateway()
	c := cache.New(100, 1<<20, time.Minute)
	q := &QuickStrategy{Gateway: gw, Cache: c}

	req := quickRequest()

	_, err := q.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.calls)

	_, err = q.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, cp.calls, "second Run should be served from cache, not a new provider call")
}

func TestDeepStrategy_NilCacheStillWorks(t *testing.T) {
	d := &DeepStrategy{Gateway: newAvailableGateway()}
	result, err := d.Run(context.Background(), deepRequest())
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusSuccess, result.Status)
}
