package provider

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	name      string
	available bool
}

func (f *fakeProvider) Name() string     { return f.name }
func (f *fakeProvider) Available() bool  { return f.available }
func (f *fakeProvider) Complete(ctx context.Context, prompt string, opts CompleteOptions) (string, error) {
	return "echo:" + prompt, nil
}
func (f *fakeProvider) Converse(ctx context.Context, handle, message string, opts ConverseOptions) (ConverseResult, error) {
	return ConverseResult{Handle: handle + "+1", Reply: "ack:" + message}, nil
}

func TestGateway_RegisterAndComplete(t *testing.T) {
	g := NewGateway(nil)
	g.Register(&fakeProvider{name: "mock", available: true})

	out, err := g.Complete(context.Background(), "mock", "hello", CompleteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "echo:hello", out)
}

func TestGateway_UnavailableProviderErrors(t *testing.T) {
	g := NewGateway(nil)
	g.Register(&fakeProvider{name: "mock", available: false})

	_, err := g.Complete(context.Background(), "mock", "hello", CompleteOptions{})
	require.Error(t, err)
}

func TestGateway_UnregisteredProviderErrors(t *testing.T) {
	g := NewGateway(nil)
	_, err := g.Complete(context.Background(), "nope", "hello", CompleteOptions{})
	require.Error(t, err)
}

func TestGateway_AnyAvailable(t *testing.T) {
	g := NewGateway(nil)
	assert.False(t, g.AnyAvailable())

	g.Register(&fakeProvider{name: "a", available: false})
	assert.False(t, g.AnyAvailable())

	g.Register(&fakeProvider{name: "b", available: true})
	assert.True(t, g.AnyAvailable())
}

func TestGateway_CompleteAnyPicksAvailableProvider(t *testing.T) {
	g := NewGateway(nil)
	g.Register(&fakeProvider{name: "down", available: false})
	g.Register(&fakeProvider{name: "up", available: true})

	name, out, err := g.CompleteAny(context.Background(), "hi", CompleteOptions{})
	require.NoError(t, err)
	assert.Equal(t, "up", name)
	assert.Equal(t, "echo:hi", out)
}

func TestGateway_CompleteAnyNoProvidersErrors(t *testing.T) {
	g := NewGateway(nil)
	_, _, err := g.CompleteAny(context.Background(), "hi", CompleteOptions{})
	require.Error(t, err)
}

func TestGateway_Converse(t *testing.T) {
	g := NewGateway(nil)
	g.Register(&fakeProvider{name: "mock", available: true})

	res, err := g.Converse(context.Background(), "mock", "h0", "hi", ConverseOptions{})
	require.NoError(t, err)
	assert.Equal(t, "h0+1", res.Handle)
	assert.Equal(t, "ack:hi", res.Reply)
}
