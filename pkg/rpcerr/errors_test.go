package rpcerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_WithCorrelationIDDoesNotMutateOriginal(t *testing.T) {
	base := New(KindNotFound, "session missing")
	withID := base.WithCorrelationID("corr-1")

	assert.Empty(t, base.CorrelationID)
	assert.Equal(t, "corr-1", withID.CorrelationID)
	assert.Equal(t, base.Kind, withID.Kind)
}

func TestError_IsMatchesByKindOnly(t *testing.T) {
	a := New(KindProviderTransient, "rate limited")
	b := New(KindProviderTransient, "different message").WithCorrelationID("x")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(KindProviderPermanent, "rate limited")))
}

func TestError_WrapPreservesCauseForUnwrap(t *testing.T) {
	cause := errors.New("boom")
	wrapped := Wrap(KindInternal, cause)

	require.ErrorIs(t, wrapped, cause)
}

func TestError_Retryable(t *testing.T) {
	assert.True(t, New(KindProviderTransient, "").Retryable())
	assert.False(t, New(KindProviderPermanent, "").Retryable())
	assert.False(t, New(KindTimeout, "").Retryable())
}
