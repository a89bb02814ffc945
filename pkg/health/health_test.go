package health

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func healthyCheck(ctx context.Context) (Status, map[string]any, error) {
	return StatusHealthy, nil, nil
}

func TestMonitor_RegisterRequiresNameAndFn(t *testing.T) {
	m := NewMonitor(nil)
	require.Error(t, m.Register(CheckConfig{CheckFn: healthyCheck}))
	require.Error(t, m.Register(CheckConfig{Name: "x"}))
}

func TestMonitor_ExecuteAll_AggregatesHealthy(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "a", Enabled: true, CheckFn: healthyCheck}))
	require.NoError(t, m.Register(CheckConfig{Name: "b", Enabled: true, CheckFn: healthyCheck}))

	summary := m.ExecuteAll(context.Background())
	assert.Equal(t, StatusHealthy, summary.Status)
	assert.Len(t, summary.Checks, 2)
}

func TestMonitor_ExecuteAll_UnhealthyDominates(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "ok", Enabled: true, CheckFn: healthyCheck}))
	require.NoError(t, m.Register(CheckConfig{Name: "degraded", Enabled: true, CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
		return StatusDegraded, nil, nil
	}}))
	require.NoError(t, m.Register(CheckConfig{Name: "bad", Enabled: true, CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
		return StatusUnhealthy, nil, nil
	}}))

	summary := m.ExecuteAll(context.Background())
	assert.Equal(t, StatusUnhealthy, summary.Status)
}

func TestMonitor_ExecuteAll_DegradedWithNoUnhealthy(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "ok", Enabled: true, CheckFn: healthyCheck}))
	require.NoError(t, m.Register(CheckConfig{Name: "degraded", Enabled: true, CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
		return StatusDegraded, nil, nil
	}}))

	summary := m.ExecuteAll(context.Background())
	assert.Equal(t, StatusDegraded, summary.Status)
}

func TestMonitor_DisabledChecksAreSkipped(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "off", Enabled: false, CheckFn: healthyCheck}))

	summary := m.ExecuteAll(context.Background())
	assert.Empty(t, summary.Checks)
}

func TestMonitor_TimeoutProducesUnhealthy(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{
		Name: "slow", Enabled: true, Timeout: 5 * time.Millisecond,
		CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
			select {
			case <-time.After(50 * time.Millisecond):
				return StatusHealthy, nil, nil
			case <-ctx.Done():
				return StatusUnknown, nil, nil
			}
		},
	}))

	result, err := m.ExecuteOne(context.Background(), "slow")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
}

func TestMonitor_PanicIsContainedAsUnhealthy(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "panics", Enabled: true, CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
		panic("boom")
	}}))

	result, err := m.ExecuteOne(context.Background(), "panics")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
	require.Error(t, result.Err)
}

func TestMonitor_ExecuteOne_UnknownNameErrors(t *testing.T) {
	m := NewMonitor(nil)
	_, err := m.ExecuteOne(context.Background(), "nope")
	require.Error(t, err)
}

func TestMonitor_ExecuteAllTwiceYieldsSameCheckSet(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "a", Enabled: true, CheckFn: healthyCheck}))
	require.NoError(t, m.Register(CheckConfig{Name: "b", Enabled: true, CheckFn: healthyCheck}))

	first := m.ExecuteAll(context.Background())
	second := m.ExecuteAll(context.Background())

	names := func(s Summary) []string {
		out := make([]string, len(s.Checks))
		for i, c := range s.Checks {
			out[i] = c.Name
		}
		return out
	}
	assert.ElementsMatch(t, names(first), names(second))
}

type recordingObserver struct {
	mu      sync.Mutex
	results []Result
}

func (r *recordingObserver) ObserveCheck(res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, res)
}

func TestMonitor_ObserverReceivesEveryResult(t *testing.T) {
	obs := &recordingObserver{}
	m := NewMonitor(obs)
	require.NoError(t, m.Register(CheckConfig{Name: "a", Enabled: true, CheckFn: healthyCheck}))

	m.ExecuteAll(context.Background())

	obs.mu.Lock()
	defer obs.mu.Unlock()
	require.Len(t, obs.results, 1)
	assert.Equal(t, "a", obs.results[0].Name)
}

func TestMonitor_CheckFnErrorForcesUnhealthy(t *testing.T) {
	m := NewMonitor(nil)
	require.NoError(t, m.Register(CheckConfig{Name: "erroring", Enabled: true, CheckFn: func(ctx context.Context) (Status, map[string]any, error) {
		return StatusHealthy, nil, errors.New("dependency unreachable")
	}}))

	result, err := m.ExecuteOne(context.Background(), "erroring")
	require.NoError(t, err)
	assert.Equal(t, StatusUnhealthy, result.Status)
}
