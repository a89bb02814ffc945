package convo

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deepreason/orchestrator/pkg/analysis"
)

func echoResponder(confidence float64) Responder {
	return func(_ context.Context, _ analysis.Context, turns []Turn, message string) (string, float64, error) {
		return "reply to: " + message, confidence, nil
	}
}

func summaryFinalizer() Finalizer {
	return func(_ analysis.Context, turns []Turn, progress Progress, format string) (analysis.Result, error) {
		return analysis.Result{
			Status: analysis.StatusSuccess,
			Metadata: analysis.Metadata{
				Strategy:   "test",
				Confidence: progress.ConfidenceLevel,
				Reason:     format,
			},
		}, nil
	}
}

func newTestScheduler(respond Responder, opts ...Option) *Scheduler {
	return NewScheduler(respond, summaryFinalizer(), opts...)
}

func TestScheduler_CreateContinueFinalize(t *testing.T) {
	s := newTestScheduler(echoResponder(0.4))

	id, err := s.Create(analysis.Context{FocusArea: analysis.FocusArea{}})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	turn, err := s.Continue(context.Background(), id, "hello")
	require.NoError(t, err)
	assert.Equal(t, RoleModel, turn.Role)
	assert.Equal(t, "reply to: hello", turn.ContentText)

	snap, err := s.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StateActive, snap.State)
	assert.Len(t, snap.Turns, 2)

	result, err := s.Finalize(context.Background(), id, "summary")
	require.NoError(t, err)
	assert.Equal(t, analysis.StatusSuccess, result.Status)

	_, err = s.Status(id)
	assert.Error(t, err, "finalize removes the session")
}

func TestScheduler_FinalizeErrorAbandonsSessionInsteadOfLeakingIt(t *testing.T) {
	erroringFinalizer := func(_ analysis.Context, _ []Turn, _ Progress, _ string) (analysis.Result, error) {
		return analysis.Result{}, fmt.Errorf("synthesis backend unreachable")
	}
	s := NewScheduler(echoResponder(0.2), erroringFinalizer)

	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	_, err = s.Continue(context.Background(), id, "hi")
	require.NoError(t, err)

	_, err = s.Finalize(context.Background(), id, "summary")
	require.Error(t, err, "finalize propagates the finalizer's error")

	_, err = s.Status(id)
	assert.Error(t, err, "a failed finalize must not leave the session reachable forever")

	_, err = s.Finalize(context.Background(), id, "summary")
	assert.Error(t, err, "retrying finalize on an abandoned session must not re-invoke the finalizer")
}

func TestScheduler_FinalizeRemovesSession(t *testing.T) {
	s := newTestScheduler(echoResponder(0.2))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	_, err = s.Continue(context.Background(), id, "hi")
	require.NoError(t, err)

	_, err = s.Finalize(context.Background(), id, "summary")
	require.NoError(t, err)

	_, err = s.Status(id)
	assert.Error(t, err)

	_, err = s.Continue(context.Background(), id, "again")
	assert.Error(t, err)
}

func TestScheduler_ConfidenceAutoCompletes(t *testing.T) {
	s := newTestScheduler(echoResponder(0.95))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	_, err = s.Continue(context.Background(), id, "solve it")
	require.NoError(t, err)

	// The session should have auto-finalized and been removed.
	_, err = s.Status(id)
	assert.Error(t, err)
}

func TestScheduler_MaxTurnsAutoCompletes(t *testing.T) {
	s := newTestScheduler(echoResponder(0.1), WithMaxTurns(2))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	_, err = s.Continue(context.Background(), id, "one turn pair")
	require.NoError(t, err)

	_, err = s.Status(id)
	assert.Error(t, err, "session should be auto-completed once its one allowed turn pair runs")
}

func TestScheduler_ConcurrentContinueAppendsExactTurnCount(t *testing.T) {
	s := newTestScheduler(echoResponder(0.0), WithMaxTurns(MaxTurns))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := s.Continue(context.Background(), id, fmt.Sprintf("msg-%d", i))
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		assert.NoError(t, err)
	}

	snap, err := s.Status(id)
	require.NoError(t, err)
	assert.Len(t, snap.Turns, n*2, "each continue appends exactly one caller and one model turn")
}

func TestScheduler_IdleSweepReapsIdleActiveSession(t *testing.T) {
	s := newTestScheduler(echoResponder(0.0), WithIdleTimeout(10*time.Millisecond))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	time.Sleep(20 * time.Millisecond)
	s.sweep(time.Now())

	snap, err := s.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StateAbandoned, snap.State)

	_, err = s.Continue(context.Background(), id, "too late")
	assert.Error(t, err)
}

func TestScheduler_SweepNeverReapsProcessingSession(t *testing.T) {
	release := make(chan struct{})
	blocking := func(ctx context.Context, _ analysis.Context, _ []Turn, message string) (string, float64, error) {
		<-release
		return "done", 0.0, nil
	}
	s := newTestScheduler(blocking, WithIdleTimeout(5*time.Millisecond))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() {
		_, err := s.Continue(context.Background(), id, "slow")
		done <- err
	}()

	time.Sleep(20 * time.Millisecond) // well past idleTimeout while the turn is in flight
	s.sweep(time.Now())

	snap, err := s.Status(id)
	require.NoError(t, err)
	assert.Equal(t, StateProcessing, snap.State, "a processing session must never be reaped by the idle sweep")

	close(release)
	require.NoError(t, <-done)
}

func TestScheduler_StartStopSweepLoop(t *testing.T) {
	s := newTestScheduler(echoResponder(0.0), WithSweepInterval(5*time.Millisecond), WithIdleTimeout(5*time.Millisecond))
	id, err := s.Create(analysis.Context{})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		snap, err := s.Status(id)
		return err == nil && snap.State == StateAbandoned
	}, time.Second, 5*time.Millisecond)
}

func TestScheduler_UnknownSessionReturnsNotFound(t *testing.T) {
	s := newTestScheduler(echoResponder(0.0))
	_, err := s.Status("does-not-exist")
	assert.Error(t, err)
	_, err = s.Continue(context.Background(), "does-not-exist", "hi")
	assert.Error(t, err)
	_, err = s.Finalize(context.Background(), "does-not-exist", "summary")
	assert.Error(t, err)
}
