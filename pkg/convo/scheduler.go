// Package convo implements the conversation session scheduler:
// create/continue/finalize over a bounded-lifetime Session, serialized
// per-session by fifoLock and reaped on an idle-timeout sweep.
package convo

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// Responder produces the next model Turn for a session, given its prior
// turns and the caller's new message. Scheduler depends on this function
// type rather than on pkg/strategy or pkg/provider directly, so it stays
// decoupled from any concrete LLM client.
type Responder func(ctx context.Context, ctxRecord analysis.Context, turns []Turn, message string) (reply string, confidence float64, err error)

// Finalizer synthesizes an analysis.Result from a session's full turn
// history, used by both explicit finalize() and the MAX_TURNS/confidence
// auto-complete paths.
type Finalizer func(ctxRecord analysis.Context, turns []Turn, progress Progress, format string) (analysis.Result, error)

// Scheduler manages the lifecycle of every active conversation session.
type Scheduler struct {
	idleTimeout   time.Duration
	sweepInterval time.Duration
	maxTurns      int

	respond  Responder
	finalize Finalizer

	mu       sync.RWMutex
	sessions map[string]*Session

	cancel context.CancelFunc
	done   chan struct{}
}

// Option configures a Scheduler at construction time.
type Option func(*Scheduler)

// WithIdleTimeout overrides SessionTimeout.
func WithIdleTimeout(d time.Duration) Option {
	return func(s *Scheduler) { s.idleTimeout = d }
}

// WithSweepInterval overrides the default 5 minute background sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(s *Scheduler) { s.sweepInterval = d }
}

// WithMaxTurns overrides MaxTurns downward; it can never exceed MaxTurns.
func WithMaxTurns(n int) Option {
	return func(s *Scheduler) {
		if n > 0 && n <= MaxTurns {
			s.maxTurns = n
		}
	}
}

// NewScheduler builds a Scheduler. respond and finalize must be non-nil.
func NewScheduler(respond Responder, finalize Finalizer, opts ...Option) *Scheduler {
	s := &Scheduler{
		idleTimeout:   SessionTimeout,
		sweepInterval: 5 * time.Minute,
		maxTurns:      MaxTurns,
		respond:       respond,
		finalize:      finalize,
		sessions:      make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start launches the background idle-reap sweep. Safe to call once; a
// second call is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	if s.cancel != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	go s.sweepLoop(ctx)
	slog.Info("conversation scheduler started",
		"idle_timeout", s.idleTimeout, "sweep_interval", s.sweepInterval, "max_turns", s.maxTurns)
}

// Stop signals the sweep loop to exit and waits for it to finish. It does
// not forcibly cancel in-flight continue/finalize calls; those drain on
// their own once their holder releases the per-session lock.
func (s *Scheduler) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	slog.Info("conversation scheduler stopped")
}

func (s *Scheduler) sweepLoop(ctx context.Context) {
	defer close(s.done)

	ticker := time.NewTicker(s.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.sweep(time.Now())
		}
	}
}

// sweep marks every idle active session abandoned. A session in
// processing is NEVER touched here: its lastActivityMs is
// refreshed at acquisition time, and any reap decision is deferred until
// the holder releases it back to active.
func (s *Scheduler) sweep(now time.Time) {
	nowMs := now.UnixMilli()

	s.mu.RLock()
	ids := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		ids = append(ids, sess)
	}
	s.mu.RUnlock()

	reaped := 0
	for _, sess := range ids {
		sess.mu.Lock()
		if sess.state == StateActive && nowMs-sess.lastActivityMs > s.idleTimeout.Milliseconds() {
			sess.state = StateAbandoned
			reaped++
		}
		sess.mu.Unlock()
	}
	if reaped > 0 {
		slog.Info("conversation sweep reaped idle sessions", "count", reaped)
	}
}

// Create starts a new Session and returns its id.
func (s *Scheduler) Create(ctxRecord analysis.Context) (string, error) {
	if err := analysis.ValidateContext(ctxRecord); err != nil {
		return "", err
	}

	id := uuid.NewString()
	sess := newSession(id, ctxRecord, time.Now().UnixMilli())

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	slog.Info("conversation session created", "session_id", id)
	return id, nil
}

// Status returns a read-only Snapshot of a session, or rpcerr NotFound.
func (s *Scheduler) Status(sessionID string) (Snapshot, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Snapshot{}, err
	}
	return sess.snapshot(), nil
}

func (s *Scheduler) lookup(sessionID string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, rpcerr.New(rpcerr.KindNotFound, "unknown session id: "+sessionID)
	}
	return sess, nil
}

// Continue appends a caller turn, serializes through the session's FIFO
// lock, routes the message to respond for a model turn, and returns that
// turn. If the turn count or confidence threshold is crossed, the session
// is auto-finalized and removed before Continue returns.
func (s *Scheduler) Continue(ctx context.Context, sessionID, message string) (Turn, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return Turn{}, err
	}

	if !sess.lock.Acquire(ctx) {
		if ctx.Err() != nil {
			return Turn{}, rpcerr.Wrap(rpcerr.KindCancelled, ctx.Err())
		}
		return Turn{}, rpcerr.New(rpcerr.KindTimeout, "continue: timed out waiting for session lock")
	}

	now := time.Now().UnixMilli()
	if err := sess.beginProcessing(now, s.idleTimeout, s.maxTurns); err != nil {
		sess.lock.Release()
		return Turn{}, err
	}

	modelTurn, autoResult, autoErr := s.runTurn(ctx, sess, message)

	sess.endProcessing(time.Now().UnixMilli())
	sess.lock.Release()

	if autoErr != nil {
		return modelTurn, autoErr
	}
	_ = autoResult // synthesized result is discoverable via Status/Finalize; Continue only returns the turn.
	return modelTurn, nil
}

// runTurn performs the actual append/respond/append sequence while the
// caller already holds both the FIFO lock and the StateProcessing claim.
// It returns the produced model turn and, if MAX_TURNS or the confidence
// threshold was crossed, the auto-synthesized terminal result.
func (s *Scheduler) runTurn(ctx context.Context, sess *Session, message string) (Turn, *analysis.Result, error) {
	nowMs := time.Now().UnixMilli()

	sess.mu.Lock()
	if len(sess.turns) >= s.maxTurns {
		sess.mu.Unlock()
		return Turn{}, nil, ErrTurnCapExceeded
	}
	callerTurn := Turn{ID: uuid.NewString(), Role: RoleCaller, ContentText: message, TimestampMs: nowMs}
	sess.turns = append(sess.turns, callerTurn)
	ctxRecord := sess.context
	turnsCopy := make([]Turn, len(sess.turns))
	copy(turnsCopy, sess.turns)
	sess.mu.Unlock()

	reply, confidence, err := s.respond(ctx, ctxRecord, turnsCopy, message)
	if err != nil {
		return Turn{}, nil, err
	}

	modelTurn := Turn{ID: uuid.NewString(), Role: RoleModel, ContentText: reply, TimestampMs: time.Now().UnixMilli()}

	sess.mu.Lock()
	sess.turns = append(sess.turns, modelTurn)
	sess.progress.ConfidenceLevel = confidence
	crossedCap := len(sess.turns) >= s.maxTurns
	crossedConfidence := confidence >= ConfidenceAutoCompleteThreshold
	sess.mu.Unlock()

	if !crossedCap && !crossedConfidence {
		return modelTurn, nil, nil
	}

	result, err := s.autoComplete(sess, "summary")
	if err != nil {
		return modelTurn, nil, err
	}
	return modelTurn, &result, nil
}

// Finalize transitions a session through completing -> completed,
// synthesizes its result, and removes it from the scheduler.
func (s *Scheduler) Finalize(ctx context.Context, sessionID, format string) (analysis.Result, error) {
	sess, err := s.lookup(sessionID)
	if err != nil {
		return analysis.Result{}, err
	}

	if !sess.lock.Acquire(ctx) {
		return analysis.Result{}, rpcerr.New(rpcerr.KindTimeout, "finalize: timed out waiting for session lock")
	}
	defer sess.lock.Release()

	sess.mu.Lock()
	if sess.state.terminal() {
		sess.mu.Unlock()
		return analysis.Result{}, rpcerr.New(rpcerr.KindSessionInvalidState, "session already terminal")
	}
	sess.state = StateCompleting
	sess.mu.Unlock()

	return s.autoComplete(sess, format)
}

// autoComplete synthesizes the result, marks the session completed, and
// removes it from the live map. Caller must already hold sess's FIFO lock.
func (s *Scheduler) autoComplete(sess *Session, format string) (analysis.Result, error) {
	sess.mu.Lock()
	sess.state = StateCompleting
	turns := make([]Turn, len(sess.turns))
	copy(turns, sess.turns)
	progress := sess.progress
	ctxRecord := sess.context
	sess.mu.Unlock()

	result, err := s.finalize(ctxRecord, turns, progress, format)
	if err != nil {
		sess.mu.Lock()
		sess.state = StateAbandoned
		sess.mu.Unlock()

		s.mu.Lock()
		delete(s.sessions, sess.id)
		s.mu.Unlock()

		slog.Error("conversation finalize failed, abandoning session", "session_id", sess.id, "error", err)
		return analysis.Result{}, rpcerr.Wrap(rpcerr.KindInternal, err)
	}

	sess.mu.Lock()
	sess.state = StateCompleted
	sess.mu.Unlock()

	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()

	slog.Info("conversation session completed", "session_id", sess.id, "turns", len(turns))
	return result, nil
}

// beginProcessing validates and claims processing ownership of a session
// already holding its FIFO lock. It enforces the same idle timeout the
// background sweep enforces, so a stale session fails fast instead of
// waiting for the next sweep tick, and it also enforces the MAX_TURNS cap.
func (s *Session) beginProcessing(nowMs int64, idleTimeout time.Duration, maxTurns int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Abandoned sessions read as NotFound; any
	// other non-active state (completed, completing, processing) is a
	// SessionInvalidState since the session still technically exists.
	if s.state == StateAbandoned {
		return rpcerr.New(rpcerr.KindNotFound, fmt.Sprintf("session %s is abandoned", s.id))
	}
	if s.state != StateActive {
		return rpcerr.New(rpcerr.KindSessionInvalidState, fmt.Sprintf("session %s is %s, not active", s.id, s.state))
	}
	if nowMs-s.lastActivityMs > idleTimeout.Milliseconds() {
		s.state = StateAbandoned
		return rpcerr.New(rpcerr.KindNotFound, fmt.Sprintf("session %s exceeded its idle timeout", s.id))
	}
	if len(s.turns) >= maxTurns {
		return ErrTurnCapExceeded
	}

	s.state = StateProcessing
	s.lastActivityMs = nowMs
	return nil
}

// endProcessing returns a session to active (unless it was already moved
// on to completing/completed by the turn it just ran) and refreshes its
// activity timestamp.
func (s *Session) endProcessing(nowMs int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateProcessing {
		s.state = StateActive
	}
	s.lastActivityMs = nowMs
}
