package convo

import (
	"errors"
	"sync"
	"time"

	"github.com/deepreason/orchestrator/pkg/analysis"
)

// State is one of the Session lifecycle states
type State string

const (
	StateActive     State = "active"
	StateProcessing State = "processing"
	StateCompleting State = "completing"
	StateCompleted  State = "completed"
	StateAbandoned  State = "abandoned"
)

func (s State) terminal() bool {
	return s == StateCompleted || s == StateAbandoned
}

// Role is who produced a ConversationTurn.
type Role string

const (
	RoleCaller Role = "caller"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

// Turn is the ConversationTurn record
type Turn struct {
	ID          string
	Role        Role
	ContentText string
	TimestampMs int64
	Metadata    map[string]any
}

// Progress is a Session's analysisProgress sub-record.
type Progress struct {
	CompletedSteps   []string
	PendingQuestions []string
	KeyFindings      []analysis.Finding
	ConfidenceLevel  float64
}

// ConfidenceAutoCompleteThreshold triggers a transition to "completing"
// once reached.
const ConfidenceAutoCompleteThreshold = 0.9

// MaxTurns is the hard ceiling; rcconfig.SessionConfig may
// lower it per process but never raise it.
const MaxTurns = 50

// SessionTimeout is the default idle-reap threshold.
const SessionTimeout = 30 * time.Minute

var (
	// ErrNotFound names the unknown-session-id case. Scheduler methods do
	// not return this value; they report the case as an rpcerr KindNotFound
	// error.
	ErrNotFound = errors.New("session not found")
	// ErrInvalidState names the case of an operation that is not valid in
	// the session's current state. Scheduler methods do not return this
	// value; they report the case as an rpcerr KindSessionInvalidState error.
	ErrInvalidState = errors.New("session is not in a valid state for this operation")
	// ErrLockTimeout names the case of a waiter whose context ends before
	// the FIFO lock is granted. Scheduler methods do not return this value;
	// Continue reports the case as an rpcerr KindCancelled error and
	// Finalize as an rpcerr KindTimeout error.
	ErrLockTimeout = errors.New("timed out waiting for the session lock")
	// ErrTurnCapExceeded is returned if a caller tries to append a turn
	// once the session has already hit MaxTurns.
	ErrTurnCapExceeded = errors.New("session has reached its maximum turn count")
)

// Session is the owned-by-Scheduler record. All mutation goes through
// Scheduler methods; Session itself only exposes read-only snapshots
// plus the internal fields the Scheduler needs.
type Session struct {
	id      string
	context analysis.Context

	mu             sync.Mutex // guards the fields below (not the FIFO lock)
	state          State
	startTimeMs    int64
	lastActivityMs int64
	turns          []Turn
	progress       Progress
	providerHandle string

	lock *fifoLock
}

func newSession(id string, ctx analysis.Context, nowMs int64) *Session {
	return &Session{
		id:             id,
		context:        ctx,
		state:          StateActive,
		startTimeMs:    nowMs,
		lastActivityMs: nowMs,
		lock:           newFIFOLock(),
	}
}

// ID returns the session's opaque identifier.
func (s *Session) ID() string { return s.id }

// Snapshot is a read-only copy of a Session's externally visible fields,
// returned by Scheduler.Status so callers never see the live struct.
type Snapshot struct {
	ID             string
	State          State
	StartTimeMs    int64
	LastActivityMs int64
	Context        analysis.Context
	Turns          []Turn
	Progress       Progress
}

func (s *Session) snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := make([]Turn, len(s.turns))
	copy(turns, s.turns)
	return Snapshot{
		ID: s.id, State: s.state, StartTimeMs: s.startTimeMs,
		LastActivityMs: s.lastActivityMs, Context: s.context, Turns: turns,
		Progress: s.progress,
	}
}
