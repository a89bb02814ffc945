// Package tournament implements the multi-round hypothesis tournament
// engine: a bracket-elimination contest between 2-10
// caller-supplied hypotheses, bounded to maxParallel concurrent provider
// queries per round via golang.org/x/sync/semaphore and fanned out with
// golang.org/x/sync/errgroup.
package tournament

import (
	"time"

	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// Type is the caller-supplied classification of a Hypothesis.
type Type string

const (
	TypeBug       Type = "bug"
	TypePerformance Type = "performance"
	TypeBehavior  Type = "behavior"
	TypeSecurity  Type = "security"
)

// Hypothesis is one caller-supplied candidate explanation entered into the
// tournament.
type Hypothesis struct {
	ID          string
	Description string
	Type        Type
	Confidence  int // 1..5, caller-supplied prior
}

// MatchResult is one provider verdict on a single hypothesis within a
// single round.
type MatchResult struct {
	HypothesisID    string
	Likelihood      float64 // 0..100
	Evidence        []string
	CounterEvidence []string
	DurationMs      int64
}

// Status is the terminal state of a tournament Result.
type Status string

const (
	StatusComplete Status = "complete"
	StatusPartial  Status = "partial"
)

// RankedHypothesis is one entry of the final ranking.
type RankedHypothesis struct {
	HypothesisID    string
	Likelihood      float64
	InitialConfidence int
	RoundsSurvived  int
}

// Result is the tournament's final output: a full ranking, the winner,
// and a short recommendation.
type Result struct {
	Ranking        []RankedHypothesis
	WinnerID       string
	Recommendation string
	Status         Status
}

const (
	minHypotheses = 2
	maxHypotheses = 10

	// MinMaxParallel/MaxMaxParallel bound Config.MaxParallel
	MinMaxParallel = 1
	MaxMaxParallel = 5
	DefaultMaxParallel = 3

	// MinPerMatchTimeout/MaxPerMatchTimeout bound Config.PerMatchTimeout.
	MinPerMatchTimeout     = 10 * time.Second
	MaxPerMatchTimeout     = 120 * time.Second
	DefaultPerMatchTimeout = 30 * time.Second
)

// Config holds the per-tournament tunables
type Config struct {
	MaxParallel     int
	PerMatchTimeout time.Duration
}

// normalize fills zero-valued fields with defaults and rejects
// out-of-range values with an InvalidInput error, mirroring this module's config validator's fail-fast style but
// applied at the call site since a tournament's config rides in on each
// request rather than process-wide.
func (c Config) normalize() (Config, error) {
	if c.MaxParallel == 0 {
		c.MaxParallel = DefaultMaxParallel
	}
	if c.MaxParallel < MinMaxParallel || c.MaxParallel > MaxMaxParallel {
		return Config{}, rpcerr.New(rpcerr.KindInvalidInput, "tournament maxParallel must be 1..5")
	}
	if c.PerMatchTimeout == 0 {
		c.PerMatchTimeout = DefaultPerMatchTimeout
	}
	if c.PerMatchTimeout < MinPerMatchTimeout || c.PerMatchTimeout > MaxPerMatchTimeout {
		return Config{}, rpcerr.New(rpcerr.KindInvalidInput, "tournament perMatchTimeoutSec must be 10..120")
	}
	return c, nil
}

// validateHypotheses rejects hypothesis counts outside 2..10, duplicate
// or empty ids, and out-of-range confidence values.
func validateHypotheses(hs []Hypothesis) error {
	if len(hs) < minHypotheses || len(hs) > maxHypotheses {
		return rpcerr.New(rpcerr.KindInvalidInput, "tournament requires 2..10 hypotheses")
	}
	seen := make(map[string]bool, len(hs))
	for _, h := range hs {
		if h.ID == "" {
			return rpcerr.New(rpcerr.KindInvalidInput, "hypothesis id must not be empty")
		}
		if seen[h.ID] {
			return rpcerr.New(rpcerr.KindInvalidInput, "duplicate hypothesis id: "+h.ID)
		}
		seen[h.ID] = true
		if h.Confidence < 1 || h.Confidence > 5 {
			return rpcerr.New(rpcerr.KindInvalidInput, "hypothesis confidence must be 1..5")
		}
	}
	return nil
}

// seedLikelihood normalizes a 1..5 confidence prior to the [20, 100]
// likelihood scale.
func seedLikelihood(confidence int) float64 {
	return float64(confidence) * 20
}

// plannedRounds computes how many elimination rounds n hypotheses will go
// through (eliminating ceil(k/2) survivors each round until 1 remains),
// used up front to compute the tournament's total deadline.
func plannedRounds(n int) int {
	rounds := 0
	k := n
	for k > 1 {
		eliminate := (k + 1) / 2
		k -= eliminate
		rounds++
	}
	return rounds
}
