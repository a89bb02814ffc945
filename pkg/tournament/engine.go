package tournament

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// Querier runs one provider query for a single hypothesis within the
// shared test scope, returning the match verdict. Engine depends on this
// function type rather than pkg/provider directly, the same decoupling
// pattern used by convo.Responder.
type Querier func(ctx context.Context, h Hypothesis, testScope string) (MatchResult, error)

// contestant tracks one hypothesis's running state across rounds.
type contestant struct {
	hypothesis        Hypothesis
	cumulative        float64
	totalWeight       float64
	roundsSurvived    int
	eliminatedAtRound int // -1 while still alive
}

// Engine runs hypothesis tournaments.
type Engine struct {
	query Querier
}

// NewEngine builds an Engine backed by the given Querier.
func NewEngine(query Querier) *Engine {
	return &Engine{query: query}
}

// Run executes a full tournament over hypotheses against testScope,
// eliminating the bottom half each round until one winner remains.
func (e *Engine) Run(ctx context.Context, hypotheses []Hypothesis, testScope string, cfg Config) (Result, error) {
	if err := validateHypotheses(hypotheses); err != nil {
		return Result{}, err
	}
	cfg, err := cfg.normalize()
	if err != nil {
		return Result{}, err
	}

	contestants := make([]*contestant, len(hypotheses))
	for i, h := range hypotheses {
		seed := seedLikelihood(h.Confidence)
		contestants[i] = &contestant{
			hypothesis:        h,
			cumulative:        seed,
			totalWeight:       1, // baseline weight so the seed itself counts once
			eliminatedAtRound: -1,
		}
	}

	totalRounds := plannedRounds(len(contestants))
	deadline := time.Now().Add(time.Duration(totalRounds) * cfg.PerMatchTimeout)
	tournamentCtx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	alive := contestants
	round := 0
	partial := false

	// The deadline check runs BEFORE starting each round, not after: a
	// round that legitimately uses its full per-match timeout is not a
	// deadline overrun, only a round skipped because no time remains is, or
	// a round whose match is still waiting for a semaphore slot when the
	// deadline passes (runRound then returns DeadlineExceeded).
	for len(alive) > 1 {
		if tournamentCtx.Err() != nil {
			partial = true
			break
		}

		round++
		if err := e.runRound(tournamentCtx, alive, testScope, cfg); err != nil {
			if errors.Is(err, context.DeadlineExceeded) {
				partial = true
				break
			}
			return Result{}, rpcerr.Wrap(rpcerr.KindInternal, err)
		}
		for _, c := range alive {
			c.roundsSurvived = round
		}

		sortByStanding(alive)

		eliminateCount := (len(alive) + 1) / 2
		survivorCount := len(alive) - eliminateCount
		if survivorCount < 1 {
			survivorCount = 1
		}
		for _, c := range alive[survivorCount:] {
			c.eliminatedAtRound = round
		}
		alive = alive[:survivorCount]
	}

	if len(alive) > 1 {
		partial = true
	}

	sortByStanding(contestants)
	return buildResult(contestants, partial), nil
}

// runRound fans out one provider query per alive contestant, bounded to
// cfg.MaxParallel concurrent calls via a weighted semaphore, and folds
// each result into that contestant's running weighted-average likelihood.
// A per-match timeout yields a likelihood-0 partial record rather than
// failing the round.
func (e *Engine) runRound(ctx context.Context, alive []*contestant, testScope string, cfg Config) error {
	sem := semaphore.NewWeighted(int64(cfg.MaxParallel))
	g, gctx := errgroup.WithContext(ctx)

	for _, c := range alive {
		c := c
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)

			matchCtx, cancel := context.WithTimeout(gctx, cfg.PerMatchTimeout)
			defer cancel()

			res, err := e.query(matchCtx, c.hypothesis, testScope)
			if err != nil {
				// A timed-out or otherwise failed match is recorded as a
				// likelihood-0 partial result rather than failing the
				// whole round.
				res = MatchResult{HypothesisID: c.hypothesis.ID, Likelihood: 0}
			}
			c.fold(res)
			return nil
		})
	}

	return g.Wait()
}

// fold incorporates one match's verdict into the contestant's cumulative
// likelihood as a weighted average, weight proportional to evidence count
// (floored at 1 so an evidence-free match still counts instead of
// dividing by zero).
func (c *contestant) fold(res MatchResult) {
	weight := float64(len(res.Evidence))
	if weight < 1 {
		weight = 1
	}
	c.cumulative = (c.cumulative*c.totalWeight + res.Likelihood*weight) / (c.totalWeight + weight)
	c.totalWeight += weight
}

// sortByStanding orders contestants best-first: higher cumulative
// likelihood wins; ties break by higher initial confidence, then by
// lexicographic hypothesis id.
func sortByStanding(cs []*contestant) {
	sort.SliceStable(cs, func(i, j int) bool {
		if cs[i].cumulative != cs[j].cumulative {
			return cs[i].cumulative > cs[j].cumulative
		}
		if cs[i].hypothesis.Confidence != cs[j].hypothesis.Confidence {
			return cs[i].hypothesis.Confidence > cs[j].hypothesis.Confidence
		}
		return cs[i].hypothesis.ID < cs[j].hypothesis.ID
	})
}

func buildResult(cs []*contestant, partial bool) Result {
	ranking := make([]RankedHypothesis, len(cs))
	for i, c := range cs {
		ranking[i] = RankedHypothesis{
			HypothesisID:      c.hypothesis.ID,
			Likelihood:        c.cumulative,
			InitialConfidence: c.hypothesis.Confidence,
			RoundsSurvived:    c.roundsSurvived,
		}
	}

	status := StatusComplete
	if partial {
		status = StatusPartial
	}

	winner := ranking[0]
	recommendation := fmt.Sprintf("%s is the most likely explanation at %.0f%% likelihood after %d round(s)",
		winner.HypothesisID, winner.Likelihood, winner.RoundsSurvived)
	if status == StatusPartial {
		recommendation += " (tournament deadline reached before all rounds completed)"
	}

	return Result{
		Ranking:        ranking,
		WinnerID:       winner.HypothesisID,
		Recommendation: recommendation,
		Status:         status,
	}
}
