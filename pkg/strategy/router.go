package strategy

import (
	"context"
	"sort"

	"github.com/deepreason/orchestrator/pkg/analysis"
	"github.com/deepreason/orchestrator/pkg/provider"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// historicalWeight is the small fraction of the scoring formula that
// favors a strategy with a strong historical success rate on the same
// analysisType.
const historicalWeight = 0.10

// minFallbackScore is the floor a next-best strategy must clear before
// the Router will retry a transient provider failure on it.
const minFallbackScore = 0.5

// Router picks a Strategy for an incoming Request and runs it, retrying
// once on the next-best candidate if the first attempt fails with a
// transient provider error.
type Router struct {
	strategies []Strategy
	metrics    *MetricsRegistry
}

// NewRouter builds a Router over the given strategies. Order does not
// matter; scoring determines selection.
func NewRouter(strategies ...Strategy) *Router {
	return &Router{strategies: strategies, metrics: NewMetricsRegistry()}
}

// Metrics exposes the Router's rolling per-strategy metrics read-only.
func (r *Router) Metrics() []Snapshot { return r.metrics.Snapshot() }

// rank scores every registered strategy against req and returns them
// sorted best-first. Ties break by lexicographic strategy name.
func (r *Router) rank(req analysis.Request) []scoredStrategy {
	ranked := make([]scoredStrategy, 0, len(r.strategies))
	for _, s := range r.strategies {
		base := s.CanHandle(req)
		hist := r.metrics.SuccessRate(s.Name(), req.AnalysisType)
		score := (1-historicalWeight)*base + historicalWeight*hist
		ranked = append(ranked, scoredStrategy{strategy: s, score: score})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].strategy.Name() < ranked[j].strategy.Name()
	})
	return ranked
}

// Select returns the Router's chosen Strategy for req without running it,
// used by callers (and tests) that only need the scoring decision.
func (r *Router) Select(req analysis.Request) (Strategy, error) {
	ranked := r.rank(req)
	if len(ranked) == 0 {
		return nil, rpcerr.New(rpcerr.KindInternal, "router: no strategies registered")
	}
	return ranked[0].strategy, nil
}

// Route scores every registered strategy, runs the winner, and on a
// transient provider failure retries once on the next-best strategy
// whose score is >= minFallbackScore.
func (r *Router) Route(ctx context.Context, req analysis.Request) (analysis.Result, error) {
	ranked := r.rank(req)
	if len(ranked) == 0 {
		return analysis.Result{}, rpcerr.New(rpcerr.KindInternal, "router: no strategies registered")
	}

	result, err := r.runAndRecord(ctx, ranked[0].strategy, req)
	if err == nil || !isTransientProviderFailure(err) {
		return result, err
	}
	if len(ranked) < 2 || ranked[1].score < minFallbackScore {
		return result, err
	}
	return r.runAndRecord(ctx, ranked[1].strategy, req)
}

func (r *Router) runAndRecord(ctx context.Context, s Strategy, req analysis.Request) (analysis.Result, error) {
	start := now()
	result, err := s.Run(ctx, req)
	durationMs := now().Sub(start).Milliseconds()

	confidence := result.Metadata.Confidence
	r.metrics.Record(s.Name(), req.AnalysisType, durationMs, confidence, err == nil)
	if err == nil {
		result.Metadata.Strategy = s.Name()
		result.Metadata.DurationMs = durationMs
	}
	return result, err
}

func isTransientProviderFailure(err error) bool {
	var failure *provider.Failure
	if f, ok := err.(*provider.Failure); ok {
		failure = f
	} else if rerr, ok := err.(*rpcerr.Error); ok {
		return rerr.Kind == rpcerr.KindProviderTransient
	}
	return failure != nil && failure.Kind == provider.FailureTransient
}
