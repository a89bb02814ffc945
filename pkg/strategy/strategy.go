// Package strategy implements the Router and its pluggable Strategy
// capability interface: the Router scores every
// registered Strategy against an incoming Request and picks the winner,
// with a small historical-success nudge and a one-shot fallback on
// transient provider failure.
package strategy

import (
	"context"
	"time"

	"github.com/deepreason/orchestrator/pkg/analysis"
)

// Estimate is a Strategy's resource forecast for a Request, returned by
// EstimateResources ahead of Run.
type Estimate struct {
	TimeMs     int64
	Bytes      int64
	Confidence float64
}

// Strategy is the polymorphic capability interface: a strategy exposes
// name, supportedTypes, canHandle(req) -> score,
// estimateResources(req) -> {timeMs, bytes, confidence}, and
// run(req) -> AnalysisResult. Implemented as a plain interface plus a
// registration list, not an inheritance hierarchy.
type Strategy interface {
	Name() string
	SupportedTypes() []analysis.Type
	CanHandle(req analysis.Request) float64
	EstimateResources(req analysis.Request) Estimate
	Run(ctx context.Context, req analysis.Request) (analysis.Result, error)
}

// scoredStrategy pairs a Strategy with the score the Router computed for
// it, kept around so the fallback retry can resume from the ranked list
// without re-scoring.
type scoredStrategy struct {
	strategy Strategy
	score    float64
}

// Snapshot mirrors a Strategy's rolling execution metrics, returned by
// Router.Metrics for observability; callers never see the live struct.
type Snapshot struct {
	Name             string
	ExecutionCount   int64
	AverageDurationMs float64
	AverageConfidence float64
	SuccessRate      float64
}

// now is overridable in tests that need deterministic duration metrics.
var now = time.Now
