package strategy

import (
	"sync"

	"github.com/deepreason/orchestrator/pkg/analysis"
)

// perStrategy accumulates the rolling counters the Router's scoring pass
// reads back: execution count, duration/confidence running averages, and
// a success rate. Updated after every Run via MetricsRegistry.Record.
type perStrategy struct {
	executionCount   int64
	successCount     int64
	totalDurationMs  float64
	totalConfidence  float64
}

func (p perStrategy) averageDurationMs() float64 {
	if p.executionCount == 0 {
		return 0
	}
	return p.totalDurationMs / float64(p.executionCount)
}

func (p perStrategy) averageConfidence() float64 {
	if p.executionCount == 0 {
		return 0
	}
	return p.totalConfidence / float64(p.executionCount)
}

func (p perStrategy) successRate() float64 {
	if p.executionCount == 0 {
		return 0
	}
	return float64(p.successCount) / float64(p.executionCount)
}

// MetricsRegistry stores per-strategy rolling metrics in memory with
// thread-safe access (RWMutex-guarded map, defensive-copy reads, no
// persistence).
type MetricsRegistry struct {
	mu    sync.RWMutex
	byKey map[string]map[analysis.Type]*perStrategy
}

// NewMetricsRegistry returns an empty registry.
func NewMetricsRegistry() *MetricsRegistry {
	return &MetricsRegistry{byKey: make(map[string]map[analysis.Type]*perStrategy)}
}

// Record folds one completed Run into the rolling metrics for
// (strategyName, analysisType).
func (r *MetricsRegistry) Record(strategyName string, t analysis.Type, durationMs int64, confidence float64, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	byType, ok := r.byKey[strategyName]
	if !ok {
		byType = make(map[analysis.Type]*perStrategy)
		r.byKey[strategyName] = byType
	}
	p, ok := byType[t]
	if !ok {
		p = &perStrategy{}
		byType[t] = p
	}
	p.executionCount++
	p.totalDurationMs += float64(durationMs)
	p.totalConfidence += confidence
	if success {
		p.successCount++
	}
}

// SuccessRate returns the historical success rate for (strategyName,
// analysisType), or 0 if no executions have been recorded yet.
func (r *MetricsRegistry) SuccessRate(strategyName string, t analysis.Type) float64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	byType, ok := r.byKey[strategyName]
	if !ok {
		return 0
	}
	p, ok := byType[t]
	if !ok {
		return 0
	}
	return p.successRate()
}

// Snapshot returns a read-only copy of every recorded (strategy, type)
// pair's rolling metrics, aggregated across all analysis types per
// strategy name.
func (r *MetricsRegistry) Snapshot() []Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()

	agg := make(map[string]*perStrategy)
	for name, byType := range r.byKey {
		combined := &perStrategy{}
		for _, p := range byType {
			combined.executionCount += p.executionCount
			combined.successCount += p.successCount
			combined.totalDurationMs += p.totalDurationMs
			combined.totalConfidence += p.totalConfidence
		}
		agg[name] = combined
	}

	out := make([]Snapshot, 0, len(agg))
	for name, p := range agg {
		out = append(out, Snapshot{
			Name:              name,
			ExecutionCount:    p.executionCount,
			AverageDurationMs: p.averageDurationMs(),
			AverageConfidence: p.averageConfidence(),
			SuccessRate:       p.successRate(),
		})
	}
	return out
}
