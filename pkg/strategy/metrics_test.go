package strategy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/deepreason/orchestrator/pkg/analysis"
)

func TestMetricsRegistry_RecordAndSuccessRate(t *testing.T) {
	m := NewMetricsRegistry()
	assert.Equal(t, 0.0, m.SuccessRate("deep", analysis.TypeDeepAnalysis))

	m.Record("deep", analysis.TypeDeepAnalysis, 100, 0.9, true)
	m.Record("deep", analysis.TypeDeepAnalysis, 200, 0.7, false)

	assert.Equal(t, 0.5, m.SuccessRate("deep", analysis.TypeDeepAnalysis))
}

func TestMetricsRegistry_SnapshotAggregatesAcrossTypes(t *testing.T) {
	m := NewMetricsRegistry()
	m.Record("quick", analysis.TypeQuickScan, 50, 0.7, true)
	m.Record("quick", analysis.TypeDeepAnalysis, 150, 0.9, true)

	snaps := m.Snapshot()
	byName := map[string]Snapshot{}
	for _, s := range snaps {
		byName[s.Name] = s
	}

	s, ok := byName["quick"]
	if !ok {
		t.Fatalf("expected a snapshot for %q", "quick")
	}
	assert.Equal(t, int64(2), s.ExecutionCount)
	assert.InDelta(t, 100.0, s.AverageDurationMs, 0.001)
	assert.Equal(t, 1.0, s.SuccessRate)
}
