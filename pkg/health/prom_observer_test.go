package health

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrometheusObserver_ObserveCheckUpdatesGaugeAndHistogram(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs := NewPrometheusObserver(reg)

	obs.ObserveCheck(Result{Name: "providers", Type: CheckTypeDependency, Status: StatusHealthy, Duration: 150 * time.Millisecond})
	obs.ObserveCheck(Result{Name: "providers", Type: CheckTypeDependency, Status: StatusDegraded, Duration: 50 * time.Millisecond})

	families, err := reg.Gather()
	require.NoError(t, err)

	var gauge *dto.MetricFamily
	var histogram *dto.MetricFamily
	for _, f := range families {
		switch f.GetName() {
		case "reasoncore_health_check_status":
			gauge = f
		case "reasoncore_health_check_duration_seconds":
			histogram = f
		}
	}
	require.NotNil(t, gauge, "status gauge must be registered")
	require.NotNil(t, histogram, "latency histogram must be registered")

	require.Len(t, gauge.Metric, 1, "second ObserveCheck overwrites the same check's gauge rather than adding a series")
	assert.Equal(t, 0.5, gauge.Metric[0].GetGauge().GetValue(), "latest status (degraded) wins")

	require.Len(t, histogram.Metric, 1)
	assert.Equal(t, uint64(2), histogram.Metric[0].GetHistogram().GetSampleCount())
}

func TestStatusValue(t *testing.T) {
	assert.Equal(t, 1.0, statusValue(StatusHealthy))
	assert.Equal(t, 0.5, statusValue(StatusDegraded))
	assert.Equal(t, 0.0, statusValue(StatusUnhealthy))
}
