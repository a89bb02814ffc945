package health

import (
	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusObserver records each check's outcome and latency as
// Prometheus metrics, an explicit Observer passed in at construction
// rather than a process-global registry.
type PrometheusObserver struct {
	statusGauge   *prometheus.GaugeVec
	latencySecs   *prometheus.HistogramVec
}

// statusValue maps a Status to the numeric gauge value Prometheus stores.
func statusValue(s Status) float64 {
	switch s {
	case StatusHealthy:
		return 1
	case StatusDegraded:
		return 0.5
	default:
		return 0
	}
}

// NewPrometheusObserver registers its metrics with reg and returns the
// Observer. Callers own reg's lifecycle; NewPrometheusObserver does not
// create a global registry.
func NewPrometheusObserver(reg prometheus.Registerer) *PrometheusObserver {
	o := &PrometheusObserver{
		statusGauge: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "reasoncore",
			Subsystem: "health",
			Name:      "check_status",
			Help:      "1=healthy, 0.5=degraded, 0=unhealthy, per named check.",
		}, []string{"check", "type"}),
		latencySecs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "reasoncore",
			Subsystem: "health",
			Name:      "check_duration_seconds",
			Help:      "Health check execution latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"check"}),
	}
	reg.MustRegister(o.statusGauge, o.latencySecs)
	return o
}

// ObserveCheck implements Observer.
func (o *PrometheusObserver) ObserveCheck(r Result) {
	o.statusGauge.WithLabelValues(r.Name, string(r.Type)).Set(statusValue(r.Status))
	o.latencySecs.WithLabelValues(r.Name).Observe(r.Duration.Seconds())
}
