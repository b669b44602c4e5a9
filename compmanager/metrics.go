package compmanager

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics wraps a dedicated prometheus.Registry exposing per-component
// state and error-count gauges, mirroring GetPerformanceMetrics for
// external scraping. The gauges are registered when NewMetrics builds the
// registry; Collect only updates them while EnablePerformanceMonitoring(true)
// is in effect.
type Metrics struct {
	Registry   *prometheus.Registry
	stateGauge *prometheus.GaugeVec
	errorGauge *prometheus.GaugeVec
}

// NewMetrics builds a fresh registry and gauge vectors labeled by
// component name.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	stateGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lithium_component_state",
		Help: "Current lifecycle state of a component (integer encoding).",
	}, []string{"component"})
	errorGauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "lithium_component_error_count",
		Help: "Cumulative error count recorded for a component.",
	}, []string{"component"})
	reg.MustRegister(stateGauge, errorGauge)
	return &Metrics{Registry: reg, stateGauge: stateGauge, errorGauge: errorGauge}
}

// Collect pushes the manager's current per-component snapshot into the
// gauges; callers invoke this before a scrape, since there is no push
// registration tying the manager's mutable state directly to a Collector.
func (m *ComponentManager) Collect(metrics *Metrics) {
	if metrics == nil || !m.monitoringEnabled() {
		return
	}
	for name, snap := range m.GetPerformanceMetrics() {
		metrics.stateGauge.WithLabelValues(name).Set(float64(snap.State))
		metrics.errorGauge.WithLabelValues(name).Set(float64(snap.ErrorCount))
	}
}
