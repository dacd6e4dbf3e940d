// Prometheus instrumentation for the simulation loop.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors exposed on the admin server.
type Metrics struct {
	TicksTotal            prometheus.Counter
	MissionsStarted       prometheus.Counter
	MissionsFailed        prometheus.Counter
	MissionsWon           prometheus.Counter
	AnalysisRequestsTotal prometheus.Counter
	AnalysisFailuresTotal prometheus.Counter
	CPUPercent            prometheus.Gauge
	EfficiencyPercent     prometheus.Gauge
	RequestsPerSecond     prometheus.Gauge
}

// New registers and returns all collectors on the default registry.
func New() *Metrics {
	return &Metrics{
		TicksTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_ticks_total",
			Help: "Total number of drift ticks executed",
		}),
		MissionsStarted: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_missions_started_total",
			Help: "Total number of challenge runs started",
		}),
		MissionsFailed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_missions_failed_total",
			Help: "Total number of challenge runs that failed",
		}),
		MissionsWon: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_missions_won_total",
			Help: "Total number of challenge runs won",
		}),
		AnalysisRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_analysis_requests_total",
			Help: "Total number of external analysis requests",
		}),
		AnalysisFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "ddosim_analysis_failures_total",
			Help: "Total number of analysis requests that fell back to the neutral result",
		}),
		CPUPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ddosim_cpu_percent",
			Help: "Simulated CPU utilization of the latest snapshot",
		}),
		EfficiencyPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ddosim_efficiency_percent",
			Help: "Simulated efficiency score of the latest snapshot",
		}),
		RequestsPerSecond: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "ddosim_requests_per_second",
			Help: "Simulated request rate of the latest snapshot",
		}),
	}
}

// ObserveSnapshot updates the per-snapshot gauges.
func (m *Metrics) ObserveSnapshot(cpu, efficiency, rps float64) {
	if m == nil {
		return
	}
	m.CPUPercent.Set(cpu)
	m.EfficiencyPercent.Set(efficiency)
	m.RequestsPerSecond.Set(rps)
}
