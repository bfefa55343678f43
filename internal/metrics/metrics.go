package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	SimulationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boulder_simulations_total",
			Help: "Total number of relayed simulations by final status.",
		},
		[]string{"status"},
	)

	SimulationDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "boulder_simulation_duration_seconds",
			Help:    "Wall time from submission to the final stream event.",
			Buckets: []float64{0.5, 1, 5, 15, 30, 60, 120, 300, 600},
		},
		[]string{"status"},
	)

	SimulationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "boulder_simulations_active",
			Help: "Number of simulations currently tracked by the gateway.",
		},
	)

	StreamEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boulder_stream_events_total",
			Help: "Total number of relayed stream events by type.",
		},
		[]string{"type"},
	)

	ConfigRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boulder_config_requests_total",
			Help: "Total number of configuration requests by operation and outcome.",
		},
		[]string{"op", "status"},
	)

	PluginRendersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "boulder_plugin_renders_total",
			Help: "Total number of plugin renders by plugin and availability.",
		},
		[]string{"plugin", "available"},
	)
)

// Register registers all custom Boulder metrics with the default Prometheus registry.
func Register() {
	prometheus.MustRegister(
		SimulationsTotal,
		SimulationDurationSeconds,
		SimulationsActive,
		StreamEventsTotal,
		ConfigRequestsTotal,
		PluginRendersTotal,
	)
}
