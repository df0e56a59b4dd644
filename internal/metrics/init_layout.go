package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initLayoutMetrics() {
	r.LayoutStepsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_layout_steps_total",
			Help: "Layout snapshots accepted from the worker",
		},
	)

	r.LayoutMalformedTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_layout_malformed_total",
			Help: "Worker messages ignored as malformed or unexpected",
		},
		[]string{"reason"}, // length, type, decode
	)

	r.LayoutTicksTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_layout_ticks_total",
			Help: "Interpolation ticks applied to node positions",
		},
	)

	r.LayoutActive = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_layout_interpolating",
			Help: "Whether positions are being interpolated (1=yes, 0=no)",
		},
	)

	r.LayoutDisplacement = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_layout_max_displacement",
			Help: "Largest per-coordinate distance to the layout target at the last tick",
		},
	)
}

func (r *Registry) initExportMetrics() {
	r.ExportsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_exports_total",
			Help: "Figure exports by outcome",
		},
		[]string{"format", "status"},
	)

	r.ExportDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netviz_export_duration_seconds",
			Help:    "Figure export duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
	)
}
