package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initRenderMetrics() {
	r.FramesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_frames_total",
			Help: "Total number of render passes",
		},
		[]string{"pass"}, // visible, picking, export
	)

	r.FrameDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "netviz_frame_duration_seconds",
			Help:    "Render pass duration in seconds",
			Buckets: []float64{0.001, 0.002, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1, 0.25},
		},
		[]string{"pass"},
	)

	r.FrameErrors = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "netviz_frame_errors_total",
			Help: "Redraws that failed and were skipped",
		},
	)

	r.NetworkNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_network_nodes",
			Help: "Number of nodes in the loaded network",
		},
	)

	r.NetworkEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "netviz_network_edges",
			Help: "Number of edges in the loaded network",
		},
	)

	r.PicksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "netviz_picks_total",
			Help: "Total number of picking queries",
		},
		[]string{"result"}, // hit, miss
	)

	r.PickDuration = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "netviz_pick_duration_seconds",
			Help:    "Picking readback duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.002, 0.005, 0.01},
		},
	)
}
