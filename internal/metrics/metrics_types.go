// Package metrics exposes viewer and layout instrumentation to Prometheus.
//
// Every Record/Set helper is safe to call on a nil *Registry, so components
// can run without metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metrics for the viewer.
type Registry struct {
	// Render Metrics
	FramesTotal   *prometheus.CounterVec
	FrameDuration *prometheus.HistogramVec
	FrameErrors   prometheus.Counter
	NetworkNodes  prometheus.Gauge
	NetworkEdges  prometheus.Gauge

	// Picking Metrics
	PicksTotal   *prometheus.CounterVec
	PickDuration prometheus.Histogram

	// Layout Metrics
	LayoutStepsTotal     prometheus.Counter
	LayoutMalformedTotal *prometheus.CounterVec
	LayoutTicksTotal     prometheus.Counter
	LayoutActive         prometheus.Gauge
	LayoutDisplacement   prometheus.Gauge

	// Export Metrics
	ExportsTotal   *prometheus.CounterVec
	ExportDuration prometheus.Histogram

	registry *prometheus.Registry
}

// NewRegistry creates a new metrics registry with all metrics initialized.
func NewRegistry() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
	}

	r.initRenderMetrics()
	r.initLayoutMetrics()
	r.initExportMetrics()

	return r
}
