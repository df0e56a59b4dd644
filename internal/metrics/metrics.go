package metrics

import (
	"time"
)

// RecordFrame records one render pass.
func (r *Registry) RecordFrame(pass string, duration time.Duration) {
	if r == nil {
		return
	}
	r.FramesTotal.WithLabelValues(pass).Inc()
	r.FrameDuration.WithLabelValues(pass).Observe(duration.Seconds())
}

// RecordFrameError records a redraw that failed.
func (r *Registry) RecordFrameError() {
	if r == nil {
		return
	}
	r.FrameErrors.Inc()
}

// SetNetworkSize records the size of the loaded network.
func (r *Registry) SetNetworkSize(nodes, edges int) {
	if r == nil {
		return
	}
	r.NetworkNodes.Set(float64(nodes))
	r.NetworkEdges.Set(float64(edges))
}

// RecordPick records a picking query.
func (r *Registry) RecordPick(hit bool, duration time.Duration) {
	if r == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	r.PicksTotal.WithLabelValues(result).Inc()
	r.PickDuration.Observe(duration.Seconds())
}

// RecordLayoutStep records an accepted layout snapshot.
func (r *Registry) RecordLayoutStep() {
	if r == nil {
		return
	}
	r.LayoutStepsTotal.Inc()
}

// RecordMalformed records an ignored worker message.
func (r *Registry) RecordMalformed(reason string) {
	if r == nil {
		return
	}
	r.LayoutMalformedTotal.WithLabelValues(reason).Inc()
}

// RecordTick records an interpolation tick and the displacement it measured.
func (r *Registry) RecordTick(maxDisplacement float32) {
	if r == nil {
		return
	}
	r.LayoutTicksTotal.Inc()
	r.LayoutDisplacement.Set(float64(maxDisplacement))
}

// SetInterpolating records whether the interpolation ticker runs.
func (r *Registry) SetInterpolating(active bool) {
	if r == nil {
		return
	}
	if active {
		r.LayoutActive.Set(1)
	} else {
		r.LayoutActive.Set(0)
	}
}

// RecordExport records a figure export.
func (r *Registry) RecordExport(format string, err error, duration time.Duration) {
	if r == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	r.ExportsTotal.WithLabelValues(format, status).Inc()
	r.ExportDuration.Observe(duration.Seconds())
}
