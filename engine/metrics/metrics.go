package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the renderer's prometheus collectors.
// A nil *Metrics is valid and records nothing, so subsystems can be built without a registry.
type Metrics struct {
	framesTotal         prometheus.Counter
	frameDuration       prometheus.Histogram
	resetsTotal         *prometheus.CounterVec
	accumulationFrame   prometheus.Gauge
	bvhBuildDuration    prometheus.Histogram
	bvhNodes            prometheus.Gauge
	bvhTriangles        prometheus.Gauge
	geometryReloadFails prometheus.Counter
	envReloadFails      prometheus.Counter
	envFaceSize         prometheus.Gauge
}

// New registers the collectors on reg.
//
// Parameters:
//   - reg: the registerer to add the collectors to, e.g. prometheus.NewRegistry()
//
// Returns:
//   - *Metrics: the collectors
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		framesTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "oxytrace_frames_total",
			Help: "Total number of frames run by the engine",
		}),
		frameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxytrace_frame_duration_seconds",
			Help:    "Host-side duration of one frame",
			Buckets: []float64{0.0005, 0.001, 0.004, 0.008, 0.016, 0.033, 0.066, 0.1},
		}),
		resetsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "oxytrace_accumulation_resets_total",
			Help: "Accumulation resets by reason; one reset may count several reasons",
		}, []string{"reason"}),
		accumulationFrame: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oxytrace_accumulation_frame_index",
			Help: "Frames accumulated since the last reset",
		}),
		bvhBuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "oxytrace_bvh_build_duration_seconds",
			Help:    "Duration of BVH builds",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
		}),
		bvhNodes: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oxytrace_bvh_nodes",
			Help: "Node count of the resident BVH",
		}),
		bvhTriangles: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oxytrace_bvh_triangles",
			Help: "Triangle count of the resident BVH",
		}),
		geometryReloadFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "oxytrace_geometry_reload_failures_total",
			Help: "Geometry reloads that failed and kept the previous BVH",
		}),
		envReloadFails: factory.NewCounter(prometheus.CounterOpts{
			Name: "oxytrace_environment_reload_failures_total",
			Help: "Environment map loads that failed and kept the previous map",
		}),
		envFaceSize: factory.NewGauge(prometheus.GaugeOpts{
			Name: "oxytrace_environment_face_size",
			Help: "Face edge length in texels of the resident environment map",
		}),
	}
}

// ObserveFrame counts one frame and its duration.
func (m *Metrics) ObserveFrame(d time.Duration) {
	if m == nil {
		return
	}
	m.framesTotal.Inc()
	m.frameDuration.Observe(d.Seconds())
}

// ObserveReset counts a reset once for each reason that caused it.
//
// Parameters:
//   - reasons: the reason labels, e.g. "mode" or "camera"
func (m *Metrics) ObserveReset(reasons []string) {
	if m == nil {
		return
	}
	for _, r := range reasons {
		m.resetsTotal.WithLabelValues(r).Inc()
	}
}

// SetAccumulationFrame publishes the current accumulation frame index.
func (m *Metrics) SetAccumulationFrame(frameIndex uint32) {
	if m == nil {
		return
	}
	m.accumulationFrame.Set(float64(frameIndex))
}

// ObserveBVH records a successful build and the resulting resident sizes.
//
// Parameters:
//   - d: the build duration
//   - nodes: the node count
//   - triangles: the triangle count
func (m *Metrics) ObserveBVH(d time.Duration, nodes, triangles int) {
	if m == nil {
		return
	}
	m.bvhBuildDuration.Observe(d.Seconds())
	m.bvhNodes.Set(float64(nodes))
	m.bvhTriangles.Set(float64(triangles))
}

// ObserveReloadFailure counts a failed geometry reload.
func (m *Metrics) ObserveReloadFailure() {
	if m == nil {
		return
	}
	m.geometryReloadFails.Inc()
}

// ObserveEnvironment records the face size of a newly installed environment map.
func (m *Metrics) ObserveEnvironment(faceSize int) {
	if m == nil {
		return
	}
	m.envFaceSize.Set(float64(faceSize))
}

// ObserveEnvironmentReloadFailure counts a failed environment map load.
func (m *Metrics) ObserveEnvironmentReloadFailure() {
	if m == nil {
		return
	}
	m.envReloadFails.Inc()
}

// Handler serves the collectors of g in the prometheus text format.
//
// Parameters:
//   - g: the gatherer to expose, usually the registry passed to New
//
// Returns:
//   - http.Handler: the /metrics handler
func Handler(g prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
