package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestFramesAndResets(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveFrame(5 * time.Millisecond)
	m.ObserveFrame(7 * time.Millisecond)
	m.ObserveReset([]string{"mode", "camera"})
	m.ObserveReset([]string{"camera"})
	m.SetAccumulationFrame(42)

	if got := testutil.ToFloat64(m.framesTotal); got != 2 {
		t.Errorf("frames = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.resetsTotal.WithLabelValues("camera")); got != 2 {
		t.Errorf("camera resets = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.resetsTotal.WithLabelValues("mode")); got != 1 {
		t.Errorf("mode resets = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.accumulationFrame); got != 42 {
		t.Errorf("accumulation frame = %v, want 42", got)
	}
}

func TestBVHGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveBVH(time.Millisecond, 7, 12)
	m.ObserveReloadFailure()

	if got := testutil.ToFloat64(m.bvhNodes); got != 7 {
		t.Errorf("nodes = %v, want 7", got)
	}
	if got := testutil.ToFloat64(m.bvhTriangles); got != 12 {
		t.Errorf("triangles = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.geometryReloadFails); got != 1 {
		t.Errorf("reload failures = %v, want 1", got)
	}

	m.ObserveEnvironment(256)
	m.ObserveEnvironmentReloadFailure()
	if got := testutil.ToFloat64(m.envFaceSize); got != 256 {
		t.Errorf("environment face size = %v, want 256", got)
	}
	if got := testutil.ToFloat64(m.envReloadFails); got != 1 {
		t.Errorf("environment reload failures = %v, want 1", got)
	}
	if got := testutil.CollectAndCount(m.bvhBuildDuration); got != 1 {
		t.Errorf("build histogram series = %d, want 1", got)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.ObserveFrame(time.Millisecond)
	m.ObserveReset([]string{"user"})
	m.SetAccumulationFrame(1)
	m.ObserveBVH(time.Millisecond, 1, 1)
	m.ObserveReloadFailure()
	m.ObserveEnvironment(1)
	m.ObserveEnvironmentReloadFailure()
}

func TestHandlerServesCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveReset([]string{"user"})

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body := rec.Body.String()
	if !strings.Contains(body, `oxytrace_accumulation_resets_total{reason="user"} 1`) {
		t.Errorf("reset counter missing from exposition:\n%s", body)
	}
}
