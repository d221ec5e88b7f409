package scene

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/loader"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func newTestScene(t *testing.T, options ...SceneBuilderOption) (Scene, *resource.MemoryBackend) {
	t.Helper()
	backend := resource.NewMemoryBackend()
	s := NewScene(backend, options...)
	t.Cleanup(s.Release)
	return s, backend
}

func TestRebuildInstallsHierarchy(t *testing.T) {
	s, backend := newTestScene(t)
	cube := model.Cube(1)

	if err := s.Rebuild(context.Background(), cube); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if s.Model() != cube {
		t.Error("model not installed")
	}
	if got := s.Resident().TriangleCount(); got != 12 {
		t.Errorf("resident triangles = %d, want 12", got)
	}
	st := s.Stats()
	if st.TriangleCount != 12 || st.NodeCount != s.Resident().NodeCount() {
		t.Errorf("stats = %+v", st)
	}
	if backend.LiveBuffers() != 2 {
		t.Errorf("live buffers = %d, want 2", backend.LiveBuffers())
	}
}

func TestFailedUploadKeepsPreviousBVH(t *testing.T) {
	s, backend := newTestScene(t)
	cube := model.Cube(1)
	if err := s.Rebuild(context.Background(), cube); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	before := s.Stats()

	backend.SetBudget(backend.LiveBytes())
	err := s.Rebuild(context.Background(), model.UVSphere(1, 16, 8))
	if !errors.Is(err, resource.ErrBudgetExceeded) {
		t.Fatalf("err = %v, want ErrBudgetExceeded", err)
	}
	if s.Model() != cube {
		t.Error("model replaced after failed upload")
	}
	if s.Stats() != before {
		t.Errorf("stats changed: %+v -> %+v", before, s.Stats())
	}
	if s.Resident().TriangleCount() != 12 {
		t.Errorf("resident triangles = %d, want 12", s.Resident().TriangleCount())
	}
	if backend.LiveBuffers() != 2 {
		t.Errorf("live buffers = %d, want 2", backend.LiveBuffers())
	}
}

func TestFailedUploadKeepsBVHGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, backend := newTestScene(t, WithMetrics(metrics.New(reg)))
	if err := s.Rebuild(context.Background(), model.Cube(1)); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	nodes := s.Resident().NodeCount()

	backend.SetBudget(backend.LiveBytes())
	if err := s.Rebuild(context.Background(), model.UVSphere(1, 16, 8)); err == nil {
		t.Fatal("expected upload over budget to fail")
	}

	expected := fmt.Sprintf(`
# HELP oxytrace_bvh_nodes Node count of the resident BVH
# TYPE oxytrace_bvh_nodes gauge
oxytrace_bvh_nodes %d
# HELP oxytrace_bvh_triangles Triangle count of the resident BVH
# TYPE oxytrace_bvh_triangles gauge
oxytrace_bvh_triangles 12
`, nodes)
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "oxytrace_bvh_nodes", "oxytrace_bvh_triangles"); err != nil {
		t.Fatal(err)
	}
}

func TestRebuildHonorsCancellation(t *testing.T) {
	s, _ := newTestScene(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Rebuild(ctx, model.Cube(1)); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if s.Model() != nil {
		t.Error("model installed by cancelled rebuild")
	}
}

func TestRebuildWithoutModel(t *testing.T) {
	s, _ := newTestScene(t)
	if err := s.Rebuild(context.Background(), nil); !errors.Is(err, ErrNoModel) {
		t.Fatalf("err = %v, want ErrNoModel", err)
	}
}

func TestEmptyModelUploadsPlaceholder(t *testing.T) {
	s, backend := newTestScene(t)
	if err := s.Rebuild(context.Background(), model.NewModel(model.WithName("empty"))); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if s.Resident().NodeCount() != 0 || s.Resident().TriangleCount() != 0 {
		t.Errorf("counts = %d/%d, want 0/0", s.Resident().NodeCount(), s.Resident().TriangleCount())
	}
	if backend.LiveBuffers() != 2 {
		t.Errorf("live buffers = %d, want 2 placeholders", backend.LiveBuffers())
	}
}

func TestReloadFromPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tri.obj")
	if err := os.WriteFile(path, []byte("v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	s, _ := newTestScene(t, WithLoader(loader.NewLoader()), WithMetrics(m), WithLeafMax(2))

	if err := s.ReloadFromPath(context.Background(), path); err != nil {
		t.Fatalf("ReloadFromPath: %v", err)
	}
	if s.Resident().TriangleCount() != 1 {
		t.Fatalf("triangles = %d, want 1", s.Resident().TriangleCount())
	}
	first := s.Model()

	if err := os.WriteFile(path, []byte("v 0 0 0\nf 1 2 3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.Reload(context.Background()); err == nil {
		t.Fatal("expected reload of a broken file to fail")
	}
	if s.Model() != first {
		t.Error("broken reload replaced the model")
	}
	expected := `
# HELP oxytrace_geometry_reload_failures_total Geometry reloads that failed and kept the previous BVH
# TYPE oxytrace_geometry_reload_failures_total counter
oxytrace_geometry_reload_failures_total 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "oxytrace_geometry_reload_failures_total"); err != nil {
		t.Error(err)
	}
}

func TestReloadFromPathWithoutLoader(t *testing.T) {
	s, _ := newTestScene(t)
	if err := s.ReloadFromPath(context.Background(), "x.obj"); !errors.Is(err, ErrNoLoader) {
		t.Fatalf("err = %v, want ErrNoLoader", err)
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	s, backend := newTestScene(t)
	if err := s.Rebuild(context.Background(), model.Cube(1)); err != nil {
		t.Fatal(err)
	}
	s.Release()
	s.Release()
	if backend.LiveBuffers() != 0 {
		t.Errorf("live buffers = %d after release", backend.LiveBuffers())
	}
	if err := s.Rebuild(context.Background(), model.Cube(1)); err == nil {
		t.Error("rebuild after release should fail")
	}
}
