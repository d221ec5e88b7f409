package geometry

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

func TestNewTriangleStoresEdges(t *testing.T) {
	tri := NewTriangle(mgl32.Vec3{1, 1, 1}, mgl32.Vec3{2, 1, 1}, mgl32.Vec3{1, 3, 1})
	if tri.E1 != (mgl32.Vec3{1, 0, 0}) || tri.E2 != (mgl32.Vec3{0, 2, 0}) {
		t.Fatalf("unexpected edges %v %v", tri.E1, tri.E2)
	}
	if tri.V1() != (mgl32.Vec3{2, 1, 1}) || tri.V2() != (mgl32.Vec3{1, 3, 1}) {
		t.Fatalf("vertex reconstruction mismatch")
	}
	b := tri.Bounds()
	if b.Min != (mgl32.Vec3{1, 1, 1}) || b.Max != (mgl32.Vec3{2, 3, 1}) {
		t.Fatalf("unexpected bounds %+v", b)
	}
	if tri.IsDegenerate() {
		t.Fatalf("triangle should not be degenerate")
	}
}

func TestDegenerateTriangle(t *testing.T) {
	p := mgl32.Vec3{0, 0, 0}
	tri := NewTriangle(p, mgl32.Vec3{1, 0, 0}, mgl32.Vec3{2, 0, 0})
	if !tri.IsDegenerate() {
		t.Fatalf("collinear triangle should be degenerate")
	}
}

func TestAABB(t *testing.T) {
	b := EmptyAABB()
	if !b.IsEmpty() {
		t.Fatalf("expected empty box")
	}
	b.ExtendPoint(mgl32.Vec3{0, 0, 0})
	b.ExtendPoint(mgl32.Vec3{1, 4, 2})
	if b.IsEmpty() {
		t.Fatalf("expected non-empty box")
	}
	if axis := b.LargestAxis(); axis != 1 {
		t.Fatalf("expected y axis, got %d", axis)
	}
	inner := AABB{Min: mgl32.Vec3{0.5, 1, 1}, Max: mgl32.Vec3{1, 4, 2}}
	if !b.Contains(inner) {
		t.Fatalf("expected containment")
	}
	outer := AABB{Min: mgl32.Vec3{-1, 0, 0}, Max: mgl32.Vec3{1, 1, 1}}
	if b.Contains(outer) {
		t.Fatalf("unexpected containment")
	}
}

func TestExtractAppliesTransform(t *testing.T) {
	m := model.NewModel(model.WithMeshes(model.ImportedMesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {2, 0, 0}, {0, 2, 0}},
		Indices:   []uint32{0, 1, 2},
	}))
	tris := NewExtractor().Extract(m, DefaultTransform())
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
	tri := tris[0]
	if !tri.V0.ApproxEqual(mgl32.Vec3{-2, 1.5, 0}) {
		t.Fatalf("unexpected v0 %v", tri.V0)
	}
	if !tri.E1.ApproxEqual(mgl32.Vec3{1, 0, 0}) || !tri.E2.ApproxEqual(mgl32.Vec3{0, 1, 0}) {
		t.Fatalf("unexpected edges %v %v", tri.E1, tri.E2)
	}
}

func TestExtractSkipsIncompleteAndOutOfRangeTriples(t *testing.T) {
	m := model.NewModel(model.WithMeshes(model.ImportedMesh{
		Positions: []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}},
		Indices:   []uint32{0, 1, 2, 0, 1, 9, 2, 1},
	}))
	tris := NewExtractor().Extract(m, mgl32.Ident4())
	if len(tris) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(tris))
	}
}

func TestExtractEmptyModel(t *testing.T) {
	if tris := NewExtractor().Extract(model.NewModel(), mgl32.Ident4()); tris != nil {
		t.Fatalf("expected nil, got %d triangles", len(tris))
	}
}

func TestParallelExtractMatchesSequential(t *testing.T) {
	var parts []model.Model
	for i := 0; i < 8; i++ {
		parts = append(parts, model.UVSphere(float32(i+1), 12, 8), model.Cube(float32(i+1)))
	}
	m := model.Merge("many", parts...)

	seq := NewExtractor(WithWorkers(1)).Extract(m, mgl32.Ident4())
	par := NewExtractor(WithWorkers(4), WithParallelThreshold(1)).Extract(m, mgl32.Ident4())

	if len(seq) != m.TriangleCount() || len(par) != len(seq) {
		t.Fatalf("length mismatch: seq=%d par=%d want=%d", len(seq), len(par), m.TriangleCount())
	}
	for i := range seq {
		if seq[i] != par[i] {
			t.Fatalf("triangle %d differs between sequential and parallel extraction", i)
		}
	}
}
