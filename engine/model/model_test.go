package model

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestCubeHasTwelveTriangles(t *testing.T) {
	m := Cube(2)
	if got := m.TriangleCount(); got != 12 {
		t.Fatalf("expected 12 triangles, got %d", got)
	}
	bMin, bMax := m.Bounds()
	if bMin != (mgl32.Vec3{-1, -1, -1}) || bMax != (mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("unexpected bounds %v %v", bMin, bMax)
	}
}

func TestUVSphereClampsSubdivisions(t *testing.T) {
	m := UVSphere(1, 1, 1)
	if got, want := m.TriangleCount(), 3*2*2; got != want {
		t.Fatalf("expected %d triangles, got %d", want, got)
	}
}

func TestMergePreservesMeshOrder(t *testing.T) {
	m := Merge("scene", Plane(10), Cube(1))
	meshes := m.Meshes()
	if len(meshes) != 2 || meshes[0].Name != "plane" || meshes[1].Name != "cube" {
		t.Fatalf("unexpected mesh order: %+v", meshes)
	}
	if got := m.TriangleCount(); got != 14 {
		t.Fatalf("expected 14 triangles, got %d", got)
	}
	bMin, bMax := m.Bounds()
	if bMin[0] != -5 || bMax[1] != 0.5 {
		t.Fatalf("unexpected merged bounds %v %v", bMin, bMax)
	}
}

func TestBoundsOfEmptyModel(t *testing.T) {
	m := NewModel()
	bMin, bMax := m.Bounds()
	if bMin != (mgl32.Vec3{}) || bMax != (mgl32.Vec3{}) {
		t.Fatalf("expected zero bounds, got %v %v", bMin, bMax)
	}
}
