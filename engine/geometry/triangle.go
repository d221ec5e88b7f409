package geometry

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Triangle is an intersection-ready triangle stored as an anchor vertex and two edges,
// so intersection code never recomputes edges.
// A degenerate triangle (zero cross product) is a valid record that never produces a hit.
type Triangle struct {
	// V0 is the anchor vertex.
	V0 mgl32.Vec3

	// E1 is V1 - V0.
	E1 mgl32.Vec3

	// E2 is V2 - V0.
	E2 mgl32.Vec3
}

// NewTriangle builds a Triangle from three world-space vertices.
//
// Parameters:
//   - v0, v1, v2: the triangle vertices in winding order
//
// Returns:
//   - Triangle: the edge-form triangle
func NewTriangle(v0, v1, v2 mgl32.Vec3) Triangle {
	return Triangle{V0: v0, E1: v1.Sub(v0), E2: v2.Sub(v0)}
}

// V1 reconstructs the second vertex.
func (t Triangle) V1() mgl32.Vec3 {
	return t.V0.Add(t.E1)
}

// V2 reconstructs the third vertex.
func (t Triangle) V2() mgl32.Vec3 {
	return t.V0.Add(t.E2)
}

// Bounds returns the tight bounding box of the three vertices.
func (t Triangle) Bounds() AABB {
	b := AABB{Min: t.V0, Max: t.V0}
	b.ExtendPoint(t.V1())
	b.ExtendPoint(t.V2())
	return b
}

// Centroid returns the average of the three vertices.
func (t Triangle) Centroid() mgl32.Vec3 {
	return t.V0.Add(t.E1.Add(t.E2).Mul(1.0 / 3.0))
}

// IsDegenerate reports whether the triangle has zero area.
func (t Triangle) IsDegenerate() bool {
	return t.E1.Cross(t.E2).LenSqr() == 0
}
