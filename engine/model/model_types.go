package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// ImportedModel represents a triangle model produced by a loader or a procedural generator.
// This is the universal geometry-source format consumed by the triangle extractor.
type ImportedModel struct {
	// Name is the model identifier.
	Name string

	// Meshes contains all mesh data (may have multiple meshes/submeshes).
	Meshes []ImportedMesh
}

// ImportedMesh represents a single indexed triangle mesh within an imported model.
type ImportedMesh struct {
	// Name is the mesh identifier.
	Name string

	// Positions are the object-space vertex positions.
	Positions []mgl32.Vec3

	// Indices are the triangle indices, three per triangle.
	Indices []uint32

	// BoundingMin is the minimum corner of the axis-aligned bounding box.
	BoundingMin mgl32.Vec3

	// BoundingMax is the maximum corner of the axis-aligned bounding box.
	BoundingMax mgl32.Vec3
}

// TriangleCount returns the number of complete index triples in the mesh.
func (m *ImportedMesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// UpdateBounds recomputes BoundingMin and BoundingMax from Positions.
// A mesh without positions gets zero bounds.
func (m *ImportedMesh) UpdateBounds() {
	m.BoundingMin, m.BoundingMax = CalculateBoundingBox(m.Positions)
}

// CalculateBoundingBox computes the axis-aligned bounding box of a set of positions.
//
// Parameters:
//   - positions: the points to enclose
//
// Returns:
//   - mgl32.Vec3: the minimum corner
//   - mgl32.Vec3: the maximum corner
func CalculateBoundingBox(positions []mgl32.Vec3) (mgl32.Vec3, mgl32.Vec3) {
	if len(positions) == 0 {
		return mgl32.Vec3{}, mgl32.Vec3{}
	}
	bMin, bMax := positions[0], positions[0]
	for _, p := range positions[1:] {
		for i := range 3 {
			bMin[i] = min(bMin[i], p[i])
			bMax[i] = max(bMax[i], p[i])
		}
	}
	return bMin, bMax
}
