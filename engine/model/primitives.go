package model

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Cube creates a single-mesh axis-aligned cube centered at the origin.
// The mesh has 8 shared vertices and 12 outward-facing triangles.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Model: the cube model
func Cube(size float32) Model {
	h := size * 0.5
	mesh := ImportedMesh{
		Name: "cube",
		Positions: []mgl32.Vec3{
			{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
			{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
		},
		Indices: []uint32{
			4, 5, 6, 4, 6, 7, // +z
			1, 0, 3, 1, 3, 2, // -z
			0, 4, 7, 0, 7, 3, // -x
			5, 1, 2, 5, 2, 6, // +x
			7, 6, 2, 7, 2, 3, // +y
			0, 1, 5, 0, 5, 4, // -y
		},
	}
	return NewModel(WithName("cube"), WithMeshes(mesh))
}

// Plane creates a single-mesh ground plane in the XZ plane facing +Y.
//
// Parameters:
//   - size: the edge length
//
// Returns:
//   - Model: the plane model
func Plane(size float32) Model {
	h := size * 0.5
	mesh := ImportedMesh{
		Name: "plane",
		Positions: []mgl32.Vec3{
			{-h, 0, -h}, {h, 0, -h}, {h, 0, h}, {-h, 0, h},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
	return NewModel(WithName("plane"), WithMeshes(mesh))
}

// UVSphere creates a latitude/longitude tessellated sphere centered at the origin.
// Pole rows produce degenerate triangles, which are kept so the index layout stays regular.
//
// Parameters:
//   - radius: the sphere radius
//   - segments: longitudinal subdivisions (minimum 3)
//   - rings: latitudinal subdivisions (minimum 2)
//
// Returns:
//   - Model: the sphere model
func UVSphere(radius float32, segments, rings int) Model {
	segments = max(segments, 3)
	rings = max(rings, 2)

	positions := make([]mgl32.Vec3, 0, (rings+1)*(segments+1))
	for r := 0; r <= rings; r++ {
		theta := math32.Pi * float32(r) / float32(rings)
		st, ct := math32.Sincos(theta)
		for s := 0; s <= segments; s++ {
			phi := 2 * math32.Pi * float32(s) / float32(segments)
			sp, cp := math32.Sincos(phi)
			positions = append(positions, mgl32.Vec3{radius * st * cp, radius * ct, radius * st * sp})
		}
	}

	indices := make([]uint32, 0, rings*segments*6)
	stride := uint32(segments + 1)
	for r := 0; r < rings; r++ {
		for s := 0; s < segments; s++ {
			a := uint32(r)*stride + uint32(s)
			b := a + stride
			indices = append(indices, a, b, a+1, a+1, b, b+1)
		}
	}

	mesh := ImportedMesh{Name: "sphere", Positions: positions, Indices: indices}
	return NewModel(WithName("sphere"), WithMeshes(mesh))
}

// Merge combines several models into one multi-mesh model, preserving mesh order.
//
// Parameters:
//   - name: the combined model name
//   - models: the models to merge
//
// Returns:
//   - Model: the merged model
func Merge(name string, models ...Model) Model {
	var meshes []ImportedMesh
	for _, m := range models {
		meshes = append(meshes, m.Meshes()...)
	}
	return NewModel(WithName(name), WithMeshes(meshes...))
}
