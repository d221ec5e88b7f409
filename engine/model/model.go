package model

import (
	"github.com/go-gl/mathgl/mgl32"
)

// model is the implementation of the Model interface.
type model struct {
	name   string
	meshes []ImportedMesh
}

// Model defines the geometry source interface.
// A Model exposes per-submesh vertex positions and index lists. It performs no file I/O;
// loaders and the procedural generators in this package produce Models.
type Model interface {
	// Name retrieves the model identifier.
	//
	// Returns:
	//   - string: the model name
	Name() string

	// Meshes retrieves the submeshes of the model in their stored order.
	// The returned slice must not be modified.
	//
	// Returns:
	//   - []ImportedMesh: the submeshes
	Meshes() []ImportedMesh

	// MeshCount returns the number of submeshes.
	//
	// Returns:
	//   - int: the submesh count
	MeshCount() int

	// TriangleCount returns the total number of complete index triples across all submeshes.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// Bounds returns the object-space bounding box enclosing every submesh.
	// A model without positions returns zero bounds.
	//
	// Returns:
	//   - mgl32.Vec3: the minimum corner
	//   - mgl32.Vec3: the maximum corner
	Bounds() (mgl32.Vec3, mgl32.Vec3)
}

var _ Model = &model{}

// NewModel creates a new Model with the provided options.
//
// Parameters:
//   - options: functional options to configure the model
//
// Returns:
//   - Model: the newly created model
func NewModel(options ...ModelBuilderOption) Model {
	m := &model{
		name: "model",
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// FromImported wraps an ImportedModel as a Model, recomputing mesh bounds.
//
// Parameters:
//   - imported: the imported geometry
//
// Returns:
//   - Model: the wrapped model
func FromImported(imported *ImportedModel) Model {
	return NewModel(WithName(imported.Name), WithMeshes(imported.Meshes...))
}

func (m *model) Name() string {
	return m.name
}

func (m *model) Meshes() []ImportedMesh {
	return m.meshes
}

func (m *model) MeshCount() int {
	return len(m.meshes)
}

func (m *model) TriangleCount() int {
	n := 0
	for i := range m.meshes {
		n += m.meshes[i].TriangleCount()
	}
	return n
}

func (m *model) Bounds() (mgl32.Vec3, mgl32.Vec3) {
	var bMin, bMax mgl32.Vec3
	first := true
	for i := range m.meshes {
		mesh := &m.meshes[i]
		if len(mesh.Positions) == 0 {
			continue
		}
		if first {
			bMin, bMax = mesh.BoundingMin, mesh.BoundingMax
			first = false
			continue
		}
		for a := range 3 {
			bMin[a] = min(bMin[a], mesh.BoundingMin[a])
			bMax[a] = max(bMax[a], mesh.BoundingMax[a])
		}
	}
	return bMin, bMax
}
