package model

// ModelBuilderOption is a functional option for configuring a Model via NewModel.
type ModelBuilderOption func(*model)

// WithName is an option builder that sets the name of the Model.
//
// Parameters:
//   - name: the model identifier
//
// Returns:
//   - ModelBuilderOption: a function that applies the name option to a model
func WithName(name string) ModelBuilderOption {
	return func(m *model) {
		m.name = name
	}
}

// WithMeshes is an option builder that appends submeshes to the Model.
// Bounding boxes are recomputed from positions so callers may leave them unset.
//
// Parameters:
//   - meshes: the submeshes to append, in order
//
// Returns:
//   - ModelBuilderOption: a function that applies the meshes option to a model
func WithMeshes(meshes ...ImportedMesh) ModelBuilderOption {
	return func(m *model) {
		for _, mesh := range meshes {
			mesh.UpdateBounds()
			m.meshes = append(m.meshes, mesh)
		}
	}
}
