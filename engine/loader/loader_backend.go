package loader

import (
	"io"

	"github.com/Carmen-Shannon/oxy-trace/engine/model"
)

// loaderBackend defines the generic interface for loading models from files or streams.
// Concrete implementations (gltfLoaderBackend, objLoaderBackend) handle format-specific details.
type loaderBackend interface {
	// Load imports the geometry of the file at path.
	//
	// Parameters:
	//   - path: the file path to load
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	Load(path string) (*model.ImportedModel, error)

	// LoadReader imports a model from a reader stream.
	//
	// Parameters:
	//   - r: the reader providing model data
	//   - format: the encoding of the stream
	//
	// Returns:
	//   - *model.ImportedModel: the imported model data
	//   - error: error if loading fails
	LoadReader(r io.Reader, format Format) (*model.ImportedModel, error)
}
