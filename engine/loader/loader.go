package loader

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
)

var logger = log.New("loader")

// ErrUnsupportedFormat is returned when a model file has an extension no backend handles.
var ErrUnsupportedFormat = errors.New("unsupported model format")

// Format identifies the encoding of model data.
type Format int

const (
	// FormatOBJ is Wavefront OBJ text.
	FormatOBJ Format = iota
	// FormatGLTF is glTF 2.0 JSON.
	FormatGLTF
	// FormatGLB is binary glTF.
	FormatGLB
)

func (f Format) String() string {
	switch f {
	case FormatOBJ:
		return "obj"
	case FormatGLTF:
		return "gltf"
	case FormatGLB:
		return "glb"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// FormatFromPath maps a file extension to a Format.
//
// Parameters:
//   - path: the model file path
//
// Returns:
//   - Format: the detected format
//   - error: ErrUnsupportedFormat when the extension is unknown
func FormatFromPath(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".obj":
		return FormatOBJ, nil
	case ".gltf":
		return FormatGLTF, nil
	case ".glb":
		return FormatGLB, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// loader is the implementation of the Loader interface.
type loader struct {
	mu sync.RWMutex

	modelCache map[string]model.Model

	backends map[Format]loaderBackend
}

// Loader defines the public-facing interface for loading and caching 3D models.
// It abstracts the file format (OBJ, glTF, GLB) behind a generic backend and
// manages a cache of previously loaded models.
type Loader interface {
	// Load imports a model file and caches the result.
	// If the model is already cached (by file path), the cached version is returned.
	// The backend is selected based on the file extension (.obj → OBJ, .gltf/.glb → glTF).
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the loaded and cached model
	//   - error: error if loading fails
	Load(path string) (model.Model, error)

	// Reload imports a model file bypassing the cache and replaces the cached entry on success.
	//
	// Parameters:
	//   - path: the file path to the model file
	//
	// Returns:
	//   - model.Model: the freshly loaded model
	//   - error: error if loading fails; the cached entry is left untouched
	Reload(path string) (model.Model, error)

	// LoadReader imports a model from a reader stream and caches it by the given name.
	//
	// Parameters:
	//   - name: the cache key for the loaded model
	//   - r: the reader providing model data
	//   - format: the encoding of the stream
	//
	// Returns:
	//   - model.Model: the loaded model
	//   - error: error if loading fails
	LoadReader(name string, r io.Reader, format Format) (model.Model, error)

	// Get retrieves a cached model by name. Returns nil if not found.
	//
	// Parameters:
	//   - name: the cache key to look up
	//
	// Returns:
	//   - model.Model: the cached model or nil
	Get(name string) model.Model

	// Models returns the full model cache.
	//
	// Returns:
	//   - map[string]model.Model: all cached models keyed by name
	Models() map[string]model.Model
}

var _ Loader = &loader{}

// NewLoader creates a new Loader with the OBJ and glTF backends registered.
//
// Parameters:
//   - options: a variadic list of LoaderBuilderOption functions to configure the Loader
//
// Returns:
//   - Loader: a new instance of Loader
func NewLoader(options ...LoaderBuilderOption) Loader {
	gltf := newGLTFLoaderBackend()
	l := &loader{
		mu:         sync.RWMutex{},
		modelCache: make(map[string]model.Model),
		backends: map[Format]loaderBackend{
			FormatOBJ:  newOBJLoaderBackend(),
			FormatGLTF: gltf,
			FormatGLB:  gltf,
		},
	}

	for _, option := range options {
		option(l)
	}
	return l
}

func (l *loader) Load(path string) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[path]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	return l.Reload(path)
}

func (l *loader) Reload(path string) (model.Model, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	imported, err := l.backends[format].Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	m := model.FromImported(imported)
	logger.Infof("loaded %s (%s): %d meshes, %d triangles", path, format, m.MeshCount(), m.TriangleCount())

	l.mu.Lock()
	l.modelCache[path] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) LoadReader(name string, r io.Reader, format Format) (model.Model, error) {
	l.mu.RLock()
	if cached, ok := l.modelCache[name]; ok {
		l.mu.RUnlock()
		return cached, nil
	}
	l.mu.RUnlock()

	backend, ok := l.backends[format]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}

	imported, err := backend.LoadReader(r, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load from reader %q: %w", name, err)
	}
	if imported.Name == "" || imported.Name == "obj_model" || imported.Name == "unnamed_model" {
		imported.Name = name
	}

	m := model.FromImported(imported)
	logger.Debugf("loaded %q from reader (%s): %d triangles", name, format, m.TriangleCount())

	l.mu.Lock()
	l.modelCache[name] = m
	l.mu.Unlock()

	return m, nil
}

func (l *loader) Get(name string) model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.modelCache[name]
}

func (l *loader) Models() map[string]model.Model {
	l.mu.RLock()
	defer l.mu.RUnlock()

	result := make(map[string]model.Model, len(l.modelCache))
	for k, v := range l.modelCache {
		result[k] = v
	}
	return result
}
