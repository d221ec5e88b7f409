package environment

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
)

var logger = log.New("environment")

var (
	// ErrNoPath is returned by Reload when no map has been loaded from a file.
	ErrNoPath = errors.New("no environment map path to reload")

	// ErrReleased is returned when a released Environment is asked to install a map.
	ErrReleased = errors.New("environment released")
)

// environment is the implementation of the Environment interface.
type environment struct {
	mu *sync.Mutex

	buffers     resource.BufferSet
	metrics     *metrics.Metrics
	maxFaceSize int

	path        string
	faceSize    int
	placeholder bool
	released    bool
}

// Environment owns the storage buffer of the cube map the stage samples for sky lighting.
// Every install creates the new buffer before releasing the old one, so a failed load
// leaves the previous map in place.
type Environment interface {
	// Replace installs the given faces.
	//
	// Parameters:
	//   - faces: the six cube faces
	//
	// Returns:
	//   - error: nil if the new map is installed
	Replace(faces *Faces) error

	// LoadFromPath decodes a cube cross image and installs it. On success the path is
	// remembered for Reload; on failure the previous map and path are kept.
	//
	// Parameters:
	//   - path: the cross image file
	//
	// Returns:
	//   - error: nil if the new map is installed
	LoadFromPath(path string) error

	// Reload loads the remembered path again.
	//
	// Returns:
	//   - error: ErrNoPath if nothing was loaded from a file, otherwise as LoadFromPath
	Reload() error

	// UsePlaceholder installs the 1x1 neutral sky.
	//
	// Returns:
	//   - error: nil if the placeholder is installed
	UsePlaceholder() error

	// Buffer returns the storage buffer, or nil before the first install.
	//
	// Returns:
	//   - resource.Buffer: the environment buffer
	Buffer() resource.Buffer

	// FaceSize returns the face edge length in texels of the installed map, 0 if none.
	//
	// Returns:
	//   - int: the face size
	FaceSize() int

	// Path returns the file of the installed map, empty for the placeholder or in-memory faces.
	//
	// Returns:
	//   - string: the path
	Path() string

	// IsPlaceholder reports whether the installed map is the built-in placeholder.
	//
	// Returns:
	//   - bool: true for the placeholder
	IsPlaceholder() bool

	// Release frees the buffer. It is safe to call more than once.
	Release()
}

var _ Environment = &environment{}

// NewEnvironment creates an Environment with no map installed.
//
// Parameters:
//   - backend: the allocator for the storage buffer
//   - options: optional EnvironmentBuilderOption functions
//
// Returns:
//   - Environment: the newly created environment
func NewEnvironment(backend resource.Backend, options ...EnvironmentBuilderOption) Environment {
	e := &environment{
		mu:      &sync.Mutex{},
		buffers: resource.NewBufferSet(backend, "environment"),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *environment) Replace(faces *Faces) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.installLocked(faces, false); err != nil {
		return err
	}
	e.path = ""
	return nil
}

func (e *environment) LoadFromPath(path string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loadLocked(path)
}

func (e *environment) Reload() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.path == "" {
		return ErrNoPath
	}
	return e.loadLocked(e.path)
}

func (e *environment) UsePlaceholder() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.installLocked(Placeholder(), true); err != nil {
		return err
	}
	e.path = ""
	return nil
}

func (e *environment) loadLocked(path string) error {
	faces, err := LoadCross(path, e.maxFaceSize)
	if err == nil {
		err = e.installLocked(faces, false)
	}
	if err != nil {
		e.metrics.ObserveEnvironmentReloadFailure()
		return err
	}
	e.path = path
	logger.Infof("environment map %q installed (%d texel faces)", path, faces.Size)
	return nil
}

func (e *environment) installLocked(faces *Faces, placeholder bool) error {
	if e.released {
		return ErrReleased
	}
	if err := faces.Validate(); err != nil {
		return fmt.Errorf("failed to install environment map: %w", err)
	}

	err := e.buffers.Replace(resource.BufferDescriptor{
		Label:    "environment",
		Usage:    resource.BufferUsageStorage | resource.BufferUsageCopyDst,
		Contents: MarshalFaces(faces, placeholder),
	})
	if err != nil {
		return fmt.Errorf("failed to upload environment map (%d texel faces): %w", faces.Size, err)
	}

	e.faceSize = faces.Size
	e.placeholder = placeholder
	e.metrics.ObserveEnvironment(faces.Size)
	return nil
}

func (e *environment) Buffer() resource.Buffer {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.buffers.Buffer(0)
}

func (e *environment) FaceSize() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.faceSize
}

func (e *environment) Path() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.path
}

func (e *environment) IsPlaceholder() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.placeholder
}

func (e *environment) Release() {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.buffers.Release()
	e.faceSize = 0
	e.released = true
}
