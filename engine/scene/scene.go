package scene

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/bvh"
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
	"github.com/Carmen-Shannon/oxy-trace/engine/loader"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var logger = log.New("scene")

// ErrNoModel is returned when a rebuild is requested without a geometry source.
var ErrNoModel = errors.New("scene has no model")

// ErrNoLoader is returned by ReloadFromPath when the scene was built without a Loader.
var ErrNoLoader = errors.New("scene has no loader")

const tracerName = "github.com/Carmen-Shannon/oxy-trace/engine/scene"

// scene is the implementation of the Scene interface.
type scene struct {
	mu *sync.Mutex

	name      string
	camera    camera.Camera
	model     model.Model
	transform mgl32.Mat4
	path      string
	stats     bvh.Stats

	resident  bvh.Resident
	builder   bvh.Builder
	extractor geometry.Extractor
	loader    loader.Loader
	metrics   *metrics.Metrics
	tracer    trace.Tracer

	leafMax  int
	validate bool
	released bool
}

// Scene owns the geometry the tracer traverses: the model and its world transform, the
// resident BVH buffers built from them and the camera looking at them.
// Thread-safe for concurrent access.
type Scene interface {
	// Name returns the scene's identifier.
	Name() string

	// Camera returns the scene's camera.
	Camera() camera.Camera

	// SetCamera replaces the scene's camera.
	//
	// Parameters:
	//   - cam: the new camera
	SetCamera(cam camera.Camera)

	// Model returns the geometry source of the installed BVH, or nil before the first successful rebuild.
	Model() model.Model

	// Transform returns the object-to-world matrix applied when the BVH is built.
	Transform() mgl32.Mat4

	// SetTransform replaces the object-to-world matrix. It takes effect on the next rebuild.
	//
	// Parameters:
	//   - m: the new transform
	SetTransform(m mgl32.Mat4)

	// Resident returns the GPU-resident BVH buffers.
	Resident() bvh.Resident

	// Stats returns the shape of the installed hierarchy.
	Stats() bvh.Stats

	// Rebuild extracts world-space triangles from m, builds a hierarchy and uploads it.
	// On any failure the previously installed BVH, model and stats are kept.
	//
	// Parameters:
	//   - ctx: cancels the rebuild between phases and carries the parent span
	//   - m: the new geometry source
	//
	// Returns:
	//   - error: nil if the new hierarchy is installed
	Rebuild(ctx context.Context, m model.Model) error

	// ReloadFromPath loads a model file through the Loader, bypassing its cache, and rebuilds from it.
	// The path is remembered for Reload.
	//
	// Parameters:
	//   - ctx: cancels the rebuild and carries the parent span
	//   - path: the model file
	//
	// Returns:
	//   - error: nil if the new hierarchy is installed
	ReloadFromPath(ctx context.Context, path string) error

	// Reload re-reads the last path given to ReloadFromPath, or rebuilds the current model when
	// the geometry did not come from a file.
	//
	// Parameters:
	//   - ctx: cancels the rebuild and carries the parent span
	//
	// Returns:
	//   - error: nil if the new hierarchy is installed
	Reload(ctx context.Context) error

	// Release frees the resident BVH buffers. It is safe to call more than once.
	Release()
}

var _ Scene = &scene{}

// NewScene creates a new Scene whose BVH buffers are allocated from backend.
// The default transform is geometry.DefaultTransform and the default leaf limit bvh.DefaultLeafMax.
//
// Parameters:
//   - backend: the allocator for the resident BVH buffers
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(backend resource.Backend, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:        &sync.Mutex{},
		name:      "scene",
		transform: geometry.DefaultTransform(),
		resident:  bvh.NewResident(backend),
		leafMax:   bvh.DefaultLeafMax,
		validate:  true,
	}
	for _, opt := range options {
		opt(s)
	}

	if s.camera == nil {
		s.camera = camera.NewCamera()
	}
	if s.extractor == nil {
		s.extractor = geometry.NewExtractor()
	}
	if s.tracer == nil {
		s.tracer = otel.Tracer(tracerName)
	}
	s.builder = bvh.NewBuilder(bvh.WithLeafMax(s.leafMax))
	return s
}

func (s *scene) Name() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name
}

func (s *scene) Camera() camera.Camera {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.camera
}

func (s *scene) SetCamera(cam camera.Camera) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.camera = cam
}

func (s *scene) Model() model.Model {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.model
}

func (s *scene) Transform() mgl32.Mat4 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transform
}

func (s *scene) SetTransform(m mgl32.Mat4) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transform = m
}

func (s *scene) Resident() bvh.Resident {
	return s.resident
}

func (s *scene) Stats() bvh.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *scene) Rebuild(ctx context.Context, m model.Model) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rebuildLocked(ctx, m)
}

func (s *scene) ReloadFromPath(ctx context.Context, path string) error {
	if s.loader == nil {
		return ErrNoLoader
	}

	ctx, span := s.tracer.Start(ctx, "scene.ReloadFromPath",
		trace.WithAttributes(attribute.String("path", path)),
	)
	defer span.End()

	m, err := s.loader.Reload(path)
	if err != nil {
		s.metrics.ObserveReloadFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, "load failed")
		logger.Warningf("reload of %s failed, keeping current geometry: %v", path, err)
		return fmt.Errorf("failed to reload %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rebuildLocked(ctx, m); err != nil {
		s.metrics.ObserveReloadFailure()
		span.RecordError(err)
		span.SetStatus(codes.Error, "rebuild failed")
		return err
	}
	s.path = path
	return nil
}

func (s *scene) Reload(ctx context.Context) error {
	s.mu.Lock()
	path := s.path
	s.mu.Unlock()

	if path != "" && s.loader != nil {
		return s.ReloadFromPath(ctx, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.rebuildLocked(ctx, s.model); err != nil {
		s.metrics.ObserveReloadFailure()
		return err
	}
	return nil
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.released {
		return
	}
	s.released = true
	s.resident.Release()
}

// rebuildLocked runs the extract, build and upload phases. The caller must hold s.mu.
func (s *scene) rebuildLocked(ctx context.Context, m model.Model) (err error) {
	if m == nil {
		return ErrNoModel
	}

	ctx, span := s.tracer.Start(ctx, "scene.Rebuild",
		trace.WithAttributes(
			attribute.String("model", m.Name()),
			attribute.Int("leaf_max", s.leafMax),
		),
	)
	defer span.End()
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "rebuild failed")
			logger.Errorf("rebuild of %q failed, keeping previous bvh: %v", m.Name(), err)
		}
	}()

	if s.released {
		return fmt.Errorf("failed to rebuild %q: scene released", m.Name())
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 1: extract
	_, extractSpan := s.tracer.Start(ctx, "scene.extract")
	tris := s.extractor.Extract(m, s.transform)
	extractSpan.SetAttributes(attribute.Int("triangles", len(tris)))
	extractSpan.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 2: build
	_, buildSpan := s.tracer.Start(ctx, "scene.build")
	buildStart := time.Now()
	nodes := s.builder.Build(tris)
	buildTime := time.Since(buildStart)
	buildSpan.SetAttributes(attribute.Int("nodes", len(nodes)))
	if s.validate {
		if verr := bvh.Validate(nodes, tris, s.leafMax); verr != nil {
			buildSpan.RecordError(verr)
			buildSpan.SetStatus(codes.Error, "validation failed")
			buildSpan.End()
			return fmt.Errorf("failed to build bvh for %q: %w", m.Name(), verr)
		}
	}
	buildSpan.End()

	if err := ctx.Err(); err != nil {
		return err
	}

	// Phase 3: upload
	_, uploadSpan := s.tracer.Start(ctx, "scene.upload")
	uerr := s.resident.Replace(nodes, tris)
	if uerr != nil {
		uploadSpan.RecordError(uerr)
		uploadSpan.SetStatus(codes.Error, "upload failed")
	}
	uploadSpan.End()
	if uerr != nil {
		return uerr
	}
	s.metrics.ObserveBVH(buildTime, len(nodes), len(tris))

	s.model = m
	s.stats = bvh.ComputeStats(nodes)
	span.SetAttributes(
		attribute.Int("nodes", s.stats.NodeCount),
		attribute.Int("triangles", len(tris)),
		attribute.Int("max_depth", s.stats.MaxDepth),
	)
	logger.Infof("bvh for %q: %d triangles, %d nodes, %d leaves, depth %d (built in %s)",
		m.Name(), len(tris), s.stats.NodeCount, s.stats.LeafCount, s.stats.MaxDepth, buildTime)
	return nil
}
