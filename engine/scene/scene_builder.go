package scene

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/camera"
	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
	"github.com/Carmen-Shannon/oxy-trace/engine/loader"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/go-gl/mathgl/mgl32"
	"go.opentelemetry.io/otel/trace"
)

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithName sets the scene's identifier.
//
// Parameters:
//   - name: the scene name
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithName(name string) SceneBuilderOption {
	return func(s *scene) {
		s.name = name
	}
}

// WithCamera sets the scene's camera. A default camera is created when omitted.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithCamera(cam camera.Camera) SceneBuilderOption {
	return func(s *scene) {
		s.camera = cam
	}
}

// WithTransform sets the object-to-world matrix applied when the BVH is built.
//
// Parameters:
//   - m: the transform
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTransform(m mgl32.Mat4) SceneBuilderOption {
	return func(s *scene) {
		s.transform = m
	}
}

// WithLeafMax sets the maximum number of triangles per BVH leaf.
//
// Parameters:
//   - n: the leaf limit (minimum 1)
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLeafMax(n int) SceneBuilderOption {
	return func(s *scene) {
		if n < 1 {
			n = 1
		}
		s.leafMax = n
	}
}

// WithLoader sets the Loader used by ReloadFromPath.
//
// Parameters:
//   - l: the model loader
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithLoader(l loader.Loader) SceneBuilderOption {
	return func(s *scene) {
		s.loader = l
	}
}

// WithExtractor replaces the triangle extractor.
//
// Parameters:
//   - e: the extractor
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithExtractor(e geometry.Extractor) SceneBuilderOption {
	return func(s *scene) {
		s.extractor = e
	}
}

// WithMetrics sets the collectors that rebuilds report to.
//
// Parameters:
//   - m: the metrics, may be nil
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithMetrics(m *metrics.Metrics) SceneBuilderOption {
	return func(s *scene) {
		s.metrics = m
	}
}

// WithTracer sets the tracer rebuild spans are started on. Defaults to the global otel provider.
//
// Parameters:
//   - t: the tracer
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithTracer(t trace.Tracer) SceneBuilderOption {
	return func(s *scene) {
		s.tracer = t
	}
}

// WithValidation enables or disables structural validation of each built hierarchy. Enabled by default.
//
// Parameters:
//   - enabled: whether to validate
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithValidation(enabled bool) SceneBuilderOption {
	return func(s *scene) {
		s.validate = enabled
	}
}
