package engine

import (
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/change"
	"github.com/Carmen-Shannon/oxy-trace/engine/environment"
	"github.com/Carmen-Shannon/oxy-trace/engine/input"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/params"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables performance profiling output.
//
// Parameters:
//   - enabled: if true, enables performance profiling
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithProfiler replaces the default one-second profiler.
//
// Parameters:
//   - p: the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiler(p *profiler.Profiler) EngineBuilderOption {
	return func(e *engine) {
		e.profiler = p
	}
}

// WithWindow sets the window the engine polls for events and sizes its targets from.
//
// Parameters:
//   - w: a pre-configured Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithBackend sets the allocator for every GPU resource the engine owns. A backend that also
// implements Presenter (renderer.Renderer) has its frame and present calls driven by the engine.
//
// Parameters:
//   - b: the resource backend
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithBackend(b resource.Backend) EngineBuilderOption {
	return func(e *engine) {
		e.backend = b
	}
}

// WithScene sets the scene whose BVH and camera the engine uses.
// The scene must allocate from the same backend as the engine.
//
// Parameters:
//   - s: the Scene
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithScene(s scene.Scene) EngineBuilderOption {
	return func(e *engine) {
		e.scene = s
	}
}

// WithEnvironment sets the environment map. It must allocate from the same backend as the
// engine. Defaults to an empty environment that receives the placeholder on Init.
//
// Parameters:
//   - env: the Environment
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithEnvironment(env environment.Environment) EngineBuilderOption {
	return func(e *engine) {
		e.env = env
	}
}

// WithStage sets the Stage that renders each frame. Defaults to NopStage.
//
// Parameters:
//   - s: the stage
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithStage(s Stage) EngineBuilderOption {
	return func(e *engine) {
		if s != nil {
			e.stage = s
		}
	}
}

// WithParams sets the initial render parameters. Defaults to params.Defaults().
//
// Parameters:
//   - p: the parameters
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithParams(p params.RenderParameters) EngineBuilderOption {
	return func(e *engine) {
		e.params = p
	}
}

// WithMode sets the initial mode toggles.
//
// Parameters:
//   - m: the mode
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMode(m change.Mode) EngineBuilderOption {
	return func(e *engine) {
		e.mode = m
	}
}

// WithDetector replaces the default change detector.
//
// Parameters:
//   - d: the detector
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithDetector(d change.Detector) EngineBuilderOption {
	return func(e *engine) {
		e.detector = d
	}
}

// WithInputHandler replaces the default key bindings.
//
// Parameters:
//   - h: the input handler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithInputHandler(h input.Handler) EngineBuilderOption {
	return func(e *engine) {
		e.input = h
	}
}

// WithMetrics sets the prometheus collectors frames and resets are reported to.
//
// Parameters:
//   - m: the metrics, may be nil
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMetrics(m *metrics.Metrics) EngineBuilderOption {
	return func(e *engine) {
		e.metrics = m
	}
}

// WithRenderFrameLimit sets an optional frame rate cap in frames per second.
// Pass 0 to uncap the loop (default).
//
// Parameters:
//   - fps: maximum frames per second (0 = uncapped)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderFrameLimit(fps float64) EngineBuilderOption {
	return func(e *engine) {
		if fps <= 0 {
			e.renderFrameLimit = 0
			return
		}
		e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
	}
}

// WithMaxFrames makes Run stop after n frames. Zero runs until quit.
//
// Parameters:
//   - n: the frame budget
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithMaxFrames(n uint64) EngineBuilderOption {
	return func(e *engine) {
		e.maxFrames = n
	}
}
