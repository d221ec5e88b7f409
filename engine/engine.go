package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/accumulation"
	"github.com/Carmen-Shannon/oxy-trace/engine/change"
	"github.com/Carmen-Shannon/oxy-trace/engine/environment"
	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
	"github.com/Carmen-Shannon/oxy-trace/engine/input"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/params"
	"github.com/Carmen-Shannon/oxy-trace/engine/profiler"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
)

var logger = log.New("engine")

var (
	// ErrNoBackend is returned by Init when the engine was built without a resource backend.
	ErrNoBackend = errors.New("engine has no resource backend")

	// ErrNoWindow is returned by Init when the engine was built without a window.
	ErrNoWindow = errors.New("engine has no window")

	// ErrReleased is returned when a released engine is initialized or stepped.
	ErrReleased = errors.New("engine released")
)

// Presenter is implemented by backends that own a swapchain, such as renderer.Renderer.
// Backends without one (resource.MemoryBackend) skip the present calls.
type Presenter interface {
	BeginFrame() error
	EndFrame()
	Present()
	Resize(width, height int)
}

// Stats is a snapshot of the engine's frame and reset counters.
type Stats struct {
	Frames         uint64
	Skipped        uint64
	Resets         uint64
	ResetsByReason map[string]uint64
	FrameIndex     uint32
	SPP            int
	Exposure       float32
	Mode           change.Mode
}

// engine implements the Engine interface.
// Frame is single threaded; Quit and Stats may be called from other goroutines.
type engine struct {
	mu *sync.Mutex

	window    window.Window
	backend   resource.Backend
	presenter Presenter
	scene     scene.Scene
	env       environment.Environment
	stage     Stage
	input     input.Handler

	accum      accumulation.Buffer
	gbuffer    accumulation.GBuffer
	frameState *frame.State
	detector   change.Detector
	uniform    resource.Buffer

	params params.RenderParameters
	mode   change.Mode

	pendingUserReset   bool
	pendingGeometry    bool
	pendingEnvironment bool
	cursorCaptured     bool

	// envRequested queues a load of envPath, or a reload of the current map when it is empty.
	envRequested bool
	envPath      string

	profiler         *profiler.Profiler
	profilingEnabled bool
	metrics          *metrics.Metrics

	renderCallback   func(deltaTime float32)
	renderFrameLimit time.Duration
	maxFrames        uint64

	frames         uint64
	skipped        uint64
	resets         uint64
	resetsByReason map[string]uint64

	initialized bool
	released    bool
	quitChannel chan struct{}
	quitOnce    sync.Once
	releaseOnce sync.Once
}

// Engine drives the progressive renderer: one Frame call drains window events, updates the
// camera, decides whether accumulated history is still valid, hands the frame to the Stage and
// advances the accumulation ping-pong.
type Engine interface {
	// Init allocates the accumulation history, G-buffer and frame uniform at the window size and
	// primes the frame state so the first frame has no camera motion. Frame and Run call it on
	// first use.
	//
	// Returns:
	//   - error: error if a required dependency is missing or allocation fails
	Init() error

	// Frame runs one iteration of the frame loop.
	//
	// Parameters:
	//   - dt: elapsed time since the last frame in seconds
	//
	// Returns:
	//   - error: error if allocation, clearing or the stage failed
	Frame(dt float32) error

	// Run calls Frame until the window closes, Quit is called, the frame limit is reached or a
	// frame fails. A panic inside a frame is recovered, logged and turned into an error.
	//
	// Returns:
	//   - error: the error that stopped the loop, nil on a normal quit
	Run() error

	// Quit signals the frame loop to stop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()

	// Done returns a channel that is closed once Quit has been called.
	Done() <-chan struct{}

	// Release frees every GPU resource the engine and its scene own. It is idempotent.
	Release()

	// Window returns the underlying window.
	Window() window.Window

	// Scene returns the scene whose BVH is traced.
	Scene() scene.Scene

	// Environment returns the cube map the stage samples for sky lighting.
	Environment() environment.Environment

	// LoadEnvironment queues an environment map load for the next frame. A successful load
	// resets accumulation; a failed one is logged and keeps the previous map.
	//
	// Parameters:
	//   - path: the cross image to load, or empty to reload the current file
	LoadEnvironment(path string)

	// Accumulation returns the history ping-pong buffer.
	Accumulation() accumulation.Buffer

	// GBuffer returns the position and normal targets.
	GBuffer() accumulation.GBuffer

	// FrameState returns the camera matrices and jitter of the current frame.
	FrameState() *frame.State

	// Params returns a copy of the current render parameters.
	Params() params.RenderParameters

	// SetParams replaces the render parameters. Any drift resets accumulation on the next frame.
	//
	// Parameters:
	//   - p: the new parameters, clamped to supported ranges
	SetParams(p params.RenderParameters)

	// Mode returns the current mode toggles.
	Mode() change.Mode

	// SetMode replaces the mode toggles. A change resets accumulation on the next frame.
	//
	// Parameters:
	//   - m: the new mode
	SetMode(m change.Mode)

	// RequestReset discards accumulated history on the next frame.
	RequestReset()

	// Stats returns the frame and reset counters.
	Stats() Stats

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetRenderCallback registers the function called after each frame.
	//
	// Parameters:
	//   - callback: function called with the frame's delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional frame rate cap in frames per second.
	// Pass 0 to uncap the loop (default).
	//
	// Parameters:
	//   - fps: maximum frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// A window and a resource backend are required before Init; a scene and an environment over
// the backend and a NopStage are created when omitted. Ray mode starts enabled with the BVH disabled.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:             &sync.Mutex{},
		stage:          NopStage{},
		frameState:     frame.NewState(),
		params:         params.Defaults(),
		mode:           change.Mode{RayMode: true},
		profiler:       profiler.NewProfiler(),
		resetsByReason: make(map[string]uint64),
		quitChannel:    make(chan struct{}),
	}

	for _, opt := range options {
		opt(e)
	}

	if e.detector == nil {
		e.detector = change.NewDetector()
	}
	if e.backend != nil {
		if p, ok := e.backend.(Presenter); ok {
			e.presenter = p
		}
		if e.scene == nil {
			e.scene = scene.NewScene(e.backend, scene.WithMetrics(e.metrics))
		}
		if e.env == nil {
			e.env = environment.NewEnvironment(e.backend, environment.WithMetrics(e.metrics))
		}
		e.accum = accumulation.NewBuffer(e.backend)
		e.gbuffer = accumulation.NewGBuffer(e.backend)
	}
	if e.scene != nil && e.input == nil {
		e.input = input.NewHandler(e.scene.Camera())
	}
	e.params.Clamp()

	return e
}

func (e *engine) Init() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.initLocked()
}

func (e *engine) initLocked() error {
	if e.released {
		return ErrReleased
	}
	if e.initialized {
		return nil
	}
	if e.backend == nil {
		return ErrNoBackend
	}
	if e.window == nil {
		return ErrNoWindow
	}

	if err := verifyGPULayouts(); err != nil {
		return err
	}

	w, h := e.window.Width(), e.window.Height()
	if err := e.resizeLocked(w, h); err != nil {
		return err
	}

	uniform, err := e.backend.CreateBuffer(resource.BufferDescriptor{
		Label: "frame_uniform",
		Usage: resource.BufferUsageUniform | resource.BufferUsageCopyDst,
		Size:  frame.GPUFrameUniformSize,
	})
	if err != nil {
		return fmt.Errorf("failed to create frame uniform: %w", err)
	}
	e.uniform = uniform

	if e.env.Buffer() == nil {
		if err := e.env.UsePlaceholder(); err != nil {
			return fmt.Errorf("failed to create placeholder environment: %w", err)
		}
	}

	cam := e.scene.Camera()
	cam.Update()
	e.frameState.Prime(cam.ViewMatrix(), cam.ProjectionMatrix(), cam.Position())
	e.detector.Forget()

	e.window.SetCursorCaptured(!e.input.PointerMode())
	e.cursorCaptured = !e.input.PointerMode()

	e.initialized = true
	logger.Noticef("engine ready at %dx%d (ray mode %t, bvh %t, spp %d)", w, h, e.mode.RayMode, e.mode.UseBVH, e.params.SPP)
	return nil
}

func (e *engine) Frame(dt float32) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.initLocked(); err != nil {
		return err
	}
	start := time.Now()

	// 1. Events and actions.
	in := e.input.Process(e.window.PollEvents(), e.params.SPP)
	if in.Quit {
		e.signalQuit()
		return nil
	}
	if in.Resized {
		if err := e.resizeLocked(in.Width, in.Height); err != nil {
			return err
		}
	}
	e.applyIntent(in)
	if captured := !e.input.PointerMode(); captured != e.cursorCaptured {
		e.window.SetCursorCaptured(captured)
		e.cursorCaptured = captured
	}

	// 2. Camera.
	e.input.Move(dt)
	cam := e.scene.Camera()
	cam.Update()

	// 3. Frame state.
	e.frameState.BeginFrame(cam.ViewMatrix(), cam.ProjectionMatrix(), cam.Position())

	// 4. Motion and jitter.
	e.params.AdvanceOrbit(dt)
	e.frameState.UpdateJitter(e.accum.FrameIndex(), e.params.JitterEnabled, e.frameState.IsMoving(),
		e.params.JitterStillScale, e.params.JitterMovingScale)

	// 5. Change detection.
	decision := e.detector.Evaluate(change.Observation{
		Mode:                e.mode,
		Params:              e.params,
		CameraMotion:        e.frameState.CameraMotion(),
		UserReset:           e.pendingUserReset,
		GeometryReloaded:    e.pendingGeometry,
		EnvironmentReloaded: e.pendingEnvironment,
	})
	e.pendingUserReset = false
	e.pendingGeometry = false
	e.pendingEnvironment = false
	if decision.Reset() {
		if err := e.accum.Reset(); err != nil {
			return fmt.Errorf("failed to reset accumulation: %w", err)
		}
		e.recordReset(decision)
	}

	// 6. Uniform and stage. A frame the presenter refused leaves history and
	// previous camera state untouched.
	rendered, err := e.renderLocked(dt)
	if err != nil {
		return err
	}
	if !rendered {
		e.skipped++
		return nil
	}

	// 7. Ping-pong.
	if e.mode.RayMode {
		e.accum.SwapAfterFrame()
	}

	// 8. Commit.
	e.frameState.EndFrame()
	e.frames++
	e.metrics.ObserveFrame(time.Since(start))
	e.metrics.SetAccumulationFrame(e.accum.FrameIndex())
	if e.profilingEnabled && e.profiler != nil {
		e.profiler.Tick(e.accum.FrameIndex())
	}
	return nil
}

// applyIntent folds the frame's input actions into modes, parameters and pending reset signals.
func (e *engine) applyIntent(in input.Intent) {
	if in.ToggleRayMode {
		e.mode.RayMode = !e.mode.RayMode
		logger.Infof("ray mode %t", e.mode.RayMode)
	}
	if in.ToggleBVH {
		e.mode.UseBVH = !e.mode.UseBVH
		logger.Infof("bvh %t", e.mode.UseBVH)
	}
	if in.ToggleMotion {
		e.mode.ShowMotion = !e.mode.ShowMotion
		logger.Infof("motion debug %t", e.mode.ShowMotion)
	}
	if in.Reset {
		e.pendingUserReset = true
	}
	if in.SPPChanged {
		e.params.SPP = in.SPP
		logger.Infof("spp %d", e.params.SPP)
	}
	e.params.Exposure = in.ApplyExposure(e.params.Exposure)
	e.params.Clamp()

	if in.ReloadGeometry {
		if err := e.scene.Reload(context.Background()); err != nil {
			logger.Errorf("geometry reload failed, keeping previous bvh: %v", err)
		} else {
			e.pendingGeometry = true
		}
	}

	if in.ReloadEnvironment || e.envRequested {
		e.loadEnvironmentLocked()
	}
}

// loadEnvironmentLocked performs the queued environment load, or a reload of the current file.
func (e *engine) loadEnvironmentLocked() {
	path := e.envPath
	e.envRequested = false
	e.envPath = ""

	var err error
	if path == "" {
		err = e.env.Reload()
	} else {
		err = e.env.LoadFromPath(path)
	}
	if err != nil {
		logger.Errorf("environment load failed, keeping previous map: %v", err)
		return
	}
	e.pendingEnvironment = true
}

// recordReset logs and counts the reasons of a reset.
func (e *engine) recordReset(d change.Decision) {
	logger.Infof("reset due to %s", d)
	if len(d.ChangedFields) > 0 {
		logger.Debugf("changed params: %v", d.ChangedFields)
	}

	names := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		names[i] = r.String()
		e.resetsByReason[names[i]]++
	}
	e.resets++
	e.metrics.ObserveReset(names)
}

// renderLocked writes the frame uniform and runs the stage inside the presenter's frame.
// It reports false when the presenter could not begin a frame and the stage did not run.
func (e *engine) renderLocked(dt float32) (bool, error) {
	resident := e.scene.Resident().Snapshot()
	frameIndex := e.accum.FrameIndex()

	u := frame.NewGPUFrameUniform(e.frameState, frameIndex)
	u.NodeCount = uint32(resident.NodeCount)
	u.TriCount = uint32(resident.TriangleCount)
	u.SPP = uint32(e.params.SPP)
	u.Exposure = e.params.Exposure
	u.MotionScale = e.params.MotionScale
	u.Flags = modeFlags(e.mode)
	if err := e.backend.WriteBuffer(e.uniform, 0, u.Marshal()); err != nil {
		return false, fmt.Errorf("failed to write frame uniform: %w", err)
	}

	ctx := FrameContext{
		Width:          e.accum.Width(),
		Height:         e.accum.Height(),
		ReadTex:        e.accum.ReadTex(),
		WriteTex:       e.accum.WriteTex(),
		MotionTex:      e.accum.MotionTex(),
		GBuffer:        e.gbuffer,
		NodeBuffer:     resident.NodeBuffer,
		TriangleBuffer: resident.TriangleBuffer,
		NodeCount:      resident.NodeCount,
		TriangleCount:  resident.TriangleCount,
		EnvBuffer:      e.env.Buffer(),
		EnvFaceSize:    e.env.FaceSize(),
		Uniform:        e.uniform,
		FrameUniform:   u,
		Params:         e.params,
		Mode:           e.mode,
		Jitter:         e.frameState.Jitter(),
		FrameIndex:     frameIndex,
		DeltaTime:      dt,
	}

	if e.presenter != nil {
		if err := e.presenter.BeginFrame(); err != nil {
			logger.Warningf("skipping frame: %v", err)
			return false, nil
		}
	}
	err := e.stage.Render(ctx)
	if e.presenter != nil {
		e.presenter.EndFrame()
		e.presenter.Present()
	}
	if err != nil {
		return false, fmt.Errorf("stage failed at frame %d: %w", frameIndex, err)
	}
	return true, nil
}

// resizeLocked resizes the history, G-buffer, camera and surface together.
func (e *engine) resizeLocked(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}
	if err := e.accum.Recreate(width, height); err != nil {
		return fmt.Errorf("failed to resize accumulation to %dx%d: %w", width, height, err)
	}
	if err := e.gbuffer.Recreate(width, height); err != nil {
		return fmt.Errorf("failed to resize gbuffer to %dx%d: %w", width, height, err)
	}
	e.scene.Camera().SetAspect(float32(width) / float32(height))
	if e.presenter != nil {
		e.presenter.Resize(width, height)
	}
	logger.Debugf("resized to %dx%d", width, height)
	return nil
}

func modeFlags(m change.Mode) uint32 {
	var flags uint32
	if m.RayMode {
		flags |= frame.FlagRayMode
	}
	if m.UseBVH {
		flags |= frame.FlagUseBVH
	}
	if m.ShowMotion {
		flags |= frame.FlagShowMotion
	}
	return flags
}

func (e *engine) Run() (err error) {
	if err := e.Init(); err != nil {
		return err
	}

	// Recover from panics inside a frame to tear down cleanly instead of crashing the process.
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("frame loop recovered from panic: %v", r)
			err = fmt.Errorf("frame loop panicked: %v", r)
			e.signalQuit()
		}
	}()

	lastFrame := time.Now()
	for {
		select {
		case <-e.quitChannel:
			return nil
		default:
		}
		if !e.window.IsRunning() {
			e.signalQuit()
			return nil
		}

		now := time.Now()
		dt := float32(now.Sub(lastFrame).Seconds())
		lastFrame = now

		if err := e.Frame(dt); err != nil {
			logger.Errorf("frame failed: %v", err)
			e.signalQuit()
			return err
		}

		if e.renderCallback != nil {
			e.renderCallback(dt)
		}

		if e.maxFrames > 0 && e.Stats().Frames >= e.maxFrames {
			e.signalQuit()
			return nil
		}

		// Frame rate limiting
		if e.renderFrameLimit > 0 {
			elapsed := time.Since(now)
			if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
				time.Sleep(remaining)
			}
		}
	}
}

// Quit signals the frame loop to stop.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel exactly once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Done() <-chan struct{} {
	return e.quitChannel
}

func (e *engine) Release() {
	if e == nil {
		return
	}
	e.releaseOnce.Do(func() {
		e.signalQuit()

		e.mu.Lock()
		defer e.mu.Unlock()
		e.released = true
		if e.accum != nil {
			e.accum.Release()
		}
		if e.gbuffer != nil {
			e.gbuffer.Release()
		}
		if e.uniform != nil {
			e.uniform.Release()
			e.uniform = nil
		}
		if e.scene != nil {
			e.scene.Release()
		}
		if e.env != nil {
			e.env.Release()
		}
		logger.Debugf("released after %d frames", e.frames)
	})
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Scene() scene.Scene {
	return e.scene
}

func (e *engine) Environment() environment.Environment {
	return e.env
}

func (e *engine) LoadEnvironment(path string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.envRequested = true
	e.envPath = path
}

func (e *engine) Accumulation() accumulation.Buffer {
	return e.accum
}

func (e *engine) GBuffer() accumulation.GBuffer {
	return e.gbuffer
}

func (e *engine) FrameState() *frame.State {
	return e.frameState
}

func (e *engine) Params() params.RenderParameters {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.params
}

func (e *engine) SetParams(p params.RenderParameters) {
	e.mu.Lock()
	defer e.mu.Unlock()
	p.PointLightYaw = e.params.PointLightYaw
	p.Clamp()
	e.params = p
}

func (e *engine) Mode() change.Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

func (e *engine) SetMode(m change.Mode) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.mode = m
}

func (e *engine) RequestReset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pendingUserReset = true
}

func (e *engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	byReason := make(map[string]uint64, len(e.resetsByReason))
	for k, v := range e.resetsByReason {
		byReason[k] = v
	}
	var frameIndex uint32
	if e.accum != nil {
		frameIndex = e.accum.FrameIndex()
	}
	return Stats{
		Frames:         e.frames,
		Skipped:        e.skipped,
		Resets:         e.resets,
		ResetsByReason: byReason,
		FrameIndex:     frameIndex,
		SPP:            e.params.SPP,
		Exposure:       e.params.Exposure,
		Mode:           e.mode,
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

// SetRenderCallback registers the function called after each frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional frame rate cap.
// Pass 0 to uncap the loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}
