package engine

import (
	"context"
	"encoding/binary"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/change"
	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
	"github.com/Carmen-Shannon/oxy-trace/engine/metrics"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/Carmen-Shannon/oxy-trace/engine/scene"
	"github.com/Carmen-Shannon/oxy-trace/engine/window"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

type testRig struct {
	backend *resource.MemoryBackend
	window  *window.ScriptedWindow
	scene   scene.Scene
	engine  Engine
}

func newRig(t *testing.T, options ...EngineBuilderOption) *testRig {
	t.Helper()
	r := &testRig{
		backend: resource.NewMemoryBackend(),
		window:  window.NewScriptedWindow(64, 32),
	}
	r.scene = scene.NewScene(r.backend)
	if err := r.scene.Rebuild(context.Background(), model.Cube(1)); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	opts := append([]EngineBuilderOption{
		WithBackend(r.backend),
		WithWindow(r.window),
		WithScene(r.scene),
	}, options...)
	r.engine = NewEngine(opts...)
	t.Cleanup(r.engine.Release)
	return r
}

func (r *testRig) frames(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		if err := r.engine.Frame(1.0 / 60); err != nil {
			t.Fatalf("Frame %d: %v", i, err)
		}
	}
}

func keyPress(key uint32) []window.Event {
	return []window.Event{
		{Type: window.EventKeyDown, Key: key},
		{Type: window.EventKeyUp, Key: key},
	}
}

func TestFirstFrameDoesNotReset(t *testing.T) {
	r := newRig(t)
	r.frames(t, 3)

	st := r.engine.Stats()
	if st.Frames != 3 || st.Resets != 0 {
		t.Fatalf("frames=%d resets=%d, want 3/0", st.Frames, st.Resets)
	}
	if st.FrameIndex != 3 {
		t.Errorf("frame index = %d, want 3", st.FrameIndex)
	}
}

func TestInitAllocatesAtWindowSize(t *testing.T) {
	r := newRig(t)
	if err := r.engine.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	acc := r.engine.Accumulation()
	if acc.Width() != 64 || acc.Height() != 32 {
		t.Errorf("accumulation = %dx%d, want 64x32", acc.Width(), acc.Height())
	}
	if got := r.scene.Camera().Aspect(); got != 2 {
		t.Errorf("aspect = %v, want 2", got)
	}
	if !r.window.CursorCaptured() {
		t.Error("cursor should be captured for mouse look")
	}
}

func TestRasterModeDoesNotAdvance(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.engine.SetMode(change.Mode{})
	r.frames(t, 3)

	st := r.engine.Stats()
	if st.FrameIndex != 0 {
		t.Errorf("frame index = %d, want 0 in raster mode", st.FrameIndex)
	}
	if st.ResetsByReason["mode"] != 1 {
		t.Errorf("mode resets = %d, want 1", st.ResetsByReason["mode"])
	}
}

func TestUserResetKey(t *testing.T) {
	r := newRig(t)
	r.frames(t, 3)
	r.window.Push(keyPress(common.KeyR)...)
	r.frames(t, 1)

	st := r.engine.Stats()
	if st.FrameIndex != 1 {
		t.Errorf("frame index = %d, want 1 after reset and swap", st.FrameIndex)
	}
	if st.ResetsByReason["user"] != 1 || st.Resets != 1 {
		t.Errorf("resets = %d %v", st.Resets, st.ResetsByReason)
	}
}

func TestRequestReset(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.engine.RequestReset()
	r.frames(t, 1)
	if r.engine.Stats().ResetsByReason["user"] != 1 {
		t.Error("RequestReset did not reset")
	}
}

func TestParamDriftResets(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)

	p := r.engine.Params()
	p.GlassIOR = 1.33
	r.engine.SetParams(p)
	r.frames(t, 1)

	if r.engine.Stats().ResetsByReason["params"] != 1 {
		t.Errorf("resets = %v, want one params reset", r.engine.Stats().ResetsByReason)
	}
}

func TestExposureKeysKeepHistory(t *testing.T) {
	r := newRig(t)
	r.frames(t, 1)
	r.window.Push(window.Event{Type: window.EventKeyDown, Key: common.KeyRightBracket})
	r.frames(t, 2)

	st := r.engine.Stats()
	if st.Exposure <= 1 {
		t.Fatalf("exposure = %v, want > 1", st.Exposure)
	}
	if st.Resets != 0 {
		t.Errorf("resets = %v, want none", st.ResetsByReason)
	}
	if st.FrameIndex != 3 {
		t.Errorf("frameIndex = %d, want 3", st.FrameIndex)
	}
}

func TestHotkeysChangeSPPAndModes(t *testing.T) {
	r := newRig(t)
	r.frames(t, 1)
	r.window.Push(keyPress(common.Key3)...)
	r.window.Push(keyPress(common.KeyF5)...)
	r.frames(t, 1)

	st := r.engine.Stats()
	if st.SPP != 8 {
		t.Errorf("spp = %d, want 8", st.SPP)
	}
	if !st.Mode.UseBVH {
		t.Error("F5 did not enable the bvh")
	}
	if st.ResetsByReason["mode"] != 1 || st.ResetsByReason["params"] != 1 {
		t.Errorf("resets = %v, want mode and params", st.ResetsByReason)
	}
}

func TestResizeRecreatesTargets(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.window.Push(window.Event{Type: window.EventResize, Width: 320, Height: 200})
	r.frames(t, 1)

	acc := r.engine.Accumulation()
	if acc.Width() != 320 || acc.Height() != 200 {
		t.Fatalf("accumulation = %dx%d, want 320x200", acc.Width(), acc.Height())
	}
	if g := r.engine.GBuffer(); g.Width() != 320 || g.Height() != 200 {
		t.Errorf("gbuffer = %dx%d, want 320x200", g.Width(), g.Height())
	}
	if got := r.scene.Camera().Aspect(); got != 1.6 {
		t.Errorf("aspect = %v, want 1.6", got)
	}
	if acc.FrameIndex() != 1 {
		t.Errorf("frame index = %d, want 1 after recreate", acc.FrameIndex())
	}
}

func TestGeometryReloadKey(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.window.Push(keyPress(common.KeyL)...)
	r.frames(t, 1)

	if r.engine.Stats().ResetsByReason["geometry"] != 1 {
		t.Errorf("resets = %v, want one geometry reset", r.engine.Stats().ResetsByReason)
	}
}

// writeCrossPNG writes a blank 4x3 cube cross with tile x tile faces.
func writeCrossPNG(t *testing.T, tile int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sky.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 4*tile, 3*tile))); err != nil {
		t.Fatalf("png.Encode: %v", err)
	}
	return path
}

func TestEnvironmentLoadAndReloadKey(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	env := r.engine.Environment()
	if !env.IsPlaceholder() || env.Buffer() == nil {
		t.Fatal("Init should install the placeholder environment")
	}

	path := writeCrossPNG(t, 2)
	r.engine.LoadEnvironment(path)
	r.frames(t, 1)

	st := r.engine.Stats()
	if st.ResetsByReason["environment"] != 1 || st.FrameIndex != 1 {
		t.Fatalf("resets=%v frame index=%d, want one environment reset and index 1", st.ResetsByReason, st.FrameIndex)
	}
	if env.Path() != path || env.FaceSize() != 2 {
		t.Fatalf("path=%q face size=%d", env.Path(), env.FaceSize())
	}

	r.window.Push(keyPress(common.KeyF4)...)
	r.frames(t, 1)
	if got := r.engine.Stats().ResetsByReason["environment"]; got != 2 {
		t.Errorf("environment resets = %d after F4, want 2", got)
	}
}

func TestFailedEnvironmentLoadKeepsHistory(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	prev := r.engine.Environment().Buffer()

	r.engine.LoadEnvironment(filepath.Join(t.TempDir(), "missing.png"))
	r.frames(t, 1)

	st := r.engine.Stats()
	if st.Resets != 0 || st.FrameIndex != 3 {
		t.Fatalf("resets=%d frame index=%d, want 0/3", st.Resets, st.FrameIndex)
	}
	if r.engine.Environment().Buffer() != prev {
		t.Error("failed load replaced the environment buffer")
	}

	// F4 without a loaded file has nothing to reload.
	r.window.Push(keyPress(common.KeyF4)...)
	r.frames(t, 1)
	if r.engine.Stats().Resets != 0 {
		t.Error("reload of the placeholder must not reset")
	}
}

func TestMouseLookResetsForCameraMotion(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.window.Push(
		window.Event{Type: window.EventMouseMove, X: 10, Y: 10},
		window.Event{Type: window.EventMouseMove, X: 40, Y: 10},
	)
	r.frames(t, 1)

	if r.engine.Stats().ResetsByReason["camera"] != 1 {
		t.Errorf("resets = %v, want one camera reset", r.engine.Stats().ResetsByReason)
	}
}

func TestEscapeQuits(t *testing.T) {
	r := newRig(t)
	r.frames(t, 1)
	r.window.Push(keyPress(common.KeyEsc)...)
	r.frames(t, 1)

	select {
	case <-r.engine.Done():
	default:
		t.Fatal("escape did not quit")
	}
	r.engine.Quit()
}

func TestRunPassesFrameContext(t *testing.T) {
	var got []FrameContext
	var r *testRig
	stage := StageFunc(func(ctx FrameContext) error {
		if ctx.ReadTex == ctx.WriteTex {
			t.Errorf("frame %d: read and write targets are the same", ctx.FrameIndex)
		}
		data := r.backend.BufferData(ctx.Uniform)
		if len(data) != frame.GPUFrameUniformSize {
			t.Fatalf("uniform size = %d", len(data))
		}
		if idx := binary.LittleEndian.Uint32(data[140:]); idx != ctx.FrameIndex {
			t.Errorf("uniform frame index = %d, want %d", idx, ctx.FrameIndex)
		}
		got = append(got, ctx)
		return nil
	})
	r = newRig(t, WithStage(stage), WithMaxFrames(5))

	if err := r.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(got) != 5 {
		t.Fatalf("stage ran %d times, want 5", len(got))
	}
	for i, ctx := range got {
		if ctx.FrameIndex != uint32(i) {
			t.Errorf("frame %d: index %d", i, ctx.FrameIndex)
		}
		if ctx.TriangleCount != 12 || ctx.NodeBuffer == nil {
			t.Errorf("frame %d: bvh not passed (%d triangles)", i, ctx.TriangleCount)
		}
		if ctx.EnvBuffer == nil || ctx.EnvFaceSize != 1 {
			t.Errorf("frame %d: placeholder environment not passed (face size %d)", i, ctx.EnvFaceSize)
		}
		if ctx.FrameUniform.Flags != frame.FlagRayMode {
			t.Errorf("frame %d: flags = %b", i, ctx.FrameUniform.Flags)
		}
	}
	if got[0].WriteTex != got[1].ReadTex {
		t.Error("frame 1 should read what frame 0 wrote")
	}
}

func TestRunStopsOnStageError(t *testing.T) {
	boom := errors.New("boom")
	r := newRig(t, WithStage(StageFunc(func(FrameContext) error { return boom })))
	if err := r.engine.Run(); !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
}

func TestRunRecoversPanic(t *testing.T) {
	r := newRig(t, WithStage(StageFunc(func(FrameContext) error { panic("stage exploded") })))
	err := r.engine.Run()
	if err == nil || !strings.Contains(err.Error(), "stage exploded") {
		t.Fatalf("err = %v, want recovered panic", err)
	}
	select {
	case <-r.engine.Done():
	default:
		t.Error("panic did not quit")
	}
}

func TestRunStopsWhenWindowCloses(t *testing.T) {
	r := newRig(t)
	r.window.Push(window.Event{Type: window.EventClose})
	if err := r.engine.Run(); err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestMissingDependencies(t *testing.T) {
	if err := NewEngine().Init(); !errors.Is(err, ErrNoBackend) {
		t.Errorf("err = %v, want ErrNoBackend", err)
	}
	e := NewEngine(WithBackend(resource.NewMemoryBackend()))
	defer e.Release()
	if err := e.Init(); !errors.Is(err, ErrNoWindow) {
		t.Errorf("err = %v, want ErrNoWindow", err)
	}
}

func TestReleaseFreesEverything(t *testing.T) {
	r := newRig(t)
	r.frames(t, 2)
	r.engine.Release()
	r.engine.Release()

	if r.backend.LiveBuffers() != 0 || r.backend.LiveTextures() != 0 {
		t.Errorf("live buffers=%d textures=%d after release", r.backend.LiveBuffers(), r.backend.LiveTextures())
	}
	if err := r.engine.Frame(0.016); !errors.Is(err, ErrReleased) {
		t.Errorf("err = %v, want ErrReleased", err)
	}
}

func TestFramesAreCounted(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := newRig(t, WithMetrics(metrics.New(reg)))
	r.frames(t, 3)

	expected := `
# HELP oxytrace_frames_total Total number of frames run by the engine
# TYPE oxytrace_frames_total counter
oxytrace_frames_total 3
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "oxytrace_frames_total"); err != nil {
		t.Error(err)
	}
}

// flakyPresenter accepts a fixed number of frames and then refuses to begin more.
type flakyPresenter struct {
	*resource.MemoryBackend
	accept  int
	begun   int
	ended   int
	resized int
}

func (p *flakyPresenter) BeginFrame() error {
	if p.begun >= p.accept {
		return errors.New("surface lost")
	}
	p.begun++
	return nil
}

func (p *flakyPresenter) EndFrame()       { p.ended++ }
func (p *flakyPresenter) Present()        {}
func (p *flakyPresenter) Resize(int, int) { p.resized++ }

func TestRefusedFramesDoNotAdvanceHistory(t *testing.T) {
	var rendered int
	stage := StageFunc(func(FrameContext) error {
		rendered++
		return nil
	})

	backend := resource.NewMemoryBackend()
	presenter := &flakyPresenter{MemoryBackend: backend, accept: 1}
	sc := scene.NewScene(backend)
	if err := sc.Rebuild(context.Background(), model.Cube(1)); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	e := NewEngine(
		WithBackend(presenter),
		WithWindow(window.NewScriptedWindow(64, 32)),
		WithScene(sc),
		WithStage(stage),
	)
	t.Cleanup(e.Release)

	for i := 0; i < 4; i++ {
		if err := e.Frame(1.0 / 60); err != nil {
			t.Fatalf("Frame %d: %v", i, err)
		}
	}

	if rendered != 1 {
		t.Fatalf("stage rendered %d frames, want 1", rendered)
	}
	if presenter.ended != 1 {
		t.Fatalf("EndFrame called %d times, want 1", presenter.ended)
	}
	if got := e.Accumulation().FrameIndex(); got != 1 {
		t.Fatalf("frameIndex = %d, want 1", got)
	}
	if got := e.Accumulation().WriteIndex(); got != 1 {
		t.Fatalf("writeIndex = %d, want 1", got)
	}
	st := e.Stats()
	if st.Frames != 1 || st.Skipped != 3 {
		t.Fatalf("frames = %d skipped = %d, want 1 and 3", st.Frames, st.Skipped)
	}

	presenter.accept = 2
	if err := e.Frame(1.0 / 60); err != nil {
		t.Fatalf("Frame: %v", err)
	}
	if rendered != 2 || e.Accumulation().FrameIndex() != 2 {
		t.Fatalf("rendered = %d frameIndex = %d after recovery, want 2 and 2", rendered, e.Accumulation().FrameIndex())
	}
}
