package engine

import (
	"github.com/Carmen-Shannon/oxy-trace/engine/accumulation"
	"github.com/Carmen-Shannon/oxy-trace/engine/change"
	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
	"github.com/Carmen-Shannon/oxy-trace/engine/params"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/go-gl/mathgl/mgl32"
)

// FrameContext is everything a Stage may read or write for one frame.
// Handles are owned by the engine and stay valid only for the duration of Render.
type FrameContext struct {
	Width  int
	Height int

	// ReadTex holds the history of previous frames, WriteTex receives this frame's result.
	ReadTex   resource.Texture
	WriteTex  resource.Texture
	MotionTex resource.Texture
	GBuffer   accumulation.GBuffer

	NodeBuffer     resource.Buffer
	TriangleBuffer resource.Buffer
	NodeCount      int
	TriangleCount  int

	// EnvBuffer holds the environment cube map, see environment.GPUSource for its layout.
	EnvBuffer   resource.Buffer
	EnvFaceSize int

	// Uniform holds the marshalled copy of FrameUniform.
	Uniform      resource.Buffer
	FrameUniform frame.GPUFrameUniform

	Params     params.RenderParameters
	Mode       change.Mode
	Jitter     mgl32.Vec2
	FrameIndex uint32
	DeltaTime  float32
}

// Stage renders one frame from a FrameContext. Pipelines and shaders live behind this interface.
type Stage interface {
	// Render records and submits the work for one frame.
	//
	// Parameters:
	//   - ctx: the frame's resources and settings
	//
	// Returns:
	//   - error: an error stops the frame loop
	Render(ctx FrameContext) error
}

// StageFunc adapts a function to the Stage interface.
type StageFunc func(ctx FrameContext) error

// Render calls f(ctx).
func (f StageFunc) Render(ctx FrameContext) error {
	return f(ctx)
}

// NopStage renders nothing. It is the default when no stage is configured.
type NopStage struct{}

// Render does nothing.
func (NopStage) Render(FrameContext) error {
	return nil
}
