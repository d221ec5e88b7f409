package frame

import (
	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/go-gl/mathgl/mgl32"
)

// MotionThreshold is the view-projection difference above which the camera counts as moving.
const MotionThreshold = 1e-5

// jitterPeriod bounds the Halton index so the sequence repeats every 1024 frames.
const jitterPeriod = 1023

// State holds the camera matrices of the frame being rendered and the frame before it,
// plus the sub-pixel jitter applied this frame.
// The previous values only change in EndFrame, so reprojection always sees a consistent pair.
type State struct {
	currView     mgl32.Mat4
	currProj     mgl32.Mat4
	currViewProj mgl32.Mat4
	prevViewProj mgl32.Mat4

	currCamPos mgl32.Vec3
	prevCamPos mgl32.Vec3

	jitter mgl32.Vec2
}

// NewState creates a State with identity matrices.
func NewState() *State {
	return &State{
		currView:     mgl32.Ident4(),
		currProj:     mgl32.Ident4(),
		currViewProj: mgl32.Ident4(),
		prevViewProj: mgl32.Ident4(),
	}
}

// BeginFrame records the camera of the frame about to be rendered.
//
// Parameters:
//   - view: the world-to-view matrix
//   - proj: the view-to-clip matrix
//   - camPos: the world-space camera position
func (s *State) BeginFrame(view, proj mgl32.Mat4, camPos mgl32.Vec3) {
	s.currView = view
	s.currProj = proj
	s.currViewProj = proj.Mul4(view)
	s.currCamPos = camPos
}

// EndFrame commits the current camera as the previous one for the next frame.
func (s *State) EndFrame() {
	s.prevViewProj = s.currViewProj
	s.prevCamPos = s.currCamPos
}

// Prime begins and ends a frame with the given camera so the first real frame sees no motion.
//
// Parameters:
//   - view: the world-to-view matrix
//   - proj: the view-to-clip matrix
//   - camPos: the world-space camera position
func (s *State) Prime(view, proj mgl32.Mat4, camPos mgl32.Vec3) {
	s.BeginFrame(view, proj, camPos)
	s.EndFrame()
}

// CameraMotion returns the largest element-wise difference between the current and previous
// view-projection matrices.
func (s *State) CameraMotion() float32 {
	return common.MaxAbsDiff(s.currViewProj, s.prevViewProj)
}

// IsMoving reports whether CameraMotion exceeds MotionThreshold.
func (s *State) IsMoving() bool {
	return s.CameraMotion() > MotionThreshold
}

// UpdateJitter stores this frame's sub-pixel jitter in pixels.
// A still camera uses stillScale, a moving camera movingScale; disabled jitter is zero.
//
// Parameters:
//   - frameIndex: the accumulation frame counter
//   - enabled: whether jitter is applied at all
//   - moving: whether the camera moved this frame
//   - stillScale: the jitter amplitude while still
//   - movingScale: the jitter amplitude while moving
func (s *State) UpdateJitter(frameIndex uint32, enabled, moving bool, stillScale, movingScale float32) {
	if !enabled {
		s.jitter = mgl32.Vec2{}
		return
	}
	scale := stillScale
	if moving {
		scale = movingScale
	}
	s.jitter = JitterSample(frameIndex).Mul(scale)
}

func (s *State) CurrView() mgl32.Mat4     { return s.currView }
func (s *State) CurrProj() mgl32.Mat4     { return s.currProj }
func (s *State) CurrViewProj() mgl32.Mat4 { return s.currViewProj }
func (s *State) PrevViewProj() mgl32.Mat4 { return s.prevViewProj }
func (s *State) CurrCamPos() mgl32.Vec3   { return s.currCamPos }
func (s *State) PrevCamPos() mgl32.Vec3   { return s.prevCamPos }
func (s *State) Jitter() mgl32.Vec2       { return s.jitter }

// Halton returns the radical inverse of index in the given base.
//
// Parameters:
//   - index: the sequence index, starting at 1
//   - base: the prime base
//
// Returns:
//   - float32: a value in [0, 1)
func Halton(index, base uint32) float32 {
	if base < 2 {
		return 0
	}
	f := float32(1)
	r := float32(0)
	for i := index; i > 0; i /= base {
		f /= float32(base)
		r += f * float32(i%base)
	}
	return r
}

// JitterSample returns the centered Halton(2,3) offset for a frame, each component in [-0.5, 0.5).
//
// Parameters:
//   - frameIndex: the accumulation frame counter
//
// Returns:
//   - mgl32.Vec2: the unscaled jitter
func JitterSample(frameIndex uint32) mgl32.Vec2 {
	i := (frameIndex & jitterPeriod) + 1
	return mgl32.Vec2{Halton(i, 2) - 0.5, Halton(i, 3) - 0.5}
}
