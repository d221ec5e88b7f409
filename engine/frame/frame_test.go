package frame

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/go-gl/mathgl/mgl32"
)

func camera(eye mgl32.Vec3) (mgl32.Mat4, mgl32.Mat4) {
	view := mgl32.LookAtV(eye, mgl32.Vec3{0, 0, 0}, mgl32.Vec3{0, 1, 0})
	proj := common.PerspectiveZO(mgl32.DegToRad(60), 16.0/9.0, 0.1, 100)
	return view, proj
}

func TestIdenticalFramesHaveNoMotion(t *testing.T) {
	s := NewState()
	view, proj := camera(mgl32.Vec3{0, 2, 8})

	s.BeginFrame(view, proj, mgl32.Vec3{0, 2, 8})
	s.EndFrame()
	s.BeginFrame(view, proj, mgl32.Vec3{0, 2, 8})
	if m := s.CameraMotion(); m >= MotionThreshold {
		t.Fatalf("CameraMotion = %g, want < %g", m, MotionThreshold)
	}
	if s.IsMoving() {
		t.Error("IsMoving = true for identical frames")
	}
	s.EndFrame()
}

func TestPrimeRemovesStartupMotion(t *testing.T) {
	s := NewState()
	view, proj := camera(mgl32.Vec3{3, 1, 4})
	s.Prime(view, proj, mgl32.Vec3{3, 1, 4})
	s.BeginFrame(view, proj, mgl32.Vec3{3, 1, 4})
	if s.IsMoving() {
		t.Errorf("CameraMotion = %g after Prime", s.CameraMotion())
	}
}

func TestMovingCameraIsDetected(t *testing.T) {
	s := NewState()
	view, proj := camera(mgl32.Vec3{0, 2, 8})
	s.Prime(view, proj, mgl32.Vec3{0, 2, 8})

	view2, _ := camera(mgl32.Vec3{0.1, 2, 8})
	s.BeginFrame(view2, proj, mgl32.Vec3{0.1, 2, 8})
	if !s.IsMoving() {
		t.Fatal("IsMoving = false after camera moved")
	}
	if s.PrevCamPos() != (mgl32.Vec3{0, 2, 8}) {
		t.Errorf("PrevCamPos changed before EndFrame: %v", s.PrevCamPos())
	}
	s.EndFrame()
	if s.PrevViewProj() != s.CurrViewProj() || s.PrevCamPos() != s.CurrCamPos() {
		t.Error("EndFrame did not commit")
	}
}

func TestViewProjOrder(t *testing.T) {
	s := NewState()
	view, proj := camera(mgl32.Vec3{1, 2, 3})
	s.BeginFrame(view, proj, mgl32.Vec3{1, 2, 3})
	if s.CurrViewProj() != proj.Mul4(view) {
		t.Error("CurrViewProj != proj * view")
	}
	if s.CurrView() != view || s.CurrProj() != proj {
		t.Error("matrices not stored")
	}
}

func TestHalton(t *testing.T) {
	cases := []struct {
		index, base uint32
		want        float32
	}{
		{1, 2, 0.5},
		{2, 2, 0.25},
		{3, 2, 0.75},
		{1, 3, 1.0 / 3.0},
		{2, 3, 2.0 / 3.0},
		{4, 3, 4.0 / 9.0},
		{0, 2, 0},
		{5, 1, 0},
	}
	for _, tc := range cases {
		if got := Halton(tc.index, tc.base); math.Abs(float64(got-tc.want)) > 1e-6 {
			t.Errorf("Halton(%d, %d) = %v, want %v", tc.index, tc.base, got, tc.want)
		}
	}
}

func TestJitterSampleWraps(t *testing.T) {
	if JitterSample(0) != JitterSample(1024) {
		t.Error("jitter should repeat every 1024 frames")
	}
	first := JitterSample(0)
	if first[0] != 0 || math.Abs(float64(first[1])+1.0/6.0) > 1e-6 {
		t.Errorf("JitterSample(0) = %v", first)
	}
	for i := range uint32(2048) {
		j := JitterSample(i)
		if j[0] < -0.5 || j[0] >= 0.5 || j[1] < -0.5 || j[1] >= 0.5 {
			t.Fatalf("JitterSample(%d) = %v out of range", i, j)
		}
	}
}

func TestUpdateJitterScales(t *testing.T) {
	s := NewState()
	base := JitterSample(5)

	s.UpdateJitter(5, true, false, 0.25, 0.5)
	if s.Jitter() != base.Mul(0.25) {
		t.Errorf("still jitter = %v", s.Jitter())
	}
	s.UpdateJitter(5, true, true, 0.25, 0.5)
	if s.Jitter() != base.Mul(0.5) {
		t.Errorf("moving jitter = %v", s.Jitter())
	}
	s.UpdateJitter(5, false, true, 0.25, 0.5)
	if s.Jitter() != (mgl32.Vec2{}) {
		t.Errorf("disabled jitter = %v", s.Jitter())
	}
}

func TestGPUFrameUniformLayout(t *testing.T) {
	s := NewState()
	view, proj := camera(mgl32.Vec3{0, 2, 8})
	s.Prime(view, proj, mgl32.Vec3{0, 2, 8})
	s.BeginFrame(view, proj, mgl32.Vec3{0, 2, 8})
	s.UpdateJitter(3, true, false, 0.25, 0.5)

	u := NewGPUFrameUniform(s, 3)
	u.NodeCount = 11
	u.TriCount = 20
	u.SPP = 4
	u.Exposure = 1.5
	u.MotionScale = 4
	u.Flags = FlagRayMode | FlagShowMotion

	if u.Size() != GPUFrameUniformSize {
		t.Fatalf("Size = %d, want %d", u.Size(), GPUFrameUniformSize)
	}
	buf := u.Marshal()
	u32 := func(off int) uint32 { return binary.LittleEndian.Uint32(buf[off:]) }
	f32 := func(off int) float32 { return math.Float32frombits(u32(off)) }

	vp := s.CurrViewProj()
	if f32(0) != vp[0] || f32(60) != vp[15] || f32(64) != vp[0] {
		t.Error("view-projection misplaced")
	}
	if f32(132) != 2 || f32(136) != 8 || u32(140) != 3 {
		t.Error("camera position or frame index misplaced")
	}
	if f32(144) != s.Jitter()[0] || f32(148) != s.Jitter()[1] {
		t.Error("jitter misplaced")
	}
	if u32(152) != 11 || u32(156) != 20 || u32(160) != 4 {
		t.Error("counts misplaced")
	}
	if f32(164) != 1.5 || f32(168) != 4 || u32(172) != 5 {
		t.Error("exposure, motion scale or flags misplaced")
	}
}
