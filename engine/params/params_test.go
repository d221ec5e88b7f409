package params

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b mgl32.Vec3, tol float32) bool {
	for i := range a {
		if d := a[i] - b[i]; d > tol || d < -tol {
			return false
		}
	}
	return true
}

func TestDefaults(t *testing.T) {
	p := Defaults()
	if p.SPP != 1 || p.Exposure != 1 || p.MotionScale != 4 {
		t.Errorf("core defaults = %d/%v/%v", p.SPP, p.Exposure, p.MotionScale)
	}
	if p.JitterStillScale != 0.25 || p.JitterMovingScale != 0.5 {
		t.Errorf("jitter scales = %v/%v", p.JitterStillScale, p.JitterMovingScale)
	}
	if p.PointLightOrbitEnabled || p.PointLightOrbitSpeed != 0.02 || p.PointLightOrbitRadius != 3.5 {
		t.Error("point light orbit defaults")
	}
	if p.AOSamples != 4 || p.SVGFKVar != 200 || p.TAAHistoryAvgWeight != 0.92 {
		t.Error("filter defaults")
	}
}

func TestClamp(t *testing.T) {
	cases := []struct {
		spp          int
		exposure     float32
		wantSPP      int
		wantExposure float32
	}{
		{0, 0, 1, 0.01},
		{-3, -1, 1, 0.01},
		{4, 2, 4, 2},
		{64, 100, 16, 8},
	}
	for _, tc := range cases {
		p := Defaults()
		p.SPP, p.Exposure = tc.spp, tc.exposure
		p.Clamp()
		if p.SPP != tc.wantSPP || p.Exposure != tc.wantExposure {
			t.Errorf("Clamp(%d, %v) = %d, %v", tc.spp, tc.exposure, p.SPP, p.Exposure)
		}
	}
}

func TestDecodeOverlaysDefaults(t *testing.T) {
	p, err := Decode(strings.NewReader(`{"spp": 32, "sun_yaw": 10, "ao_enabled": false}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if p.SPP != MaxSPP {
		t.Errorf("SPP = %d, want clamped %d", p.SPP, MaxSPP)
	}
	if p.SunYaw != 10 || p.AOEnabled {
		t.Error("overrides not applied")
	}
	if p.SunPitch != -35 || p.GlassIOR != 1.5 {
		t.Error("defaults lost for unspecified fields")
	}
}

func TestDecodeEmptyAndInvalid(t *testing.T) {
	p, err := Decode(strings.NewReader(""))
	if err != nil || p != Defaults() {
		t.Errorf("empty input: %v", err)
	}
	if _, err := Decode(strings.NewReader(`{"spp": "many"}`)); err == nil {
		t.Error("expected type error")
	}
	if _, err := Decode(strings.NewReader(`{"sppp": 2}`)); err == nil {
		t.Error("expected unknown field error")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.json")
	if err := os.WriteFile(path, []byte(`{"exposure": 2.5}`), 0o644); err != nil {
		t.Fatal(err)
	}
	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Exposure != 2.5 {
		t.Errorf("Exposure = %v", p.Exposure)
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestPointLightPosition(t *testing.T) {
	p := Defaults()
	if got := p.PointLightPosition(100); got != (mgl32.Vec3{0, 2.5, -3}) {
		t.Errorf("static light moved: %v", got)
	}

	p.PointLightOrbitEnabled = true
	if got := p.PointLightPosition(0); !near(got, mgl32.Vec3{3.5, 2.5, -3}, 1e-5) {
		t.Errorf("frame 0 = %v", got)
	}
	// 0.02 rad/frame: a quarter turn after pi/2/0.02 frames.
	got := p.PointLightPosition(uint32(mgl32.DegToRad(90)/0.02 + 0.5))
	if !near(got, mgl32.Vec3{0, 2.5, 0.5}, 0.05) {
		t.Errorf("quarter turn = %v", got)
	}
}

func TestPointLightIsDynamic(t *testing.T) {
	p := Defaults()
	if p.PointLightIsDynamic() {
		t.Error("orbit disabled should be static")
	}
	p.PointLightOrbitEnabled = true
	if !p.PointLightIsDynamic() {
		t.Error("default orbit should be dynamic")
	}
	p.PointLightOrbitRadius = 0
	if p.PointLightIsDynamic() {
		t.Error("zero radius should be static")
	}
	p.PointLightOrbitRadius = 1
	p.PointLightOrbitSpeed = -1e-6
	if p.PointLightIsDynamic() {
		t.Error("negligible speed should be static")
	}
}

func TestAdvanceOrbitWraps(t *testing.T) {
	p := Defaults()
	p.AdvanceOrbit(1)
	if p.PointLightYaw != 0 {
		t.Error("disabled orbit advanced")
	}
	p.PointLightOrbitEnabled = true
	p.PointLightOrbitSpeed = 100
	p.PointLightYaw = 350
	p.AdvanceOrbit(0.5)
	if p.PointLightYaw != 40 {
		t.Errorf("PointLightYaw = %v, want 40", p.PointLightYaw)
	}
}

func TestDirFromYawPitch(t *testing.T) {
	if got := DirFromYawPitch(0, 90); !near(got, mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("straight up = %v", got)
	}
	if got := DirFromYawPitch(0, 0); !near(got, mgl32.Vec3{1, 0, 0}, 1e-5) {
		t.Errorf("yaw 0 = %v", got)
	}
	p := Defaults()
	if l := p.SunDirection().Len(); l < 0.999 || l > 1.001 {
		t.Errorf("sun direction length = %v", l)
	}
	if p.SunDirection()[1] >= 0 {
		t.Error("default sun should point down")
	}
	if !near(p.SkyDirection(), mgl32.Vec3{0, 1, 0}, 1e-5) {
		t.Errorf("sky direction = %v", p.SkyDirection())
	}
}
