package change

import (
	"reflect"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/params"
)

func primed(t *testing.T, obs Observation, options ...DetectorBuilderOption) Detector {
	t.Helper()
	d := NewDetector(options...)
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Fatalf("first Evaluate reset: %v", dec)
	}
	return d
}

func baseObservation() Observation {
	return Observation{Mode: Mode{RayMode: true, UseBVH: true}, Params: params.Defaults()}
}

func TestFirstEvaluationOnlyCommits(t *testing.T) {
	obs := baseObservation()
	obs.CameraMotion = 1
	obs.UserReset = true
	obs.Params.PointLightOrbitEnabled = true

	d := NewDetector()
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Fatalf("first Evaluate reset: %v", dec)
	}
}

func TestStableObservationDoesNotReset(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)
	for range 5 {
		if dec := d.Evaluate(obs); dec.Reset() {
			t.Fatalf("unexpected reset: %v", dec)
		}
	}
}

func TestModeToggleAlwaysResets(t *testing.T) {
	toggles := []func(*Mode){
		func(m *Mode) { m.RayMode = !m.RayMode },
		func(m *Mode) { m.UseBVH = !m.UseBVH },
		func(m *Mode) { m.ShowMotion = !m.ShowMotion },
	}
	for i, toggle := range toggles {
		obs := baseObservation()
		d := primed(t, obs)
		toggle(&obs.Mode)
		dec := d.Evaluate(obs)
		if !dec.Has(ReasonMode) {
			t.Errorf("toggle %d: reasons = %v", i, dec)
		}
		if dec := d.Evaluate(obs); dec.Reset() {
			t.Errorf("toggle %d: second frame reset again: %v", i, dec)
		}
	}
}

func TestParamDriftRespectsEpsilon(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*params.RenderParameters)
		reset  bool
		field  string
	}{
		{"below epsilon", func(p *params.RenderParameters) { p.GlassIOR += 5e-6 }, false, ""},
		{"above epsilon", func(p *params.RenderParameters) { p.GlassIOR += 1e-3 }, true, "GlassIOR"},
		{"array element", func(p *params.RenderParameters) { p.SunColor[2] -= 0.1 }, true, "SunColor"},
		{"int", func(p *params.RenderParameters) { p.AOSamples = 8 }, true, "AOSamples"},
		{"bool", func(p *params.RenderParameters) { p.TAAEnabled = false }, true, "TAAEnabled"},
		{"ignored field", func(p *params.RenderParameters) { p.PointLightYaw += 90 }, false, ""},
		{"exposure", func(p *params.RenderParameters) { p.Exposure *= 2 }, false, ""},
		{"motion scale", func(p *params.RenderParameters) { p.MotionScale = 16 }, false, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			obs := baseObservation()
			d := primed(t, obs)
			tc.mutate(&obs.Params)
			dec := d.Evaluate(obs)
			if dec.Has(ReasonParams) != tc.reset {
				t.Fatalf("reasons = %v, want params reset %v", dec, tc.reset)
			}
			if tc.reset && !reflect.DeepEqual(dec.ChangedFields, []string{tc.field}) {
				t.Errorf("ChangedFields = %v, want [%s]", dec.ChangedFields, tc.field)
			}
		})
	}
}

func TestSmallDriftsDoNotAccumulateAcrossFrames(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)
	for range 10 {
		obs.Params.GlassIOR += 5e-6
		if dec := d.Evaluate(obs); dec.Reset() {
			t.Fatalf("sub-epsilon step reset: %v", dec)
		}
	}
}

func TestCameraMotion(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)

	obs.CameraMotion = 5e-6
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Errorf("motion below threshold reset: %v", dec)
	}
	obs.CameraMotion = 1e-3
	if dec := d.Evaluate(obs); !dec.Has(ReasonCamera) {
		t.Errorf("motion above threshold: %v", dec)
	}

	d = primed(t, baseObservation(), WithMotionThreshold(0.01))
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Errorf("custom threshold ignored: %v", dec)
	}
}

func TestDynamicPointLight(t *testing.T) {
	obs := baseObservation()
	obs.Params.PointLightOrbitEnabled = true
	d := primed(t, obs)

	for range 3 {
		if dec := d.Evaluate(obs); !dec.Has(ReasonDynamicLight) {
			t.Fatalf("orbiting light in ray mode: %v", dec)
		}
	}

	obs.Mode.RayMode = false
	d = primed(t, obs)
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Errorf("raster mode should ignore the orbit: %v", dec)
	}
}

func TestExternalReasonsAndOrder(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)

	obs.Mode.ShowMotion = true
	obs.Params.SPP = 4
	obs.CameraMotion = 1
	obs.UserReset = true
	obs.GeometryReloaded = true
	obs.EnvironmentReloaded = true
	dec := d.Evaluate(obs)

	want := []Reason{ReasonMode, ReasonParams, ReasonCamera, ReasonUserReset, ReasonGeometry, ReasonEnvironment}
	if !reflect.DeepEqual(dec.Reasons, want) {
		t.Fatalf("Reasons = %v, want %v", dec.Reasons, want)
	}
	if got := dec.String(); got != "mode params camera user geometry environment" {
		t.Errorf("String = %q", got)
	}
}

func TestEnvironmentReloadAloneResets(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)

	obs.EnvironmentReloaded = true
	dec := d.Evaluate(obs)
	if !reflect.DeepEqual(dec.Reasons, []Reason{ReasonEnvironment}) {
		t.Fatalf("Reasons = %v, want [environment]", dec.Reasons)
	}

	obs.EnvironmentReloaded = false
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Errorf("reload signal persisted: %v", dec)
	}
}

func TestForget(t *testing.T) {
	obs := baseObservation()
	d := primed(t, obs)
	d.Forget()
	obs.Mode.RayMode = false
	if dec := d.Evaluate(obs); dec.Reset() {
		t.Errorf("Evaluate after Forget reset: %v", dec)
	}
}

func TestDiffFieldsNonStruct(t *testing.T) {
	if got := DiffFields(1, 1, 0); got != nil {
		t.Errorf("equal ints: %v", got)
	}
	if got := DiffFields("a", "b", 0); len(got) != 1 {
		t.Errorf("different strings: %v", got)
	}
}
