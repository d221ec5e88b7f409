package params

import (
	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Shading constants shared with the stage.
const (
	Epsilon  float32 = 1e-4
	Pi       float32 = math32.Pi
	Infinity float32 = 1e30
)

// Bounds applied by Clamp.
const (
	MinExposure float32 = 0.01
	MaxExposure float32 = 8
	MinSPP              = 1
	MaxSPP              = 16
)

// RenderParameters is the flat set of tunables the stage consumes.
// Any change to a field outside a `change:"-"` tag invalidates accumulated history.
// Exposure and MotionScale only affect presentation and the motion debug view.
type RenderParameters struct {
	SPP      int     `json:"spp"`
	Exposure float32 `json:"exposure" change:"-"`

	AlbedoColor        [3]float32 `json:"albedo_color"`
	AlbedoSpecStrength float32    `json:"albedo_spec_strength"`
	AlbedoGloss        float32    `json:"albedo_gloss"`
	GlassEnabled       bool       `json:"glass_enabled"`
	GlassColor         [3]float32 `json:"glass_color"`
	GlassIOR           float32    `json:"glass_ior"`
	GlassDistortion    float32    `json:"glass_distortion"`
	MirrorEnabled      bool       `json:"mirror_enabled"`
	MirrorColor        [3]float32 `json:"mirror_color"`
	MirrorGloss        float32    `json:"mirror_gloss"`

	JitterEnabled     bool    `json:"jitter_enabled"`
	JitterStillScale  float32 `json:"jitter_still_scale"`
	JitterMovingScale float32 `json:"jitter_moving_scale"`

	GIEnabled       bool    `json:"gi_enabled"`
	GIScaleAnalytic float32 `json:"gi_scale_analytic"`
	GIScaleBVH      float32 `json:"gi_scale_bvh"`

	EnvMapEnabled   bool    `json:"env_map_enabled"`
	EnvMapIntensity float32 `json:"env_map_intensity"`

	SunEnabled   bool       `json:"sun_enabled"`
	SunColor     [3]float32 `json:"sun_color"`
	SunIntensity float32    `json:"sun_intensity"`
	SunYaw       float32    `json:"sun_yaw"`
	SunPitch     float32    `json:"sun_pitch"`

	SkyEnabled   bool       `json:"sky_enabled"`
	SkyColor     [3]float32 `json:"sky_color"`
	SkyIntensity float32    `json:"sky_intensity"`
	SkyYaw       float32    `json:"sky_yaw"`
	SkyPitch     float32    `json:"sky_pitch"`

	PointLightEnabled      bool       `json:"point_light_enabled"`
	PointLightColor        [3]float32 `json:"point_light_color"`
	PointLightIntensity    float32    `json:"point_light_intensity"`
	PointLightPos          [3]float32 `json:"point_light_pos"`
	PointLightOrbitEnabled bool       `json:"point_light_orbit_enabled"`
	PointLightOrbitRadius  float32    `json:"point_light_orbit_radius"`
	PointLightOrbitSpeed   float32    `json:"point_light_orbit_speed"`

	// PointLightYaw is animation state advanced every frame; the orbit signal covers it.
	PointLightYaw float32 `json:"-" change:"-"`

	AOEnabled bool    `json:"ao_enabled"`
	AOSamples int     `json:"ao_samples"`
	AORadius  float32 `json:"ao_radius"`
	AOBias    float32 `json:"ao_bias"`
	AOMin     float32 `json:"ao_min"`

	TAAEnabled          bool    `json:"taa_enabled"`
	TAAStillThresh      float32 `json:"taa_still_thresh"`
	TAAHardMovingThresh float32 `json:"taa_hard_moving_thresh"`
	TAAHistoryMinWeight float32 `json:"taa_history_min_weight"`
	TAAHistoryAvgWeight float32 `json:"taa_history_avg_weight"`
	TAAHistoryMaxWeight float32 `json:"taa_history_max_weight"`
	TAAHistoryBoxSize   float32 `json:"taa_history_box_size"`

	SVGFEnabled      bool    `json:"svgf_enabled"`
	SVGFVarMax       float32 `json:"svgf_var_max"`
	SVGFKVar         float32 `json:"svgf_k_var"`
	SVGFKColor       float32 `json:"svgf_k_color"`
	SVGFKVarMotion   float32 `json:"svgf_k_var_motion"`
	SVGFKColorMotion float32 `json:"svgf_k_color_motion"`
	SVGFStrength     float32 `json:"svgf_strength"`
	SVGFVarEPS       float32 `json:"svgf_var_eps"`
	SVGFMotionEPS    float32 `json:"svgf_motion_eps"`

	MotionScale float32 `json:"motion_scale" change:"-"`
}

// Defaults returns the stock parameter set.
func Defaults() RenderParameters {
	return RenderParameters{
		SPP:      1,
		Exposure: 1,

		AlbedoColor:        [3]float32{0.85, 0.25, 0.25},
		AlbedoSpecStrength: 0.35,
		AlbedoGloss:        48,
		GlassEnabled:       true,
		GlassColor:         [3]float32{0.95, 0.98, 1},
		GlassIOR:           1.5,
		GlassDistortion:    0.05,
		MirrorEnabled:      true,
		MirrorColor:        [3]float32{1, 1, 1},
		MirrorGloss:        256,

		JitterEnabled:     true,
		JitterStillScale:  0.25,
		JitterMovingScale: 0.5,

		GIEnabled:       true,
		GIScaleAnalytic: 0.35,
		GIScaleBVH:      0.20,

		EnvMapEnabled:   true,
		EnvMapIntensity: 1,

		SunEnabled:   true,
		SunColor:     [3]float32{1, 0.95, 0.85},
		SunIntensity: 0.45,
		SunYaw:       45,
		SunPitch:     -35,

		SkyEnabled:   true,
		SkyColor:     [3]float32{0.4, 0.5, 1},
		SkyIntensity: 1,
		SkyYaw:       0,
		SkyPitch:     90,

		PointLightEnabled:      true,
		PointLightColor:        [3]float32{1, 0.9, 0.7},
		PointLightIntensity:    20,
		PointLightPos:          [3]float32{0, 2.5, -3},
		PointLightOrbitEnabled: false,
		PointLightOrbitRadius:  3.5,
		PointLightOrbitSpeed:   0.02,

		AOEnabled: true,
		AOSamples: 4,
		AORadius:  0.8,
		AOBias:    2e-3,
		AOMin:     0.5,

		TAAEnabled:          true,
		TAAStillThresh:      1e-5,
		TAAHardMovingThresh: 0.35,
		TAAHistoryMinWeight: 0.85,
		TAAHistoryAvgWeight: 0.92,
		TAAHistoryMaxWeight: 0.96,
		TAAHistoryBoxSize:   0.06,

		SVGFEnabled:      true,
		SVGFVarMax:       0.02,
		SVGFKVar:         200,
		SVGFKColor:       20,
		SVGFKVarMotion:   35,
		SVGFKColorMotion: 3,
		SVGFStrength:     0.6,
		SVGFVarEPS:       2e-4,
		SVGFMotionEPS:    0.005,

		MotionScale: 4,
	}
}

// Clamp bounds exposure and samples per frame to the ranges the stage supports.
func (p *RenderParameters) Clamp() {
	p.Exposure = common.Clamp(p.Exposure, MinExposure, MaxExposure)
	p.SPP = common.Clamp(p.SPP, MinSPP, MaxSPP)
}

// PointLightPosition returns the point light's world position for a frame.
// With the orbit enabled the light circles its base position in the XZ plane at
// PointLightOrbitSpeed radians per frame; otherwise it sits at the base position.
//
// Parameters:
//   - frameIndex: the accumulation frame counter
//
// Returns:
//   - mgl32.Vec3: the world-space light position
func (p *RenderParameters) PointLightPosition(frameIndex uint32) mgl32.Vec3 {
	center := mgl32.Vec3(p.PointLightPos)
	if !p.PointLightOrbitEnabled {
		return center
	}
	angle := p.PointLightOrbitSpeed * float32(frameIndex)
	s, c := math32.Sincos(angle)
	return mgl32.Vec3{
		center[0] + c*p.PointLightOrbitRadius,
		center[1],
		center[2] + s*p.PointLightOrbitRadius,
	}
}

// PointLightIsDynamic reports whether the point light moves between frames, which makes every
// ray-traced frame differ from its history.
func (p *RenderParameters) PointLightIsDynamic() bool {
	return p.PointLightOrbitEnabled &&
		math32.Abs(p.PointLightOrbitSpeed) > 1e-5 &&
		p.PointLightOrbitRadius > 0
}

// AdvanceOrbit moves PointLightYaw by the orbit speed over dt seconds, wrapped to (-360, 360).
//
// Parameters:
//   - dt: the elapsed time in seconds
func (p *RenderParameters) AdvanceOrbit(dt float32) {
	if !p.PointLightOrbitEnabled {
		return
	}
	p.PointLightYaw += p.PointLightOrbitSpeed * dt
	if p.PointLightYaw > 360 {
		p.PointLightYaw -= 360
	}
	if p.PointLightYaw < -360 {
		p.PointLightYaw += 360
	}
}

// SunDirection returns the unit direction of the sun light.
func (p *RenderParameters) SunDirection() mgl32.Vec3 {
	return DirFromYawPitch(p.SunYaw, p.SunPitch)
}

// SkyDirection returns the unit up direction of the sky dome.
func (p *RenderParameters) SkyDirection() mgl32.Vec3 {
	return DirFromYawPitch(p.SkyYaw, p.SkyPitch)
}

// DirFromYawPitch converts angles in degrees to a unit direction.
// A degenerate result falls back to straight down.
//
// Parameters:
//   - yawDeg: rotation around the Y axis in degrees
//   - pitchDeg: elevation in degrees
//
// Returns:
//   - mgl32.Vec3: the normalized direction
func DirFromYawPitch(yawDeg, pitchDeg float32) mgl32.Vec3 {
	sp, cp := math32.Sincos(mgl32.DegToRad(pitchDeg))
	sy, cy := math32.Sincos(mgl32.DegToRad(yawDeg))
	d := mgl32.Vec3{cp * cy, sp, cp * sy}
	if d.Dot(d) < 1e-6 {
		return mgl32.Vec3{0, -1, 0}
	}
	return d.Normalize()
}
