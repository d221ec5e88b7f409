package change

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
	"github.com/Carmen-Shannon/oxy-trace/engine/params"
)

// DefaultParamEpsilon is the float tolerance for parameter drift.
const DefaultParamEpsilon = 1e-5

// Mode is the set of render mode toggles.
type Mode struct {
	RayMode    bool
	UseBVH     bool
	ShowMotion bool
}

// Observation is everything the detector looks at for one frame.
type Observation struct {
	Mode         Mode
	Params       params.RenderParameters
	CameraMotion float32

	// UserReset is set when the user explicitly asked to discard history.
	UserReset bool

	// GeometryReloaded is set when the BVH was replaced since the last frame.
	GeometryReloaded bool

	// EnvironmentReloaded is set when the environment map was replaced since the last frame.
	EnvironmentReloaded bool
}

// detector is the implementation of the Detector interface.
type detector struct {
	mu *sync.Mutex

	paramEpsilon    float64
	motionThreshold float32

	last      Observation
	committed bool
}

// Detector decides once per frame whether accumulated history is still valid by comparing the
// frame's observation with the last committed one.
type Detector interface {
	// Evaluate compares obs with the last committed observation, commits obs and returns which
	// signals fired. The first call after construction or Forget only commits.
	//
	// Parameters:
	//   - obs: the current frame's observation
	//
	// Returns:
	//   - Decision: the reasons to reset, empty if history is valid
	Evaluate(obs Observation) Decision

	// Forget drops the committed observation so the next Evaluate only commits.
	Forget()
}

var _ Detector = &detector{}

// NewDetector creates a Detector with DefaultParamEpsilon and frame.MotionThreshold.
//
// Parameters:
//   - options: functional options to configure the detector
//
// Returns:
//   - Detector: the newly created detector
func NewDetector(options ...DetectorBuilderOption) Detector {
	d := &detector{
		mu:              &sync.Mutex{},
		paramEpsilon:    DefaultParamEpsilon,
		motionThreshold: frame.MotionThreshold,
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func (d *detector) Evaluate(obs Observation) Decision {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.committed {
		d.last = obs
		d.committed = true
		return Decision{}
	}

	var dec Decision
	if obs.Mode != d.last.Mode {
		dec.Reasons = append(dec.Reasons, ReasonMode)
	}
	if changed := DiffFields(d.last.Params, obs.Params, d.paramEpsilon); len(changed) > 0 {
		dec.Reasons = append(dec.Reasons, ReasonParams)
		dec.ChangedFields = changed
	}
	if obs.CameraMotion > d.motionThreshold {
		dec.Reasons = append(dec.Reasons, ReasonCamera)
	}
	if obs.Mode.RayMode && obs.Params.PointLightIsDynamic() {
		dec.Reasons = append(dec.Reasons, ReasonDynamicLight)
	}
	if obs.UserReset {
		dec.Reasons = append(dec.Reasons, ReasonUserReset)
	}
	if obs.GeometryReloaded {
		dec.Reasons = append(dec.Reasons, ReasonGeometry)
	}
	if obs.EnvironmentReloaded {
		dec.Reasons = append(dec.Reasons, ReasonEnvironment)
	}

	d.last = obs
	return dec
}

func (d *detector) Forget() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.committed = false
	d.last = Observation{}
}
