package change

import "strings"

// Reason identifies one signal that invalidated accumulated history.
type Reason uint8

// Reasons in the order they are reported.
const (
	ReasonMode Reason = iota
	ReasonParams
	ReasonCamera
	ReasonDynamicLight
	ReasonUserReset
	ReasonGeometry
	ReasonEnvironment
)

// AllReasons lists every Reason in reporting order.
var AllReasons = []Reason{
	ReasonMode,
	ReasonParams,
	ReasonCamera,
	ReasonDynamicLight,
	ReasonUserReset,
	ReasonGeometry,
	ReasonEnvironment,
}

func (r Reason) String() string {
	switch r {
	case ReasonMode:
		return "mode"
	case ReasonParams:
		return "params"
	case ReasonCamera:
		return "camera"
	case ReasonDynamicLight:
		return "dynamicPointLight"
	case ReasonUserReset:
		return "user"
	case ReasonGeometry:
		return "geometry"
	case ReasonEnvironment:
		return "environment"
	default:
		return "unknown"
	}
}

// Decision is the outcome of one Evaluate call.
type Decision struct {
	// Reasons lists every signal that fired, in AllReasons order.
	Reasons []Reason

	// ChangedFields names the parameters that drifted beyond epsilon.
	ChangedFields []string
}

// Reset reports whether history must be discarded.
func (d Decision) Reset() bool {
	return len(d.Reasons) > 0
}

// Has reports whether r is among the reasons.
func (d Decision) Has(r Reason) bool {
	for _, got := range d.Reasons {
		if got == r {
			return true
		}
	}
	return false
}

// String joins the reasons with spaces, e.g. "mode params".
func (d Decision) String() string {
	parts := make([]string, len(d.Reasons))
	for i, r := range d.Reasons {
		parts[i] = r.String()
	}
	return strings.Join(parts, " ")
}
