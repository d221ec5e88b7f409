package change

// DetectorBuilderOption is a functional option for configuring a Detector.
type DetectorBuilderOption func(*detector)

// WithParamEpsilon sets the tolerance below which float parameter changes are ignored.
//
// Parameters:
//   - epsilon: the float tolerance
//
// Returns:
//   - DetectorBuilderOption: a function that applies the tolerance to a detector
func WithParamEpsilon(epsilon float64) DetectorBuilderOption {
	return func(d *detector) {
		d.paramEpsilon = epsilon
	}
}

// WithMotionThreshold sets the camera motion above which history is discarded.
//
// Parameters:
//   - threshold: the view-projection difference threshold
//
// Returns:
//   - DetectorBuilderOption: a function that applies the threshold to a detector
func WithMotionThreshold(threshold float32) DetectorBuilderOption {
	return func(d *detector) {
		d.motionThreshold = threshold
	}
}
