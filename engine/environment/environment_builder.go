package environment

import "github.com/Carmen-Shannon/oxy-trace/engine/metrics"

// EnvironmentBuilderOption is a functional option for configuring an Environment.
type EnvironmentBuilderOption func(*environment)

// WithMaxFaceSize limits the face edge length of loaded maps. Larger crosses are downsampled.
//
// Parameters:
//   - size: the largest face edge in texels, 0 for no limit
//
// Returns:
//   - EnvironmentBuilderOption: option function to apply
func WithMaxFaceSize(size int) EnvironmentBuilderOption {
	return func(e *environment) {
		e.maxFaceSize = max(size, 0)
	}
}

// WithMetrics sets the collectors that installs and failed loads report to.
//
// Parameters:
//   - m: the metrics, may be nil
//
// Returns:
//   - EnvironmentBuilderOption: option function to apply
func WithMetrics(m *metrics.Metrics) EnvironmentBuilderOption {
	return func(e *environment) {
		e.metrics = m
	}
}
