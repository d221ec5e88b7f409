package geometry

// ExtractorBuilderOption is a functional option for configuring an Extractor via NewExtractor.
type ExtractorBuilderOption func(*extractor)

// WithWorkers sets the maximum number of pool workers used for multi-mesh extraction.
// Values below 2 disable parallel extraction.
//
// Parameters:
//   - workers: the maximum worker count
//
// Returns:
//   - ExtractorBuilderOption: option function to apply
func WithWorkers(workers int) ExtractorBuilderOption {
	return func(e *extractor) {
		e.workers = workers
	}
}

// WithParallelThreshold sets the minimum total triangle count before meshes are extracted
// on the worker pool. Smaller models are extracted inline.
//
// Parameters:
//   - triangles: the threshold triangle count
//
// Returns:
//   - ExtractorBuilderOption: option function to apply
func WithParallelThreshold(triangles int) ExtractorBuilderOption {
	return func(e *extractor) {
		e.parallelThreshold = triangles
	}
}
