package bvh

// BuilderOption is a functional option for configuring a Builder.
type BuilderOption func(*builder)

// WithLeafMax sets the maximum number of triangles stored in a single leaf.
// Values below 1 are raised to 1.
//
// Parameters:
//   - leafMax: the leaf size limit
//
// Returns:
//   - BuilderOption: a function that applies the leaf limit to a builder
func WithLeafMax(leafMax int) BuilderOption {
	return func(b *builder) {
		b.leafMax = leafMax
	}
}
