package resource

// MemoryBackendOption is a functional option for configuring a MemoryBackend.
type MemoryBackendOption func(*MemoryBackend)

// WithBudget limits the number of live bytes. Allocations beyond it fail with ErrBudgetExceeded.
//
// Parameters:
//   - bytes: the maximum number of live bytes, zero for unlimited
//
// Returns:
//   - MemoryBackendOption: a function that applies the budget to a MemoryBackend
func WithBudget(bytes uint64) MemoryBackendOption {
	return func(m *MemoryBackend) {
		m.budget = bytes
	}
}
