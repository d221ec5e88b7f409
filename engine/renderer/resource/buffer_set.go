package resource

import (
	"fmt"
	"sync"
)

// bufferSet is the implementation of the BufferSet interface.
type bufferSet struct {
	mu *sync.Mutex

	backend Backend
	label   string
	buffers []Buffer
}

// BufferSet owns a group of buffers that are always replaced together.
type BufferSet interface {
	// Replace creates one buffer per descriptor. Only once every creation has succeeded are the
	// previously owned buffers released and the new ones installed. On failure the buffers created
	// so far are released, the previous group stays installed and the error is returned.
	//
	// Parameters:
	//   - descs: the descriptors of the replacement buffers, in slot order
	//
	// Returns:
	//   - error: nil if the new group is installed
	Replace(descs ...BufferDescriptor) error

	// Buffer returns the buffer in slot i, or nil if the slot is empty.
	//
	// Parameters:
	//   - i: the slot index
	//
	// Returns:
	//   - Buffer: the buffer handle or nil
	Buffer(i int) Buffer

	// Len returns the number of installed buffers.
	//
	// Returns:
	//   - int: the buffer count
	Len() int

	// Release frees every owned buffer. It is safe to call more than once.
	Release()
}

var _ BufferSet = &bufferSet{}

// NewBufferSet creates an empty BufferSet that allocates from backend.
//
// Parameters:
//   - backend: the allocator for replacement buffers
//   - label: a name used in error messages
//
// Returns:
//   - BufferSet: the newly created set
func NewBufferSet(backend Backend, label string) BufferSet {
	return &bufferSet{
		mu:      &sync.Mutex{},
		backend: backend,
		label:   label,
	}
}

func (s *bufferSet) Replace(descs ...BufferDescriptor) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	created := make([]Buffer, 0, len(descs))
	for _, desc := range descs {
		buf, err := s.backend.CreateBuffer(desc)
		if err != nil {
			for _, b := range created {
				b.Release()
			}
			return fmt.Errorf("failed to replace %s buffer %q: %w", s.label, desc.Label, err)
		}
		created = append(created, buf)
	}

	old := s.buffers
	s.buffers = created
	for _, b := range old {
		b.Release()
	}
	return nil
}

func (s *bufferSet) Buffer(i int) Buffer {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i < 0 || i >= len(s.buffers) {
		return nil
	}
	return s.buffers[i]
}

func (s *bufferSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.buffers)
}

func (s *bufferSet) Release() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.buffers {
		b.Release()
	}
	s.buffers = nil
}
