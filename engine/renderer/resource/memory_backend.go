package resource

import (
	"errors"
	"fmt"
	"sync"
)

var (
	// ErrBudgetExceeded is returned when an allocation would exceed the memory backend budget.
	ErrBudgetExceeded = errors.New("allocation budget exceeded")

	// ErrReleased is returned when a released handle is written or cleared.
	ErrReleased = errors.New("resource already released")

	// ErrForeignResource is returned when a handle from another backend is passed in.
	ErrForeignResource = errors.New("resource belongs to another backend")
)

// MemoryBackend is a host-memory Backend.
// Buffers keep their bytes so tests can inspect uploads; textures only account for their size and
// count clears. An optional budget makes allocations fail once live bytes would exceed it.
type MemoryBackend struct {
	mu *sync.Mutex

	budget    uint64
	liveBytes uint64
	buffers   map[*memoryBuffer]struct{}
	textures  map[*memoryTexture]struct{}
}

var _ Backend = &MemoryBackend{}

// NewMemoryBackend creates a MemoryBackend with no budget.
//
// Parameters:
//   - options: functional options to configure the backend
//
// Returns:
//   - *MemoryBackend: the newly created backend
func NewMemoryBackend(options ...MemoryBackendOption) *MemoryBackend {
	m := &MemoryBackend{
		mu:       &sync.Mutex{},
		buffers:  make(map[*memoryBuffer]struct{}),
		textures: make(map[*memoryTexture]struct{}),
	}
	for _, opt := range options {
		opt(m)
	}
	return m
}

// SetBudget changes the allocation budget. Zero disables it.
// Live allocations are never evicted by a lower budget; only later allocations fail.
//
// Parameters:
//   - bytes: the maximum number of live bytes
func (m *MemoryBackend) SetBudget(bytes uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.budget = bytes
}

// LiveBytes returns the total size of unreleased buffers and textures.
func (m *MemoryBackend) LiveBytes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.liveBytes
}

// LiveBuffers returns the number of unreleased buffers.
func (m *MemoryBackend) LiveBuffers() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.buffers)
}

// LiveTextures returns the number of unreleased textures.
func (m *MemoryBackend) LiveTextures() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.textures)
}

// BufferData returns a copy of a buffer's bytes, or nil for a foreign or released buffer.
//
// Parameters:
//   - buf: a buffer created by this backend
//
// Returns:
//   - []byte: a copy of the buffer contents
func (m *MemoryBackend) BufferData(buf Buffer) []byte {
	b, ok := buf.(*memoryBuffer)
	if !ok || b.owner != m {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.released {
		return nil
	}
	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out
}

// TextureClears returns how many times tex has been cleared, or -1 for a foreign texture.
//
// Parameters:
//   - tex: a texture created by this backend
//
// Returns:
//   - int: the clear count
func (m *MemoryBackend) TextureClears(tex Texture) int {
	t, ok := tex.(*memoryTexture)
	if !ok || t.owner != m {
		return -1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return t.clears
}

func (m *MemoryBackend) CreateBuffer(desc BufferDescriptor) (Buffer, error) {
	size := max(desc.Size, uint64(len(desc.Contents)))
	if size == 0 {
		return nil, fmt.Errorf("failed to create buffer %q: zero size", desc.Label)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reserve(size); err != nil {
		return nil, fmt.Errorf("failed to create buffer %q: %w", desc.Label, err)
	}

	b := &memoryBuffer{owner: m, label: desc.Label, data: make([]byte, size)}
	copy(b.data, desc.Contents)
	m.buffers[b] = struct{}{}
	return b, nil
}

func (m *MemoryBackend) WriteBuffer(buf Buffer, offset uint64, data []byte) error {
	b, ok := buf.(*memoryBuffer)
	if !ok || b.owner != m {
		return ErrForeignResource
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if b.released {
		return fmt.Errorf("failed to write buffer %q: %w", b.label, ErrReleased)
	}
	if offset+uint64(len(data)) > uint64(len(b.data)) {
		return fmt.Errorf("failed to write buffer %q: %d bytes at offset %d exceed size %d", b.label, len(data), offset, len(b.data))
	}
	copy(b.data[offset:], data)
	return nil
}

func (m *MemoryBackend) CreateTexture(desc TextureDescriptor) (Texture, error) {
	if desc.Width <= 0 || desc.Height <= 0 {
		return nil, fmt.Errorf("failed to create texture %q: invalid size %dx%d", desc.Label, desc.Width, desc.Height)
	}
	size := uint64(desc.Width) * uint64(desc.Height) * uint64(desc.Format.BytesPerPixel())

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.reserve(size); err != nil {
		return nil, fmt.Errorf("failed to create texture %q: %w", desc.Label, err)
	}

	t := &memoryTexture{owner: m, desc: desc, size: size}
	m.textures[t] = struct{}{}
	return t, nil
}

func (m *MemoryBackend) ClearTexture(tex Texture) error {
	t, ok := tex.(*memoryTexture)
	if !ok || t.owner != m {
		return ErrForeignResource
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t.released {
		return fmt.Errorf("failed to clear texture %q: %w", t.desc.Label, ErrReleased)
	}
	t.clears++
	return nil
}

func (m *MemoryBackend) reserve(size uint64) error {
	if m.budget > 0 && m.liveBytes+size > m.budget {
		return fmt.Errorf("%w: %d live + %d requested > %d", ErrBudgetExceeded, m.liveBytes, size, m.budget)
	}
	m.liveBytes += size
	return nil
}

type memoryBuffer struct {
	owner    *MemoryBackend
	label    string
	data     []byte
	released bool
}

func (b *memoryBuffer) Label() string { return b.label }
func (b *memoryBuffer) Size() uint64  { return uint64(len(b.data)) }

func (b *memoryBuffer) Release() {
	m := b.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if b.released {
		return
	}
	b.released = true
	m.liveBytes -= uint64(len(b.data))
	delete(m.buffers, b)
}

type memoryTexture struct {
	owner    *MemoryBackend
	desc     TextureDescriptor
	size     uint64
	clears   int
	released bool
}

func (t *memoryTexture) Label() string         { return t.desc.Label }
func (t *memoryTexture) Width() int            { return t.desc.Width }
func (t *memoryTexture) Height() int           { return t.desc.Height }
func (t *memoryTexture) Format() TextureFormat { return t.desc.Format }

func (t *memoryTexture) Release() {
	m := t.owner
	m.mu.Lock()
	defer m.mu.Unlock()
	if t.released {
		return
	}
	t.released = true
	m.liveBytes -= t.size
	delete(m.textures, t)
}
