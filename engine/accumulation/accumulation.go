package accumulation

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
)

var logger = log.New("accumulation")

// Texture formats of the history targets.
const (
	ColorFormat  = resource.TextureFormatRGBA16Float
	MotionFormat = resource.TextureFormatRG16Float
)

// buffer is the implementation of the Buffer interface.
type buffer struct {
	mu *sync.Mutex

	backend resource.Backend

	color      [2]resource.Texture
	motion     resource.Texture
	writeIndex int
	frameIndex uint32
	width      int
	height     int
}

// Buffer is the double-buffered temporal history of the progressive renderer: two color targets
// that alternate between read and write roles plus a motion-vector target. It also owns the frame
// counter the stage uses to weight new samples against history.
type Buffer interface {
	// Recreate sizes the history to width x height.
	// Non-positive sizes are ignored. Recreating at the current size only resets.
	// Any other size releases every texture, allocates new ones, clears all three and resets
	// the counters. If an allocation fails, the textures created so far are released and the
	// buffer is left empty.
	//
	// Parameters:
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//
	// Returns:
	//   - error: an error if allocation or clearing failed
	Recreate(width, height int) error

	// Reset discards history without reallocating: the current write target and the motion
	// target are cleared, frameIndex returns to 0 and writeIndex to 0.
	// Before the first successful Recreate it does nothing.
	//
	// Returns:
	//   - error: an error if a clear failed
	Reset() error

	// SwapAfterFrame advances the frame counter and exchanges the read and write roles.
	// It is the only operation that increments the frame counter.
	SwapAfterFrame()

	// ReadTex returns the history target the stage samples this frame.
	//
	// Returns:
	//   - resource.Texture: the read target, nil before Recreate
	ReadTex() resource.Texture

	// WriteTex returns the history target the stage writes this frame.
	//
	// Returns:
	//   - resource.Texture: the write target, nil before Recreate
	WriteTex() resource.Texture

	// MotionTex returns the motion-vector target.
	//
	// Returns:
	//   - resource.Texture: the motion target, nil before Recreate
	MotionTex() resource.Texture

	FrameIndex() uint32
	WriteIndex() int
	Width() int
	Height() int

	// Release frees all textures. It is safe to call more than once.
	Release()
}

var _ Buffer = &buffer{}

// NewBuffer creates an empty accumulation Buffer. Call Recreate before use.
//
// Parameters:
//   - backend: the allocator for the history textures
//
// Returns:
//   - Buffer: the newly created accumulation buffer
func NewBuffer(backend resource.Backend) Buffer {
	return &buffer{
		mu:      &sync.Mutex{},
		backend: backend,
	}
}

func (b *buffer) Recreate(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.allocated() && width == b.width && height == b.height {
		return b.reset()
	}

	b.release()

	var err error
	for i := range b.color {
		b.color[i], err = b.backend.CreateTexture(resource.TextureDescriptor{
			Label:  fmt.Sprintf("accum_color_%d", i),
			Width:  width,
			Height: height,
			Format: ColorFormat,
		})
		if err != nil {
			b.release()
			return fmt.Errorf("failed to create accumulation texture %d: %w", i, err)
		}
	}
	b.motion, err = b.backend.CreateTexture(resource.TextureDescriptor{
		Label:  "accum_motion",
		Width:  width,
		Height: height,
		Format: MotionFormat,
	})
	if err != nil {
		b.release()
		return fmt.Errorf("failed to create motion texture: %w", err)
	}

	for _, tex := range []resource.Texture{b.color[0], b.color[1], b.motion} {
		if err := b.backend.ClearTexture(tex); err != nil {
			b.release()
			return fmt.Errorf("failed to clear %s: %w", tex.Label(), err)
		}
	}

	b.width = width
	b.height = height
	b.frameIndex = 0
	b.writeIndex = 0
	logger.Infof("recreated history at %dx%d", width, height)
	return nil
}

func (b *buffer) Reset() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.allocated() {
		return nil
	}
	return b.reset()
}

// reset rewinds the counters first so the cleared color target is the one written next.
func (b *buffer) reset() error {
	b.frameIndex = 0
	b.writeIndex = 0
	if err := b.backend.ClearTexture(b.color[b.writeIndex]); err != nil {
		return fmt.Errorf("failed to clear accumulation texture: %w", err)
	}
	if err := b.backend.ClearTexture(b.motion); err != nil {
		return fmt.Errorf("failed to clear motion texture: %w", err)
	}
	return nil
}

func (b *buffer) SwapAfterFrame() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.frameIndex++
	b.writeIndex = 1 - b.writeIndex
}

func (b *buffer) ReadTex() resource.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color[1-b.writeIndex]
}

func (b *buffer) WriteTex() resource.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.color[b.writeIndex]
}

func (b *buffer) MotionTex() resource.Texture {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.motion
}

func (b *buffer) FrameIndex() uint32 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.frameIndex
}

func (b *buffer) WriteIndex() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writeIndex
}

func (b *buffer) Width() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.width
}

func (b *buffer) Height() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.height
}

func (b *buffer) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.release()
}

func (b *buffer) allocated() bool {
	return b.color[0] != nil && b.color[1] != nil && b.motion != nil
}

func (b *buffer) release() {
	for i, tex := range b.color {
		if tex != nil {
			tex.Release()
			b.color[i] = nil
		}
	}
	if b.motion != nil {
		b.motion.Release()
		b.motion = nil
	}
	b.width = 0
	b.height = 0
	b.frameIndex = 0
	b.writeIndex = 0
}
