package accumulation

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
)

// GBufferFormat is the texel format of both G-buffer targets.
const GBufferFormat = resource.TextureFormatRGBA16Float

// gBuffer is the implementation of the GBuffer interface.
type gBuffer struct {
	mu *sync.Mutex

	backend  resource.Backend
	position resource.Texture
	normal   resource.Texture
	width    int
	height   int
}

// GBuffer holds the world-space position and normal targets the stage writes during the
// primary visibility pass and reads for reprojection and filtering.
type GBuffer interface {
	// Recreate sizes both targets to width x height.
	// Non-positive sizes and the current size are ignored.
	//
	// Parameters:
	//   - width: the target width in pixels
	//   - height: the target height in pixels
	//
	// Returns:
	//   - error: an error if allocation failed, in which case the G-buffer is left empty
	Recreate(width, height int) error

	PositionTex() resource.Texture
	NormalTex() resource.Texture
	Width() int
	Height() int

	// Release frees both targets. It is safe to call more than once.
	Release()
}

var _ GBuffer = &gBuffer{}

// NewGBuffer creates an empty GBuffer. Call Recreate before use.
//
// Parameters:
//   - backend: the allocator for the targets
//
// Returns:
//   - GBuffer: the newly created G-buffer
func NewGBuffer(backend resource.Backend) GBuffer {
	return &gBuffer{
		mu:      &sync.Mutex{},
		backend: backend,
	}
}

func (g *gBuffer) Recreate(width, height int) error {
	if width <= 0 || height <= 0 {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.position != nil && g.normal != nil && width == g.width && height == g.height {
		return nil
	}

	g.release()

	var err error
	g.position, err = g.backend.CreateTexture(resource.TextureDescriptor{
		Label: "gbuffer_position", Width: width, Height: height, Format: GBufferFormat,
	})
	if err != nil {
		g.release()
		return fmt.Errorf("failed to create gbuffer position: %w", err)
	}
	g.normal, err = g.backend.CreateTexture(resource.TextureDescriptor{
		Label: "gbuffer_normal", Width: width, Height: height, Format: GBufferFormat,
	})
	if err != nil {
		g.release()
		return fmt.Errorf("failed to create gbuffer normal: %w", err)
	}

	g.width = width
	g.height = height
	return nil
}

func (g *gBuffer) PositionTex() resource.Texture {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.position
}

func (g *gBuffer) NormalTex() resource.Texture {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.normal
}

func (g *gBuffer) Width() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.width
}

func (g *gBuffer) Height() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.height
}

func (g *gBuffer) Release() {
	if g == nil {
		return
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.release()
}

func (g *gBuffer) release() {
	if g.position != nil {
		g.position.Release()
		g.position = nil
	}
	if g.normal != nil {
		g.normal.Release()
		g.normal = nil
	}
	g.width = 0
	g.height = 0
}
