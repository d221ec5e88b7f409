package renderer

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

var logger = log.New("renderer")

// SurfaceSource is anything that can host a presentable GPU surface, typically a desktop window.
type SurfaceSource interface {
	SurfaceDescriptor() *wgpu.SurfaceDescriptor
	Width() int
	Height() int
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	backend RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	presentMode          PresentMode
	clearColor           wgpu.Color

	released bool
}

// Renderer is the GPU device behind the frame loop.
//
// It allocates the device resources the core packages own through the resource.Backend methods,
// and drives the presentable surface: a frame is BeginFrame, the stage's encoding, EndFrame and Present.
type Renderer interface {
	resource.Backend

	// Resize reconfigures the surface for a new framebuffer size.
	// Non-positive sizes are ignored (minimized windows report 0x0).
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. It takes effect on the next Resize.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// BeginFrame acquires the swapchain texture and begins the main render pass, which clears
	// the surface.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	BeginFrame() error

	// EndFrame ends the current render pass and submits the command buffer to the GPU.
	// Does not present the surface. Call Present after EndFrame to display the frame.
	EndFrame()

	// Present presents the surface to the display and releases the swapchain texture.
	Present()

	// Device returns the underlying wgpu device for stages that build their own pipelines.
	//
	// Returns:
	//   - *wgpu.Device: the device
	Device() *wgpu.Device

	// Release destroys the surface, device and instance. It is idempotent.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a wgpu device compatible with the surface of src and configures the surface at
// src's current size.
//
// Parameters:
//   - src: the window that provides the surface descriptor and initial size
//   - options: functional options to configure the renderer
//
// Returns:
//   - Renderer: the newly created renderer
//   - error: an error if no adapter or device could be acquired
func NewRenderer(src SurfaceSource, options ...RendererBuilderOption) (Renderer, error) {
	r := &renderer{
		mu:          &sync.Mutex{},
		presentMode: PresentModeVSync,
		clearColor:  wgpu.Color{R: 0.1, G: 0.1, B: 0.1, A: 1.0},
	}
	for _, opt := range options {
		opt(r)
	}

	backend, err := newWGPURendererBackend(src.SurfaceDescriptor(), r.forceFallbackAdapter, r.clearColor)
	if err != nil {
		return nil, fmt.Errorf("failed to create wgpu backend: %w", err)
	}
	r.backend = backend
	r.backend.SetPresentMode(r.presentMode)
	r.backend.ConfigureSurface(src.Width(), src.Height())
	logger.Infof("renderer ready, surface %dx%d, present mode %s", src.Width(), src.Height(), r.presentMode)
	return r, nil
}

func (r *renderer) CreateBuffer(desc resource.BufferDescriptor) (resource.Buffer, error) {
	return r.backend.CreateBuffer(desc)
}

func (r *renderer) WriteBuffer(buf resource.Buffer, offset uint64, data []byte) error {
	return r.backend.WriteBuffer(buf, offset, data)
}

func (r *renderer) CreateTexture(desc resource.TextureDescriptor) (resource.Texture, error) {
	return r.backend.CreateTexture(desc)
}

func (r *renderer) ClearTexture(tex resource.Texture) error {
	return r.backend.ClearTexture(tex)
}

func (r *renderer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	r.presentMode = mode
	r.mu.Unlock()
	r.backend.SetPresentMode(mode)
}

func (r *renderer) BeginFrame() error {
	return r.backend.BeginFrame()
}

func (r *renderer) EndFrame() {
	r.backend.EndFrame()
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Device() *wgpu.Device {
	return r.backend.Device()
}

func (r *renderer) Release() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.released {
		return
	}
	r.released = true
	r.backend.Release()
}
