package renderer

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
	"github.com/cogentcore/webgpu/wgpu"
)

// wgpuBuffer is a resource.Buffer backed by a wgpu buffer.
type wgpuBuffer struct {
	mu     *sync.Mutex
	label  string
	size   uint64
	buffer *wgpu.Buffer
}

func (b *wgpuBuffer) Label() string { return b.label }
func (b *wgpuBuffer) Size() uint64  { return b.size }

func (b *wgpuBuffer) Release() {
	if b == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buffer != nil {
		b.buffer.Release()
		b.buffer = nil
	}
}

// wgpuTexture is a resource.Texture backed by a wgpu texture and its default view.
type wgpuTexture struct {
	mu      *sync.Mutex
	desc    resource.TextureDescriptor
	texture *wgpu.Texture
	view    *wgpu.TextureView
}

func (t *wgpuTexture) Label() string                  { return t.desc.Label }
func (t *wgpuTexture) Width() int                     { return t.desc.Width }
func (t *wgpuTexture) Height() int                    { return t.desc.Height }
func (t *wgpuTexture) Format() resource.TextureFormat { return t.desc.Format }

func (t *wgpuTexture) Release() {
	if t == nil {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.view != nil {
		t.view.Release()
		t.view = nil
	}
	if t.texture != nil {
		t.texture.Release()
		t.texture = nil
	}
}

// BufferHandle returns the wgpu buffer behind buf so a stage can bind it.
//
// Parameters:
//   - buf: a buffer created by a Renderer
//
// Returns:
//   - *wgpu.Buffer: the wgpu buffer, or nil if buf was released or created by another backend
func BufferHandle(buf resource.Buffer) *wgpu.Buffer {
	b, ok := buf.(*wgpuBuffer)
	if !ok || b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buffer
}

// TextureView returns the default view of tex so a stage can bind it.
//
// Parameters:
//   - tex: a texture created by a Renderer
//
// Returns:
//   - *wgpu.TextureView: the view, or nil if tex was released or created by another backend
func TextureView(tex resource.Texture) *wgpu.TextureView {
	t, ok := tex.(*wgpuTexture)
	if !ok || t == nil {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.view
}

// bufferUsage converts resource buffer usage bits to wgpu usage bits.
func bufferUsage(u resource.BufferUsage) wgpu.BufferUsage {
	var out wgpu.BufferUsage
	if u&resource.BufferUsageStorage != 0 {
		out |= wgpu.BufferUsageStorage
	}
	if u&resource.BufferUsageUniform != 0 {
		out |= wgpu.BufferUsageUniform
	}
	if u&resource.BufferUsageCopySrc != 0 {
		out |= wgpu.BufferUsageCopySrc
	}
	if u&resource.BufferUsageCopyDst != 0 {
		out |= wgpu.BufferUsageCopyDst
	}
	return out
}

// textureFormat converts a resource texture format to its wgpu equivalent.
func textureFormat(f resource.TextureFormat) wgpu.TextureFormat {
	switch f {
	case resource.TextureFormatRG16Float:
		return wgpu.TextureFormatRG16Float
	case resource.TextureFormatRGBA32Float:
		return wgpu.TextureFormatRGBA32Float
	default:
		return wgpu.TextureFormatRGBA16Float
	}
}

// textureUsage returns the usage for a history or G-buffer texture of the given format.
// rg16float is not a storage format in WebGPU, so motion textures are render targets instead.
func textureUsage(f resource.TextureFormat) wgpu.TextureUsage {
	usage := wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst | wgpu.TextureUsageCopySrc
	switch f {
	case resource.TextureFormatRGBA16Float, resource.TextureFormatRGBA32Float:
		usage |= wgpu.TextureUsageStorageBinding
	default:
		usage |= wgpu.TextureUsageRenderAttachment
	}
	return usage
}
