package resource

import "fmt"

// BufferUsage describes how a buffer is bound by the stage.
type BufferUsage uint32

const (
	BufferUsageStorage BufferUsage = 1 << iota
	BufferUsageUniform
	BufferUsageCopySrc
	BufferUsageCopyDst
)

// TextureFormat is the texel layout of a texture.
type TextureFormat int

const (
	TextureFormatRGBA16Float TextureFormat = iota
	TextureFormatRG16Float
	TextureFormatRGBA32Float
)

// BytesPerPixel returns the size of one texel.
//
// Returns:
//   - int: the texel size in bytes
func (f TextureFormat) BytesPerPixel() int {
	switch f {
	case TextureFormatRG16Float:
		return 4
	case TextureFormatRGBA32Float:
		return 16
	default:
		return 8
	}
}

func (f TextureFormat) String() string {
	switch f {
	case TextureFormatRGBA16Float:
		return "rgba16float"
	case TextureFormatRG16Float:
		return "rg16float"
	case TextureFormatRGBA32Float:
		return "rgba32float"
	default:
		return fmt.Sprintf("TextureFormat(%d)", int(f))
	}
}

// BufferDescriptor describes a buffer to create.
// When Contents is set the buffer is created with max(Size, len(Contents)) bytes and
// initialized with Contents.
type BufferDescriptor struct {
	Label    string
	Usage    BufferUsage
	Size     uint64
	Contents []byte
}

// TextureDescriptor describes a 2D texture to create.
type TextureDescriptor struct {
	Label  string
	Width  int
	Height int
	Format TextureFormat
}

// Buffer is a device buffer handle. Release is idempotent.
type Buffer interface {
	Label() string
	Size() uint64
	Release()
}

// Texture is a device 2D texture handle. Release is idempotent.
type Texture interface {
	Label() string
	Width() int
	Height() int
	Format() TextureFormat
	Release()
}

// Backend allocates and writes device resources.
// The wgpu renderer implements it for real devices and MemoryBackend implements it in host memory.
type Backend interface {
	// CreateBuffer allocates a buffer and uploads the descriptor contents, if any.
	//
	// Parameters:
	//   - desc: the buffer description
	//
	// Returns:
	//   - Buffer: the new buffer handle
	//   - error: an error if the allocation failed
	CreateBuffer(desc BufferDescriptor) (Buffer, error)

	// WriteBuffer copies data into a buffer at the given byte offset.
	//
	// Parameters:
	//   - buf: the destination buffer
	//   - offset: the byte offset into buf
	//   - data: the bytes to write
	//
	// Returns:
	//   - error: an error if the write is out of range or buf was released
	WriteBuffer(buf Buffer, offset uint64, data []byte) error

	// CreateTexture allocates a 2D texture. Its initial contents are undefined until cleared.
	//
	// Parameters:
	//   - desc: the texture description
	//
	// Returns:
	//   - Texture: the new texture handle
	//   - error: an error if the allocation failed
	CreateTexture(desc TextureDescriptor) (Texture, error)

	// ClearTexture sets every texel of tex to zero.
	//
	// Parameters:
	//   - tex: the texture to clear
	//
	// Returns:
	//   - error: an error if tex was released or is foreign to this backend
	ClearTexture(tex Texture) error
}
