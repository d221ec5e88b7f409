package environment

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

// GPUHeaderSize is the byte size of the header in front of the texels.
const GPUHeaderSize = 16

// GPUSource is the canonical WGSL definition of the EnvMap storage buffer.
//
//go:embed assets/environment.wgsl
var GPUSource string

// GPUHeader is the GPU-aligned header of the environment storage buffer.
// Size: 16 bytes.
type GPUHeader struct {
	FaceSize    uint32    // offset 0
	Placeholder uint32    // offset 4
	_pad        [2]uint32 // offset 8
}

// Size returns the size of the GPUHeader struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUHeader) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the header into a little-endian byte buffer.
//
// Returns:
//   - []byte: 16-byte buffer
func (g *GPUHeader) Marshal() []byte {
	buf := make([]byte, GPUHeaderSize)
	common.PutUint32(buf, 0, g.FaceSize)
	common.PutUint32(buf, 4, g.Placeholder)
	return buf
}

// MarshalFaces serializes the header followed by the six faces in Face order.
// Each texel is one u32 with red in the low byte, the layout unpack4x8unorm expects.
//
// Parameters:
//   - fs: validated faces
//   - placeholder: whether the faces are the built-in placeholder
//
// Returns:
//   - []byte: the storage buffer contents
func MarshalFaces(fs *Faces, placeholder bool) []byte {
	row := fs.Size * 4
	buf := make([]byte, GPUHeaderSize+6*fs.Size*row)

	h := GPUHeader{FaceSize: uint32(fs.Size)}
	if placeholder {
		h.Placeholder = 1
	}
	copy(buf, h.Marshal())

	off := GPUHeaderSize
	for _, img := range fs.Faces {
		for y := 0; y < fs.Size; y++ {
			start := y * img.Stride
			copy(buf[off:off+row], img.Pix[start:start+row])
			off += row
		}
	}
	return buf
}
