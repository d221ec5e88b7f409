package frame

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-trace/common"
)

// GPUFrameUniformSize is the byte size of the per-frame uniform block.
const GPUFrameUniformSize = 176

// Mode bits packed into GPUFrameUniform.Flags.
const (
	FlagRayMode uint32 = 1 << iota
	FlagUseBVH
	FlagShowMotion
)

// GPUFrameUniformSource is the canonical WGSL definition of the FrameUniform struct.
//
//go:embed assets/frame.wgsl
var GPUFrameUniformSource string

// GPUFrameUniform is the per-frame uniform block handed to the stage.
// Matches the WGSL FrameUniform layout exactly (see GPUFrameUniformSource).
// Size: 176 bytes.
type GPUFrameUniform struct {
	CurrViewProj [16]float32 // offset   0
	PrevViewProj [16]float32 // offset  64
	CamPos       [3]float32  // offset 128
	FrameIndex   uint32      // offset 140
	Jitter       [2]float32  // offset 144
	NodeCount    uint32      // offset 152
	TriCount     uint32      // offset 156
	SPP          uint32      // offset 160
	Exposure     float32     // offset 164
	MotionScale  float32     // offset 168
	Flags        uint32      // offset 172
}

// NewGPUFrameUniform fills the camera part of the uniform from a State.
// Counts, sample settings and flags are left for the caller.
//
// Parameters:
//   - s: the frame state after BeginFrame and UpdateJitter
//   - frameIndex: the accumulation frame counter
//
// Returns:
//   - GPUFrameUniform: the partially filled uniform
func NewGPUFrameUniform(s *State, frameIndex uint32) GPUFrameUniform {
	return GPUFrameUniform{
		CurrViewProj: s.currViewProj,
		PrevViewProj: s.prevViewProj,
		CamPos:       s.currCamPos,
		FrameIndex:   frameIndex,
		Jitter:       s.jitter,
	}
}

// Size returns the size of the GPUFrameUniform struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (176)
func (g *GPUFrameUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into a little-endian byte buffer.
//
// Returns:
//   - []byte: 176-byte buffer ready for GPU upload
func (g *GPUFrameUniform) Marshal() []byte {
	buf := make([]byte, GPUFrameUniformSize)
	common.PutMat4(buf, 0, g.CurrViewProj)
	common.PutMat4(buf, 64, g.PrevViewProj)
	common.PutVec3(buf, 128, g.CamPos)
	common.PutUint32(buf, 140, g.FrameIndex)
	common.PutFloat32(buf, 144, g.Jitter[0])
	common.PutFloat32(buf, 148, g.Jitter[1])
	common.PutUint32(buf, 152, g.NodeCount)
	common.PutUint32(buf, 156, g.TriCount)
	common.PutUint32(buf, 160, g.SPP)
	common.PutFloat32(buf, 164, g.Exposure)
	common.PutFloat32(buf, 168, g.MotionScale)
	common.PutUint32(buf, 172, g.Flags)
	return buf
}
