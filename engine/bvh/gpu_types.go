package bvh

import (
	_ "embed"
	"unsafe"

	"github.com/Carmen-Shannon/oxy-trace/common"
	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
)

// GPUNodeSize and GPUTriangleSize are the strides of the two storage buffer records.
const (
	GPUNodeSize     = 48
	GPUTriangleSize = 48
)

// GPUSource is the canonical WGSL definition of the BVHNode and Triangle structs.
// Stage shaders include it so their storage buffer bindings match GPUNode and GPUTriangle.
//
//go:embed assets/bvh.wgsl
var GPUSource string

// GPUNode is the GPU-aligned representation of a Node.
// Size: 48 bytes, 16-byte aligned.
type GPUNode struct {
	BMin  [3]float32 // offset  0
	Left  int32      // offset 12
	BMax  [3]float32 // offset 16
	Right int32      // offset 28
	First int32      // offset 32
	Count int32      // offset 36
	_pad  [2]int32   // offset 40
}

// NewGPUNode converts a Node to its GPU record.
//
// Parameters:
//   - n: the node to convert
//
// Returns:
//   - GPUNode: the GPU record
func NewGPUNode(n Node) GPUNode {
	return GPUNode{
		BMin:  n.BMin,
		Left:  n.Left,
		BMax:  n.BMax,
		Right: n.Right,
		First: n.First,
		Count: n.Count,
	}
}

// Size returns the size of the GPUNode struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUNode) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUNode into a little-endian byte buffer.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUNode) Marshal() []byte {
	buf := make([]byte, GPUNodeSize)
	g.put(buf)
	return buf
}

func (g *GPUNode) put(buf []byte) {
	common.PutVec3(buf, 0, g.BMin)
	common.PutInt32(buf, 12, g.Left)
	common.PutVec3(buf, 16, g.BMax)
	common.PutInt32(buf, 28, g.Right)
	common.PutInt32(buf, 32, g.First)
	common.PutInt32(buf, 36, g.Count)
}

// GPUTriangle is the GPU-aligned representation of a geometry.Triangle.
// Each vec3 is padded to 16 bytes. Size: 48 bytes.
type GPUTriangle struct {
	V0    [3]float32 // offset  0
	_pad0 float32    // offset 12
	E1    [3]float32 // offset 16
	_pad1 float32    // offset 28
	E2    [3]float32 // offset 32
	_pad2 float32    // offset 44
}

// NewGPUTriangle converts a Triangle to its GPU record.
//
// Parameters:
//   - t: the triangle to convert
//
// Returns:
//   - GPUTriangle: the GPU record
func NewGPUTriangle(t geometry.Triangle) GPUTriangle {
	return GPUTriangle{V0: t.V0, E1: t.E1, E2: t.E2}
}

// Size returns the size of the GPUTriangle struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUTriangle) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUTriangle into a little-endian byte buffer.
//
// Returns:
//   - []byte: 48-byte buffer ready for GPU upload
func (g *GPUTriangle) Marshal() []byte {
	buf := make([]byte, GPUTriangleSize)
	g.put(buf)
	return buf
}

func (g *GPUTriangle) put(buf []byte) {
	common.PutVec3(buf, 0, g.V0)
	common.PutVec3(buf, 16, g.E1)
	common.PutVec3(buf, 32, g.E2)
}

// MarshalNodes serializes nodes back to back in GPUNode records.
// An empty slice produces a single zeroed record, since storage buffers cannot be empty.
//
// Parameters:
//   - nodes: the flattened hierarchy
//
// Returns:
//   - []byte: len(nodes)*48 bytes, or 48 zero bytes for an empty hierarchy
func MarshalNodes(nodes []Node) []byte {
	buf := make([]byte, max(len(nodes), 1)*GPUNodeSize)
	for i, n := range nodes {
		g := NewGPUNode(n)
		g.put(buf[i*GPUNodeSize:])
	}
	return buf
}

// MarshalTriangles serializes triangles back to back in GPUTriangle records.
// An empty slice produces a single zeroed record.
//
// Parameters:
//   - tris: the triangles in BVH order
//
// Returns:
//   - []byte: len(tris)*48 bytes, or 48 zero bytes for no triangles
func MarshalTriangles(tris []geometry.Triangle) []byte {
	buf := make([]byte, max(len(tris), 1)*GPUTriangleSize)
	for i, t := range tris {
		g := NewGPUTriangle(t)
		g.put(buf[i*GPUTriangleSize:])
	}
	return buf
}
