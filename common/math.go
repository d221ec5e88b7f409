package common

import (
	"encoding/binary"
	"math"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// PerspectiveZO creates a right-handed perspective projection matrix that maps depth to the
// WebGPU clip range [0, 1]. mgl32.Perspective targets the OpenGL range [-1, 1] instead.
//
// Parameters:
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
//
// Returns:
//   - mgl32.Mat4: the column-major projection matrix
func PerspectiveZO(fovY, aspect, near, far float32) mgl32.Mat4 {
	f := 1.0 / math32.Tan(fovY/2.0)

	var out mgl32.Mat4
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1.0
	out[14] = (near * far) / (near - far)
	return out
}

// MaxAbsDiff returns the largest absolute element-wise difference between two matrices.
// It is the camera motion metric used to decide whether accumulated history is still valid.
//
// Parameters:
//   - a: the first matrix
//   - b: the second matrix
//
// Returns:
//   - float32: max |a[i] - b[i]| over all 16 elements
func MaxAbsDiff(a, b mgl32.Mat4) float32 {
	var m float32
	for i := range a {
		if d := math32.Abs(a[i] - b[i]); d > m {
			m = d
		}
	}
	return m
}

// PutFloat32 writes a little-endian float32 at the given byte offset.
func PutFloat32(buf []byte, offset int, v float32) {
	binary.LittleEndian.PutUint32(buf[offset:], math.Float32bits(v))
}

// PutVec3 writes three little-endian float32 values starting at the given byte offset.
func PutVec3(buf []byte, offset int, v [3]float32) {
	for i := range 3 {
		PutFloat32(buf, offset+i*4, v[i])
	}
}

// PutMat4 writes a column-major 4x4 matrix as 16 little-endian float32 values.
func PutMat4(buf []byte, offset int, m mgl32.Mat4) {
	for i := range 16 {
		PutFloat32(buf, offset+i*4, m[i])
	}
}

// PutInt32 writes a little-endian int32 at the given byte offset.
func PutInt32(buf []byte, offset int, v int32) {
	binary.LittleEndian.PutUint32(buf[offset:], uint32(v))
}

// PutUint32 writes a little-endian uint32 at the given byte offset.
func PutUint32(buf []byte, offset int, v uint32) {
	binary.LittleEndian.PutUint32(buf[offset:], v)
}
