package engine

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/bvh"
	"github.com/Carmen-Shannon/oxy-trace/engine/environment"
	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/shader"
)

// verifyGPULayouts checks the WGSL declarations shared with stage shaders against the
// byte offsets the Go side writes.
func verifyGPULayouts() error {
	checks := []struct {
		source  string
		name    string
		size    uint64
		offsets map[string]uint64
	}{
		{frame.GPUFrameUniformSource, "FrameUniform", frame.GPUFrameUniformSize, map[string]uint64{
			"prev_view_proj": 64,
			"cam_pos":        128,
			"frame_index":    140,
			"jitter":         144,
			"node_count":     152,
			"spp":            160,
			"flags":          172,
		}},
		{bvh.GPUSource, "BVHNode", bvh.GPUNodeSize, map[string]uint64{
			"left":  12,
			"bmax":  16,
			"right": 28,
			"first": 32,
			"count": 36,
		}},
		{bvh.GPUSource, "Triangle", bvh.GPUTriangleSize, map[string]uint64{
			"e1": 16,
			"e2": 32,
		}},
		{environment.GPUSource, "EnvMapHeader", environment.GPUHeaderSize, map[string]uint64{
			"face_size":   0,
			"placeholder": 4,
		}},
		{environment.GPUSource, "EnvMap", environment.GPUHeaderSize, map[string]uint64{
			"texels": environment.GPUHeaderSize,
		}},
	}

	for _, c := range checks {
		if err := shader.Expect(c.source, c.name, c.size, c.offsets); err != nil {
			return fmt.Errorf("failed to verify gpu layout: %w", err)
		}
	}
	return nil
}
