package shader

import (
	"errors"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-trace/engine/bvh"
	"github.com/Carmen-Shannon/oxy-trace/engine/frame"
)

func TestFrameUniformLayout(t *testing.T) {
	layouts, err := ParseLayouts(frame.GPUFrameUniformSource)
	if err != nil {
		t.Fatalf("ParseLayouts: %v", err)
	}
	fu, ok := layouts["FrameUniform"]
	if !ok {
		t.Fatalf("FrameUniform not parsed, got %v", layouts)
	}
	if fu.Size != frame.GPUFrameUniformSize {
		t.Fatalf("size = %d, want %d", fu.Size, frame.GPUFrameUniformSize)
	}
	if fu.Align != 16 {
		t.Fatalf("align = %d, want 16", fu.Align)
	}

	want := map[string]uint64{
		"curr_view_proj": 0,
		"prev_view_proj": 64,
		"cam_pos":        128,
		"frame_index":    140,
		"jitter":         144,
		"node_count":     152,
		"tri_count":      156,
		"spp":            160,
		"exposure":       164,
		"motion_scale":   168,
		"flags":          172,
	}
	if len(fu.Fields) != len(want) {
		t.Fatalf("fields = %d, want %d", len(fu.Fields), len(want))
	}
	for name, off := range want {
		f, ok := fu.Field(name)
		if !ok {
			t.Fatalf("missing field %s", name)
		}
		if f.Offset != off {
			t.Errorf("%s offset = %d, want %d", name, f.Offset, off)
		}
	}
}

func TestBVHRecordLayouts(t *testing.T) {
	if err := Expect(bvh.GPUSource, "BVHNode", bvh.GPUNodeSize, map[string]uint64{"bmax": 16, "first": 32, "_pad1": 44}); err != nil {
		t.Fatalf("BVHNode: %v", err)
	}
	if err := Expect(bvh.GPUSource, "Triangle", bvh.GPUTriangleSize, map[string]uint64{"v0": 0, "e1": 16, "e2": 32}); err != nil {
		t.Fatalf("Triangle: %v", err)
	}
}

func TestExpectMismatch(t *testing.T) {
	err := Expect(bvh.GPUSource, "BVHNode", 64, nil)
	if !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("err = %v, want ErrLayoutMismatch", err)
	}

	err = Expect(bvh.GPUSource, "Triangle", bvh.GPUTriangleSize, map[string]uint64{"e1": 12})
	if !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("err = %v, want ErrLayoutMismatch", err)
	}

	err = Expect(bvh.GPUSource, "Triangle", bvh.GPUTriangleSize, map[string]uint64{"normal": 0})
	if !errors.Is(err, ErrLayoutMismatch) {
		t.Fatalf("err = %v, want ErrLayoutMismatch", err)
	}

	err = Expect(bvh.GPUSource, "Sphere", 16, nil)
	if !errors.Is(err, ErrStructNotFound) {
		t.Fatalf("err = %v, want ErrStructNotFound", err)
	}
}

func TestParseLayoutsNestedAndCommented(t *testing.T) {
	src := `
/* leading /* nested */ comment */
struct Outer {
    inner: Inner, // declared later
    weights: array<vec4<f32>, 2>,
    tail: f32,
};

struct Inner {
    a: vec3<f32>,
    b: f32,
};

struct VertexOut {
    @builtin(position) pos: vec4<f32>,
    @location(0) uv: vec2<f32>,
};

struct Nodes {
    count: u32,
    items: array<Inner>,
};
`
	layouts, err := ParseLayouts(src)
	if err != nil {
		t.Fatalf("ParseLayouts: %v", err)
	}

	if got := layouts["Inner"].Size; got != 16 {
		t.Fatalf("Inner size = %d, want 16", got)
	}

	outer := layouts["Outer"]
	if outer.Size != 64 {
		t.Fatalf("Outer size = %d, want 64", outer.Size)
	}
	if f, _ := outer.Field("weights"); f.Offset != 16 || f.Size != 32 {
		t.Fatalf("weights = %+v, want offset 16 size 32", f)
	}
	if f, _ := outer.Field("tail"); f.Offset != 48 {
		t.Fatalf("tail offset = %d, want 48", f.Offset)
	}

	vo := layouts["VertexOut"]
	if _, ok := vo.Field("pos"); ok {
		t.Fatalf("builtin member should be skipped")
	}
	if vo.Size != 8 {
		t.Fatalf("VertexOut size = %d, want 8", vo.Size)
	}

	nodes := layouts["Nodes"]
	if !nodes.RuntimeSized {
		t.Fatalf("Nodes should be runtime sized")
	}
	if f, _ := nodes.Field("items"); f.Offset != 16 || f.Size != 16 {
		t.Fatalf("items = %+v, want offset 16 size 16", f)
	}
	if nodes.Size != 16 {
		t.Fatalf("Nodes prefix size = %d, want 16", nodes.Size)
	}
}

func TestParseLayoutsUnresolved(t *testing.T) {
	src := `
struct Known { a: u32, };
struct Broken { t: texture_2d<f32>, };
struct Misplaced { items: array<u32>, after: u32, };
`
	layouts, err := ParseLayouts(src)
	if err == nil {
		t.Fatalf("expected error for unresolved structs")
	}
	if !strings.Contains(err.Error(), "Broken, Misplaced") {
		t.Fatalf("err = %v, want both unresolved names", err)
	}
	if layouts["Known"].Size != 4 {
		t.Fatalf("Known size = %d, want 4", layouts["Known"].Size)
	}
}
