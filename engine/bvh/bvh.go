package bvh

import (
	"time"

	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
	"github.com/Carmen-Shannon/oxy-trace/engine/log"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultLeafMax is the largest triangle count a leaf may hold unless overridden with WithLeafMax.
const DefaultLeafMax = 8

var logger = log.New("bvh")

// Node is one entry of the flattened hierarchy.
// A leaf (Count > 0) owns triangles [First, First+Count) and has Left == Right == -1.
// An interior node (Count == 0) owns its two children and has First == -1.
type Node struct {
	BMin mgl32.Vec3
	BMax mgl32.Vec3

	Left  int32
	Right int32

	First int32
	Count int32
}

// IsLeaf reports whether the node references a triangle range.
func (n Node) IsLeaf() bool {
	return n.Count > 0
}

// Bounds returns the node box as an AABB.
func (n Node) Bounds() geometry.AABB {
	return geometry.AABB{Min: n.BMin, Max: n.BMax}
}

// builder is the implementation of the Builder interface.
type builder struct {
	leafMax int
}

// Builder turns a triangle soup into a bounding volume hierarchy.
type Builder interface {
	// Build constructs the hierarchy by recursive median split.
	// The triangle slice is permuted in place so that each leaf owns a contiguous range.
	// The root is always node 0. An empty input produces an empty node slice.
	//
	// Parameters:
	//   - tris: the triangles to organize, reordered in place
	//
	// Returns:
	//   - []Node: the flattened hierarchy
	Build(tris []geometry.Triangle) []Node

	// LeafMax returns the maximum number of triangles per leaf.
	//
	// Returns:
	//   - int: the leaf size limit
	LeafMax() int
}

var _ Builder = &builder{}

// NewBuilder creates a new Builder with a leaf limit of DefaultLeafMax.
//
// Parameters:
//   - options: functional options to configure the builder
//
// Returns:
//   - Builder: the newly created builder
func NewBuilder(options ...BuilderOption) Builder {
	b := &builder{leafMax: DefaultLeafMax}
	for _, opt := range options {
		opt(b)
	}
	if b.leafMax < 1 {
		b.leafMax = 1
	}
	return b
}

func (b *builder) LeafMax() int {
	return b.leafMax
}

func (b *builder) Build(tris []geometry.Triangle) []Node {
	if len(tris) == 0 {
		return []Node{}
	}

	start := time.Now()
	s := &buildPass{
		tris:    tris,
		refs:    make([]primRef, len(tris)),
		nodes:   make([]Node, 0, 2*(len(tris)/b.leafMax)+1),
		leafMax: b.leafMax,
	}
	for i, t := range tris {
		s.refs[i] = primRef{bounds: t.Bounds(), centroid: t.Centroid()}
	}
	s.build(0, len(tris))

	logger.Debugf("built %d nodes over %d triangles in %s", len(s.nodes), len(tris), time.Since(start))
	return s.nodes
}

// primRef caches the per-triangle data the split needs for one build pass.
type primRef struct {
	bounds   geometry.AABB
	centroid mgl32.Vec3
}

type buildPass struct {
	tris    []geometry.Triangle
	refs    []primRef
	nodes   []Node
	leafMax int
}

func (s *buildPass) build(first, count int) int32 {
	idx := int32(len(s.nodes))
	s.nodes = append(s.nodes, Node{})

	bounds := geometry.EmptyAABB()
	centroids := geometry.EmptyAABB()
	for i := first; i < first+count; i++ {
		bounds.Extend(s.refs[i].bounds)
		centroids.ExtendPoint(s.refs[i].centroid)
	}

	if count <= s.leafMax {
		s.nodes[idx] = Node{
			BMin:  bounds.Min,
			BMax:  bounds.Max,
			Left:  -1,
			Right: -1,
			First: int32(first),
			Count: int32(count),
		}
		return idx
	}

	// Both halves are non-empty because count > leafMax >= 1.
	mid := first + count/2
	axis := centroids.LargestAxis()
	if centroids.Extent()[axis] > 0 {
		s.selectNth(first, first+count, mid, axis)
	}

	left := s.build(first, mid-first)
	right := s.build(mid, first+count-mid)

	s.nodes[idx] = Node{
		BMin:  bounds.Min,
		BMax:  bounds.Max,
		Left:  left,
		Right: right,
		First: -1,
		Count: 0,
	}
	return idx
}

// selectNth reorders [lo, hi) so that the element at nth has its sorted-order key on the given
// axis, everything before it is not greater and everything after it is not smaller.
// Equal keys are grouped with a three-way partition so runs of identical centroids stay linear.
func (s *buildPass) selectNth(lo, hi, nth, axis int) {
	for hi-lo > 1 {
		pivot := s.medianOfThree(lo, hi, axis)
		lt, i, gt := lo, lo, hi
		for i < gt {
			k := s.refs[i].centroid[axis]
			switch {
			case k < pivot:
				s.swap(lt, i)
				lt++
				i++
			case k > pivot:
				gt--
				s.swap(i, gt)
			default:
				i++
			}
		}

		switch {
		case nth < lt:
			hi = lt
		case nth >= gt:
			lo = gt
		default:
			return
		}
	}
}

func (s *buildPass) medianOfThree(lo, hi, axis int) float32 {
	a := s.refs[lo].centroid[axis]
	b := s.refs[lo+(hi-lo)/2].centroid[axis]
	c := s.refs[hi-1].centroid[axis]
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	return max(a, b)
}

func (s *buildPass) swap(i, j int) {
	s.tris[i], s.tris[j] = s.tris[j], s.tris[i]
	s.refs[i], s.refs[j] = s.refs[j], s.refs[i]
}
