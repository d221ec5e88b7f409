package bvh

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
)

// ErrInvalidTree is wrapped by every error Validate returns.
var ErrInvalidTree = errors.New("invalid bvh")

// Stats summarizes the shape of a built hierarchy.
type Stats struct {
	NodeCount     int
	LeafCount     int
	TriangleCount int
	MaxDepth      int
	MinLeafSize   int
	MaxLeafSize   int
	AvgLeafSize   float64
}

// ComputeStats walks the hierarchy from the root and collects its shape.
// An empty node slice yields zero Stats.
//
// Parameters:
//   - nodes: the flattened hierarchy
//
// Returns:
//   - Stats: node, leaf and depth statistics
func ComputeStats(nodes []Node) Stats {
	var st Stats
	if len(nodes) == 0 {
		return st
	}
	st.NodeCount = len(nodes)

	type item struct {
		idx   int32
		depth int
	}
	stack := []item{{idx: 0, depth: 1}}
	for len(stack) > 0 {
		it := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if it.idx < 0 || int(it.idx) >= len(nodes) {
			continue
		}
		st.MaxDepth = max(st.MaxDepth, it.depth)

		n := nodes[it.idx]
		if n.IsLeaf() {
			size := int(n.Count)
			if st.LeafCount == 0 || size < st.MinLeafSize {
				st.MinLeafSize = size
			}
			st.MaxLeafSize = max(st.MaxLeafSize, size)
			st.LeafCount++
			st.TriangleCount += size
			continue
		}
		stack = append(stack, item{n.Right, it.depth + 1}, item{n.Left, it.depth + 1})
	}
	if st.LeafCount > 0 {
		st.AvgLeafSize = float64(st.TriangleCount) / float64(st.LeafCount)
	}
	return st
}

// Validate checks the structural invariants of a hierarchy built over tris:
// the root is node 0, every interior node's children are in range and visited exactly once,
// child boxes lie inside their parent, leaves hold at most leafMax triangles and contain the
// bounds of every triangle they own, and the leaf ranges cover tris exactly once.
//
// Parameters:
//   - nodes: the flattened hierarchy
//   - tris: the triangles in the order produced by Build
//   - leafMax: the leaf size limit used for the build
//
// Returns:
//   - error: nil if the hierarchy is valid, otherwise an error wrapping ErrInvalidTree
func Validate(nodes []Node, tris []geometry.Triangle, leafMax int) error {
	if len(nodes) == 0 {
		if len(tris) != 0 {
			return fmt.Errorf("%w: no nodes for %d triangles", ErrInvalidTree, len(tris))
		}
		return nil
	}

	visited := make([]bool, len(nodes))
	covered := make([]int, len(tris))
	stack := []int32{0}
	for len(stack) > 0 {
		idx := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited[idx] {
			return fmt.Errorf("%w: node %d reached twice", ErrInvalidTree, idx)
		}
		visited[idx] = true

		n := nodes[idx]
		if n.IsLeaf() {
			if int(n.Count) > leafMax {
				return fmt.Errorf("%w: leaf %d holds %d triangles, limit %d", ErrInvalidTree, idx, n.Count, leafMax)
			}
			if n.First < 0 || int(n.First)+int(n.Count) > len(tris) {
				return fmt.Errorf("%w: leaf %d range [%d, %d) outside %d triangles", ErrInvalidTree, idx, n.First, n.First+n.Count, len(tris))
			}
			for i := n.First; i < n.First+n.Count; i++ {
				if !n.Bounds().Contains(tris[i].Bounds()) {
					return fmt.Errorf("%w: leaf %d does not contain triangle %d", ErrInvalidTree, idx, i)
				}
				covered[i]++
			}
			continue
		}

		for _, child := range [2]int32{n.Left, n.Right} {
			if child <= idx || int(child) >= len(nodes) {
				return fmt.Errorf("%w: node %d has child index %d", ErrInvalidTree, idx, child)
			}
			if !n.Bounds().Contains(nodes[child].Bounds()) {
				return fmt.Errorf("%w: child %d escapes parent %d", ErrInvalidTree, child, idx)
			}
			stack = append(stack, child)
		}
	}

	for i, c := range covered {
		if c != 1 {
			return fmt.Errorf("%w: triangle %d referenced %d times", ErrInvalidTree, i, c)
		}
	}
	for i, v := range visited {
		if !v {
			return fmt.Errorf("%w: node %d unreachable from root", ErrInvalidTree, i)
		}
	}
	return nil
}
