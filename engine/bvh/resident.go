package bvh

import (
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-trace/engine/geometry"
	"github.com/Carmen-Shannon/oxy-trace/engine/renderer/resource"
)

const (
	nodeSlot = iota
	triangleSlot
)

// resident is the implementation of the Resident interface.
type resident struct {
	mu *sync.Mutex

	buffers   resource.BufferSet
	nodeCount int
	triCount  int
}

// Snapshot is a consistent view of the installed hierarchy: the buffers and the counts
// always belong to the same Replace.
type Snapshot struct {
	NodeBuffer     resource.Buffer
	TriangleBuffer resource.Buffer
	NodeCount      int
	TriangleCount  int
}

// Resident owns the node and triangle storage buffers of the BVH the stage traverses.
type Resident interface {
	// Replace serializes a new hierarchy and swaps it in. Both buffers are created before the
	// previous ones are released; if either creation fails the previous hierarchy stays
	// installed, nothing leaks and the error is returned.
	// An empty hierarchy uploads one zeroed record per buffer and reports zero counts.
	//
	// Parameters:
	//   - nodes: the flattened hierarchy
	//   - tris: the triangles in BVH order
	//
	// Returns:
	//   - error: nil if the new hierarchy is installed
	Replace(nodes []Node, tris []geometry.Triangle) error

	// NodeBuffer returns the node storage buffer, or nil before the first successful Replace.
	//
	// Returns:
	//   - resource.Buffer: the node buffer
	NodeBuffer() resource.Buffer

	// TriangleBuffer returns the triangle storage buffer, or nil before the first successful Replace.
	//
	// Returns:
	//   - resource.Buffer: the triangle buffer
	TriangleBuffer() resource.Buffer

	// NodeCount returns the number of real nodes in the installed hierarchy.
	//
	// Returns:
	//   - int: the node count
	NodeCount() int

	// TriangleCount returns the number of real triangles in the installed hierarchy.
	//
	// Returns:
	//   - int: the triangle count
	TriangleCount() int

	// Snapshot returns the buffers and counts of the installed hierarchy under one lock.
	//
	// Returns:
	//   - Snapshot: the current buffers and counts
	Snapshot() Snapshot

	// Release frees both buffers. It is safe to call more than once.
	Release()
}

var _ Resident = &resident{}

// NewResident creates a Resident with no hierarchy installed.
//
// Parameters:
//   - backend: the allocator for the storage buffers
//
// Returns:
//   - Resident: the newly created resident hierarchy
func NewResident(backend resource.Backend) Resident {
	return &resident{
		mu:      &sync.Mutex{},
		buffers: resource.NewBufferSet(backend, "bvh"),
	}
}

func (r *resident) Replace(nodes []Node, tris []geometry.Triangle) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.buffers.Replace(
		resource.BufferDescriptor{
			Label:    "bvh_nodes",
			Usage:    resource.BufferUsageStorage | resource.BufferUsageCopyDst,
			Contents: MarshalNodes(nodes),
		},
		resource.BufferDescriptor{
			Label:    "bvh_triangles",
			Usage:    resource.BufferUsageStorage | resource.BufferUsageCopyDst,
			Contents: MarshalTriangles(tris),
		},
	)
	if err != nil {
		return fmt.Errorf("failed to upload bvh (%d nodes, %d triangles): %w", len(nodes), len(tris), err)
	}

	r.nodeCount = len(nodes)
	r.triCount = len(tris)
	return nil
}

func (r *resident) NodeBuffer() resource.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffers.Buffer(nodeSlot)
}

func (r *resident) TriangleBuffer() resource.Buffer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.buffers.Buffer(triangleSlot)
}

func (r *resident) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()
	return Snapshot{
		NodeBuffer:     r.buffers.Buffer(nodeSlot),
		TriangleBuffer: r.buffers.Buffer(triangleSlot),
		NodeCount:      r.nodeCount,
		TriangleCount:  r.triCount,
	}
}

func (r *resident) NodeCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.nodeCount
}

func (r *resident) TriangleCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.triCount
}

func (r *resident) Release() {
	if r == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buffers.Release()
	r.nodeCount = 0
	r.triCount = 0
}
