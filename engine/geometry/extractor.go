package geometry

import (
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// extractor is the implementation of the Extractor interface.
type extractor struct {
	mu *sync.Mutex

	workers           int
	parallelThreshold int
	pool              worker.DynamicWorkerPool
	poolReady         bool
}

// Extractor flattens a transformed geometry source into Triangle records.
type Extractor interface {
	// Extract walks every submesh's index list in triples, transforms the referenced positions
	// as points and emits one Triangle per complete, in-range triple.
	// Output order is mesh order, then index order within each mesh, regardless of whether
	// meshes were processed in parallel.
	//
	// Parameters:
	//   - m: the geometry source
	//   - transform: the object-to-world matrix applied to every position
	//
	// Returns:
	//   - []Triangle: the extracted triangles (nil for a model without triangles)
	Extract(m model.Model, transform mgl32.Mat4) []Triangle
}

var _ Extractor = &extractor{}

// NewExtractor creates a new Extractor.
// By default multi-mesh models with at least 4096 triangles are extracted on a worker pool
// sized to GOMAXPROCS.
//
// Parameters:
//   - options: functional options to configure the extractor
//
// Returns:
//   - Extractor: the newly created extractor
func NewExtractor(options ...ExtractorBuilderOption) Extractor {
	e := &extractor{
		mu:                &sync.Mutex{},
		workers:           runtime.GOMAXPROCS(0),
		parallelThreshold: 4096,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// DefaultTransform is the placement applied to the BVH model: scale by 0.5, then translate
// to (-2, 1.5, 0).
//
// Returns:
//   - mgl32.Mat4: translate(-2, 1.5, 0) * scale(0.5)
func DefaultTransform() mgl32.Mat4 {
	return mgl32.Translate3D(-2, 1.5, 0).Mul4(mgl32.Scale3D(0.5, 0.5, 0.5))
}

func (e *extractor) Extract(m model.Model, transform mgl32.Mat4) []Triangle {
	meshes := m.Meshes()
	total := m.TriangleCount()
	if total == 0 {
		return nil
	}

	if len(meshes) < 2 || e.workers < 2 || total < e.parallelThreshold {
		out := make([]Triangle, 0, total)
		for i := range meshes {
			out = extractMesh(out, &meshes[i], transform)
		}
		return out
	}

	// Each mesh writes into its own slice; concatenation afterwards keeps the order stable.
	parts := make([][]Triangle, len(meshes))
	pool := e.workerPool()
	var wg sync.WaitGroup
	for i := range meshes {
		wg.Add(1)
		idx := i
		pool.SubmitTask(worker.Task{
			ID: idx,
			Do: func() (any, error) {
				defer wg.Done()
				mesh := &meshes[idx]
				parts[idx] = extractMesh(make([]Triangle, 0, mesh.TriangleCount()), mesh, transform)
				return nil, nil
			},
		})
	}
	wg.Wait()

	out := make([]Triangle, 0, total)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// workerPool lazily creates the shared pool. Idle workers exit on their own after a second.
func (e *extractor) workerPool() worker.DynamicWorkerPool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.poolReady {
		e.pool = worker.NewDynamicWorkerPool(e.workers, 256, 1*time.Second)
		e.poolReady = true
	}
	return e.pool
}

// extractMesh appends the triangles of one mesh to out.
func extractMesh(out []Triangle, mesh *model.ImportedMesh, transform mgl32.Mat4) []Triangle {
	n := uint32(len(mesh.Positions))
	for i := 0; i+2 < len(mesh.Indices); i += 3 {
		i0, i1, i2 := mesh.Indices[i], mesh.Indices[i+1], mesh.Indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		out = append(out, NewTriangle(
			transformPoint(transform, mesh.Positions[i0]),
			transformPoint(transform, mesh.Positions[i1]),
			transformPoint(transform, mesh.Positions[i2]),
		))
	}
	return out
}

func transformPoint(m mgl32.Mat4, p mgl32.Vec3) mgl32.Vec3 {
	return m.Mul4x1(p.Vec4(1)).Vec3()
}
