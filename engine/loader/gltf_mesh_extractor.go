package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfMaxNodeDepth bounds scene traversal so malformed cyclic hierarchies terminate.
const gltfMaxNodeDepth = 64

// gltfMeshExtractorImpl is the implementation of the gltfMeshExtractor interface.
type gltfMeshExtractorImpl struct {
	parser gltfParser
}

// gltfMeshExtractor converts glTF primitives into indexed triangle meshes.
type gltfMeshExtractor interface {
	// ExtractMesh extracts a single mesh by index in object space.
	// Returns one ImportedMesh per primitive (glTF meshes can have multiple primitives).
	//
	// Parameters:
	//   - meshIndex: the index of the mesh to extract
	//
	// Returns:
	//   - []model.ImportedMesh: one ImportedMesh per primitive
	//   - error: error if extraction fails
	ExtractMesh(meshIndex int) ([]model.ImportedMesh, error)

	// ExtractAllMeshes extracts all meshes in object space.
	//
	// Returns:
	//   - []model.ImportedMesh: all meshes (flattened, one per primitive)
	//   - error: error if extraction fails
	ExtractAllMeshes() ([]model.ImportedMesh, error)

	// ExtractScene walks the default scene and bakes each node's world transform into the positions
	// of the meshes it instances. Documents without nodes fall back to ExtractAllMeshes.
	//
	// Returns:
	//   - []model.ImportedMesh: one mesh per primitive per instancing node, in traversal order
	//   - error: error if extraction fails
	ExtractScene() ([]model.ImportedMesh, error)
}

var _ gltfMeshExtractor = &gltfMeshExtractorImpl{}

// newGLTFMeshExtractor creates a new mesh extractor for a parsed document.
//
// Parameters:
//   - parser: the parser containing a loaded document
//
// Returns:
//   - gltfMeshExtractor: the mesh extractor
func newGLTFMeshExtractor(parser gltfParser) gltfMeshExtractor {
	return &gltfMeshExtractorImpl{parser: parser}
}

func (e *gltfMeshExtractorImpl) ExtractMesh(meshIndex int) ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if meshIndex < 0 || meshIndex >= len(doc.Meshes) {
		return nil, fmt.Errorf("mesh index %d out of range", meshIndex)
	}

	mesh := &doc.Meshes[meshIndex]
	result := make([]model.ImportedMesh, 0, len(mesh.Primitives))

	for primIdx := range mesh.Primitives {
		imported, err := e.extractPrimitive(&mesh.Primitives[primIdx], mesh.Name, primIdx)
		if err != nil {
			return nil, fmt.Errorf("mesh %d primitive %d: %w", meshIndex, primIdx, err)
		}
		result = append(result, *imported)
	}

	return result, nil
}

func (e *gltfMeshExtractorImpl) ExtractAllMeshes() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}

	var allMeshes []model.ImportedMesh
	for i := range doc.Meshes {
		meshes, err := e.ExtractMesh(i)
		if err != nil {
			return nil, err
		}
		allMeshes = append(allMeshes, meshes...)
	}

	return allMeshes, nil
}

func (e *gltfMeshExtractorImpl) ExtractScene() ([]model.ImportedMesh, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document loaded")
	}
	if len(doc.Nodes) == 0 {
		return e.ExtractAllMeshes()
	}

	cache := make(map[int][]model.ImportedMesh)
	var out []model.ImportedMesh

	var walk func(nodeIndex int, parent mgl32.Mat4, depth int) error
	walk = func(nodeIndex int, parent mgl32.Mat4, depth int) error {
		if nodeIndex < 0 || nodeIndex >= len(doc.Nodes) {
			return fmt.Errorf("node index %d out of range", nodeIndex)
		}
		if depth > gltfMaxNodeDepth {
			return fmt.Errorf("node hierarchy deeper than %d", gltfMaxNodeDepth)
		}

		node := &doc.Nodes[nodeIndex]
		world := parent.Mul4(gltfNodeMatrix(node))

		if node.Mesh != nil {
			meshes, ok := cache[*node.Mesh]
			if !ok {
				var err error
				meshes, err = e.ExtractMesh(*node.Mesh)
				if err != nil {
					return err
				}
				cache[*node.Mesh] = meshes
			}
			for _, m := range meshes {
				out = append(out, gltfTransformMesh(m, world, node.Name))
			}
		}

		for _, child := range node.Children {
			if err := walk(child, world, depth+1); err != nil {
				return err
			}
		}
		return nil
	}

	for _, root := range gltfSceneRoots(doc) {
		if err := walk(root, mgl32.Ident4(), 0); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// extractPrimitive extracts a single primitive as an indexed triangle list.
func (e *gltfMeshExtractorImpl) extractPrimitive(prim *gltfPrimitive, meshName string, primIndex int) (*model.ImportedMesh, error) {
	mode := gltfPrimitiveModeTriangles
	if prim.Mode != nil {
		mode = *prim.Mode
	}
	if mode != gltfPrimitiveModeTriangles && mode != gltfPrimitiveModeTriangleStrip && mode != gltfPrimitiveModeTriangleFan {
		return nil, fmt.Errorf("unsupported primitive mode: %d (only triangle modes supported)", mode)
	}

	posAccessor, ok := prim.Attributes["POSITION"]
	if !ok {
		return nil, fmt.Errorf("primitive has no POSITION attribute")
	}

	raw, err := e.parser.ReadVec3Accessor(posAccessor)
	if err != nil {
		return nil, fmt.Errorf("failed to read positions: %w", err)
	}
	positions := make([]mgl32.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = mgl32.Vec3(p)
	}

	var indices []uint32
	if prim.Indices != nil {
		indices, err = e.parser.ReadIndicesAccessor(*prim.Indices)
		if err != nil {
			return nil, fmt.Errorf("failed to read indices: %w", err)
		}
	} else {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}

	for _, idx := range indices {
		if int(idx) >= len(positions) {
			return nil, fmt.Errorf("index %d out of range (%d positions)", idx, len(positions))
		}
	}

	switch mode {
	case gltfPrimitiveModeTriangleStrip:
		indices = gltfStripToList(indices)
	case gltfPrimitiveModeTriangleFan:
		indices = gltfFanToList(indices)
	}

	name := meshName
	if name == "" {
		name = "mesh"
	}

	mesh := &model.ImportedMesh{
		Name:      fmt.Sprintf("%s_%d", name, primIndex),
		Positions: positions,
		Indices:   indices,
	}
	mesh.UpdateBounds()
	return mesh, nil
}

// gltfSceneRoots returns the root nodes of the default scene. Without scenes, every node that is
// not some other node's child is a root.
func gltfSceneRoots(doc *gltfDocument) []int {
	if len(doc.Scenes) > 0 {
		idx := 0
		if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
			idx = *doc.Scene
		}
		return doc.Scenes[idx].Nodes
	}

	isChild := make([]bool, len(doc.Nodes))
	for _, n := range doc.Nodes {
		for _, c := range n.Children {
			if c >= 0 && c < len(isChild) {
				isChild[c] = true
			}
		}
	}
	var roots []int
	for i, child := range isChild {
		if !child {
			roots = append(roots, i)
		}
	}
	return roots
}

// gltfNodeMatrix returns the local transform of a node: its matrix, or T * R * S.
func gltfNodeMatrix(node *gltfNode) mgl32.Mat4 {
	if node.Matrix != nil {
		return mgl32.Mat4(*node.Matrix)
	}

	m := mgl32.Ident4()
	if node.Translation != nil {
		t := node.Translation
		m = mgl32.Translate3D(t[0], t[1], t[2])
	}
	if node.Rotation != nil {
		r := node.Rotation
		q := mgl32.Quat{W: r[3], V: mgl32.Vec3{r[0], r[1], r[2]}}
		m = m.Mul4(q.Normalize().Mat4())
	}
	if node.Scale != nil {
		s := node.Scale
		m = m.Mul4(mgl32.Scale3D(s[0], s[1], s[2]))
	}
	return m
}

// gltfTransformMesh returns a copy of m with positions transformed by world.
func gltfTransformMesh(m model.ImportedMesh, world mgl32.Mat4, nodeName string) model.ImportedMesh {
	out := model.ImportedMesh{
		Name:      m.Name,
		Positions: make([]mgl32.Vec3, len(m.Positions)),
		Indices:   m.Indices,
	}
	if nodeName != "" {
		out.Name = nodeName + "/" + m.Name
	}
	for i, p := range m.Positions {
		out.Positions[i] = mgl32.TransformCoordinate(p, world)
	}
	out.UpdateBounds()
	return out
}

// gltfStripToList converts triangle strip indices to a triangle list, keeping winding consistent.
func gltfStripToList(strip []uint32) []uint32 {
	if len(strip) < 3 {
		return nil
	}
	list := make([]uint32, 0, (len(strip)-2)*3)
	for i := 0; i+2 < len(strip); i++ {
		if i%2 == 0 {
			list = append(list, strip[i], strip[i+1], strip[i+2])
		} else {
			list = append(list, strip[i+1], strip[i], strip[i+2])
		}
	}
	return list
}

// gltfFanToList converts triangle fan indices to a triangle list.
func gltfFanToList(fan []uint32) []uint32 {
	if len(fan) < 3 {
		return nil
	}
	list := make([]uint32, 0, (len(fan)-2)*3)
	for i := 1; i+1 < len(fan); i++ {
		list = append(list, fan[0], fan[i], fan[i+1])
	}
	return list
}
