package loader

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/engine/model"
	"github.com/go-gl/mathgl/mgl32"
)

// objLoaderBackendImpl is the implementation of objLoaderBackend.
type objLoaderBackendImpl struct{}

// objLoaderBackend is a loaderBackend implementation for Wavefront OBJ files.
// Only vertex positions and faces are read; texture coordinates, normals and materials are ignored.
type objLoaderBackend interface {
	loaderBackend
}

var _ objLoaderBackend = &objLoaderBackendImpl{}

// newOBJLoaderBackend creates a new OBJ loader backend.
//
// Returns:
//   - objLoaderBackend: the loader backend for OBJ files
func newOBJLoaderBackend() objLoaderBackend {
	return &objLoaderBackendImpl{}
}

func (b *objLoaderBackendImpl) Load(path string) (*model.ImportedModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	imported, err := b.LoadReader(f, FormatOBJ)
	if err != nil {
		return nil, err
	}
	base := filepath.Base(path)
	imported.Name = strings.TrimSuffix(base, filepath.Ext(base))
	return imported, nil
}

func (b *objLoaderBackendImpl) LoadReader(r io.Reader, _ Format) (*model.ImportedModel, error) {
	var (
		positions []mgl32.Vec3
		meshes    []model.ImportedMesh
		current   = model.ImportedMesh{Name: "default"}
		remap     = make(map[int]uint32)
	)

	flush := func() {
		if len(current.Indices) > 0 {
			current.UpdateBounds()
			meshes = append(meshes, current)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || line[0] == '#' {
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var p mgl32.Vec3
			for i := range 3 {
				v, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: invalid vertex coordinate %q: %w", lineNo, fields[i+1], err)
				}
				p[i] = float32(v)
			}
			positions = append(positions, p)

		case "o", "g":
			flush()
			name := "default"
			if len(fields) > 1 {
				name = strings.Join(fields[1:], " ")
			}
			current = model.ImportedMesh{Name: name}
			remap = make(map[int]uint32)

		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			face := make([]uint32, 0, len(fields)-1)
			for _, ref := range fields[1:] {
				global, err := objResolveIndex(ref, len(positions))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				local, ok := remap[global]
				if !ok {
					local = uint32(len(current.Positions))
					current.Positions = append(current.Positions, positions[global])
					remap[global] = local
				}
				face = append(face, local)
			}
			for i := 1; i+1 < len(face); i++ {
				current.Indices = append(current.Indices, face[0], face[i], face[i+1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read obj data: %w", err)
	}
	flush()

	return &model.ImportedModel{Name: "obj_model", Meshes: meshes}, nil
}

// objResolveIndex parses the position part of a face reference ("7", "7/2", "7//3", "7/2/3")
// and resolves it to a zero-based index. Negative indices count back from the latest vertex.
func objResolveIndex(ref string, vertexCount int) (int, error) {
	pos, _, _ := strings.Cut(ref, "/")
	n, err := strconv.Atoi(pos)
	if err != nil {
		return 0, fmt.Errorf("invalid face index %q: %w", ref, err)
	}

	var idx int
	switch {
	case n > 0:
		idx = n - 1
	case n < 0:
		idx = vertexCount + n
	default:
		return 0, fmt.Errorf("face index 0 is not valid")
	}
	if idx < 0 || idx >= vertexCount {
		return 0, fmt.Errorf("face index %d out of range (%d vertices)", n, vertexCount)
	}
	return idx, nil
}
