package loader

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Carmen-Shannon/oxy-trace/engine/model"
)

// gltfImporterImpl is the implementation of the gltfImporter interface.
type gltfImporterImpl struct{}

// gltfImporter turns a glTF document into an ImportedModel with world-space meshes.
type gltfImporter interface {
	// Import parses the file at path and extracts its scene geometry.
	//
	// Parameters:
	//   - path: the .gltf or .glb file
	//
	// Returns:
	//   - *model.ImportedModel: the imported model
	//   - error: error if parsing or extraction fails
	Import(path string) (*model.ImportedModel, error)

	// ImportReader parses a document from r. External buffer URIs are not resolvable from a reader.
	//
	// Parameters:
	//   - r: the document bytes
	//   - isGLB: true for binary GLB data
	//
	// Returns:
	//   - *model.ImportedModel: the imported model
	//   - error: error if parsing or extraction fails
	ImportReader(r io.Reader, isGLB bool) (*model.ImportedModel, error)
}

var _ gltfImporter = &gltfImporterImpl{}

func newGLTFImporter() gltfImporter {
	return &gltfImporterImpl{}
}

func (imp *gltfImporterImpl) Import(path string) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.Parse(path); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return imp.importFromParser(parser, path)
}

func (imp *gltfImporterImpl) ImportReader(r io.Reader, isGLB bool) (*model.ImportedModel, error) {
	parser := newGLTFParser()
	if err := parser.ParseReader(r, isGLB); err != nil {
		return nil, fmt.Errorf("failed to parse from reader: %w", err)
	}

	return imp.importFromParser(parser, "")
}

// importFromParser extracts the scene of a parser that has already loaded a document.
func (imp *gltfImporterImpl) importFromParser(parser gltfParser, fallbackPath string) (*model.ImportedModel, error) {
	doc := parser.Document()
	if doc == nil {
		return nil, fmt.Errorf("no document after parsing")
	}

	meshes, err := newGLTFMeshExtractor(parser).ExtractScene()
	if err != nil {
		return nil, fmt.Errorf("mesh extraction failed: %w", err)
	}

	return &model.ImportedModel{
		Name:   gltfExtractModelName(doc, fallbackPath),
		Meshes: meshes,
	}, nil
}

// gltfExtractModelName derives a model name from the default scene or the file name.
func gltfExtractModelName(doc *gltfDocument, fallbackPath string) string {
	if doc.Scene != nil && *doc.Scene >= 0 && *doc.Scene < len(doc.Scenes) {
		if name := doc.Scenes[*doc.Scene].Name; name != "" {
			return name
		}
	}

	if fallbackPath != "" {
		base := filepath.Base(fallbackPath)
		return strings.TrimSuffix(base, filepath.Ext(base))
	}

	return "unnamed_model"
}
