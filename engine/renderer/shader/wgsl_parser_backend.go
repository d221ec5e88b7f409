package shader

import (
	"strconv"
	"strings"
)

// wgslPrimitiveLayoutMap maps WGSL primitive, vector, matrix, and atomic type names
// to their byte size and alignment per the WGSL specification.
//
// Reference: https://www.w3.org/TR/WGSL/#alignment-and-size
var wgslPrimitiveLayoutMap = map[string]wgslTypeLayout{
	// Scalars
	"f32":  {4, 4},
	"i32":  {4, 4},
	"u32":  {4, 4},
	"f16":  {2, 2},
	"bool": {4, 4},

	// Vectors – f32
	"vec2<f32>": {8, 8},
	"vec2f":     {8, 8},
	"vec3<f32>": {12, 16},
	"vec3f":     {12, 16},
	"vec4<f32>": {16, 16},
	"vec4f":     {16, 16},

	// Vectors – i32
	"vec2<i32>": {8, 8},
	"vec2i":     {8, 8},
	"vec3<i32>": {12, 16},
	"vec3i":     {12, 16},
	"vec4<i32>": {16, 16},
	"vec4i":     {16, 16},

	// Vectors – u32
	"vec2<u32>": {8, 8},
	"vec2u":     {8, 8},
	"vec3<u32>": {12, 16},
	"vec3u":     {12, 16},
	"vec4<u32>": {16, 16},
	"vec4u":     {16, 16},

	// Vectors – f16
	"vec2<f16>": {4, 4},
	"vec2h":     {4, 4},
	"vec4<f16>": {8, 8},
	"vec4h":     {8, 8},

	// Matrices – matCxR<f32>: C columns of vecR<f32>, stride = roundUp(align(vecR), size(vecR))
	"mat2x2<f32>": {16, 8},
	"mat2x3<f32>": {32, 16},
	"mat2x4<f32>": {32, 16},
	"mat3x2<f32>": {24, 8},
	"mat3x3<f32>": {48, 16},
	"mat3x4<f32>": {48, 16},
	"mat4x2<f32>": {32, 8},
	"mat4x3<f32>": {64, 16},
	"mat4x4<f32>": {64, 16},
	"mat2x2f":     {16, 8},
	"mat3x3f":     {48, 16},
	"mat4x4f":     {64, 16},

	// Atomic types
	"atomic<u32>": {4, 4},
	"atomic<i32>": {4, 4},
}

// roundUpAlign rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
//
// Parameters:
//   - alignment: the required alignment (must be a power of two)
//   - value: the value to align
//
// Returns:
//   - uint64: value rounded up to the next multiple of alignment
func roundUpAlign(alignment, value uint64) uint64 {
	if alignment == 0 {
		return value
	}
	return (value + alignment - 1) &^ (alignment - 1)
}

// resolveTypeLayout resolves a WGSL type name to its size and alignment using primitives
// and previously-computed struct layouts. Handles fixed-size arrays (array<T, N>) and returns
// false for runtime-sized arrays or unknown types.
//
// Parameters:
//   - typeName: the WGSL type name to resolve, e.g. "f32", "BVHNode", "array<vec4<f32>,4>"
//   - knownTypes: a map of already-resolved type names to their layouts
//
// Returns:
//   - wgslTypeLayout: the resolved layout
//   - bool: true if the type could be resolved
func resolveTypeLayout(typeName string, knownTypes map[string]wgslTypeLayout) (wgslTypeLayout, bool) {
	if layout, ok := wgslPrimitiveLayoutMap[typeName]; ok {
		return layout, true
	}
	if layout, ok := knownTypes[typeName]; ok {
		return layout, true
	}

	elemType, count, isArray := splitArrayType(typeName)
	if !isArray || count == 0 {
		return wgslTypeLayout{}, false
	}

	elemLayout, ok := resolveTypeLayout(elemType, knownTypes)
	if !ok {
		return wgslTypeLayout{}, false
	}
	stride := roundUpAlign(elemLayout.align, elemLayout.size)
	return wgslTypeLayout{count * stride, elemLayout.align}, true
}

// splitArrayType splits "array<T, N>" into T and N. A runtime-sized "array<T>" reports
// a count of zero. Malformed counts are reported as not being an array.
func splitArrayType(typeName string) (elemType string, count uint64, ok bool) {
	if !strings.HasPrefix(typeName, "array<") || !strings.HasSuffix(typeName, ">") {
		return "", 0, false
	}
	parts := splitAtTopLevelCommas(typeName[6 : len(typeName)-1])
	elemType = strings.TrimSpace(parts[0])
	if len(parts) == 1 {
		return elemType, 0, true
	}
	count, err := strconv.ParseUint(strings.TrimSpace(parts[1]), 10, 64)
	if err != nil {
		return "", 0, false
	}
	return elemType, count, true
}

// computeStructLayout places each field at the next aligned offset and rounds the total size
// up to the struct's alignment (the max alignment of all fields).
//
// A runtime-sized array is only legal as the last member. It is recorded with its element
// stride as size and the struct size covers the fixed-size prefix. Fields with @builtin
// attributes are skipped as they are not part of any buffer layout.
//
// Parameters:
//   - ps: the parsed struct whose layout to compute
//   - knownTypes: a map of already-resolved type names to their layouts
//
// Returns:
//   - Layout: the computed layout including field offsets
//   - bool: true if all fields could be resolved
func computeStructLayout(ps parsedStruct, knownTypes map[string]wgslTypeLayout) (Layout, bool) {
	offset := uint64(0)
	maxAlign := uint64(1)
	out := Layout{Name: ps.name, Fields: make([]FieldLayout, 0, len(ps.fields))}

	for i, field := range ps.fields {
		if field.isBuiltin {
			continue
		}

		fieldLayout, ok := resolveTypeLayout(field.typeName, knownTypes)
		if !ok {
			elemType, count, isArray := splitArrayType(field.typeName)
			if !isArray || count != 0 || i != len(ps.fields)-1 {
				return Layout{}, false
			}
			elemLayout, elemOk := resolveTypeLayout(elemType, knownTypes)
			if !elemOk {
				return Layout{}, false
			}
			offset = roundUpAlign(elemLayout.align, offset)
			out.Fields = append(out.Fields, FieldLayout{
				Name:   field.name,
				Type:   field.typeName,
				Offset: offset,
				Size:   roundUpAlign(elemLayout.align, elemLayout.size),
			})
			out.RuntimeSized = true
			maxAlign = max(maxAlign, elemLayout.align)
			continue
		}

		offset = roundUpAlign(fieldLayout.align, offset)
		out.Fields = append(out.Fields, FieldLayout{
			Name:   field.name,
			Type:   field.typeName,
			Offset: offset,
			Size:   fieldLayout.size,
		})
		offset += fieldLayout.size
		maxAlign = max(maxAlign, fieldLayout.align)
	}

	out.Size = roundUpAlign(maxAlign, offset)
	out.Align = maxAlign
	return out, true
}

// computeStructLayouts computes the layout of all parsed WGSL structs.
// It resolves dependencies between structs iteratively, handling cases where one struct
// contains fields typed as another struct declared later in the source.
//
// Parameters:
//   - structs: all parsed struct blocks from the WGSL source
//
// Returns:
//   - map[string]Layout: struct name to computed layout
//   - []string: names of structs that could not be resolved
func computeStructLayouts(structs []parsedStruct) (map[string]Layout, []string) {
	resolved := make(map[string]Layout, len(structs))
	known := make(map[string]wgslTypeLayout, len(structs))
	remaining := make([]parsedStruct, len(structs))
	copy(remaining, structs)

	for {
		progress := false
		next := remaining[:0]

		for _, ps := range remaining {
			if layout, ok := computeStructLayout(ps, known); ok {
				resolved[ps.name] = layout
				if !layout.RuntimeSized {
					known[ps.name] = wgslTypeLayout{layout.Size, layout.Align}
				}
				progress = true
			} else {
				next = append(next, ps)
			}
		}

		remaining = next
		if !progress || len(remaining) == 0 {
			break
		}
	}

	unresolved := make([]string, 0, len(remaining))
	for _, ps := range remaining {
		unresolved = append(unresolved, ps.name)
	}
	return resolved, unresolved
}
