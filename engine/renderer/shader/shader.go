package shader

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrStructNotFound is returned when the named struct is not declared in the source.
	ErrStructNotFound = errors.New("struct not found")

	// ErrLayoutMismatch is returned when a WGSL struct does not match the expected host layout.
	ErrLayoutMismatch = errors.New("struct layout mismatch")
)

// FieldLayout is the placement of one struct member in host-shareable memory.
type FieldLayout struct {
	Name   string
	Type   string
	Offset uint64
	Size   uint64
}

// Layout is the computed memory layout of a WGSL struct.
// RuntimeSized is set when the last member is a runtime-sized array; Size then covers
// only the fixed-size prefix.
type Layout struct {
	Name         string
	Size         uint64
	Align        uint64
	Fields       []FieldLayout
	RuntimeSized bool
}

// Field looks up a member by name.
//
// Parameters:
//   - name: the WGSL member name
//
// Returns:
//   - FieldLayout: the member placement
//   - bool: false if the struct has no such member
func (l Layout) Field(name string) (FieldLayout, bool) {
	for _, f := range l.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldLayout{}, false
}

// ParseLayouts computes the layout of every struct declared in a WGSL source.
// Comments are stripped first. Structs referencing unknown types are reported in the error
// while the resolvable ones are still returned.
//
// Parameters:
//   - source: raw WGSL source
//
// Returns:
//   - map[string]Layout: struct name to layout
//   - error: non-nil if some structs could not be resolved
func ParseLayouts(source string) (map[string]Layout, error) {
	layouts, unresolved := computeStructLayouts(parseStructBlocks(stripComments(source)))
	if len(unresolved) > 0 {
		sort.Strings(unresolved)
		return layouts, fmt.Errorf("failed to resolve struct layouts: %s", strings.Join(unresolved, ", "))
	}
	return layouts, nil
}

// Expect verifies that the named struct in source has the given size and that each listed
// member sits at the given byte offset. It is used to keep WGSL declarations and their
// Go marshalling code in agreement.
//
// Parameters:
//   - source: raw WGSL source
//   - name: the struct to check
//   - size: the expected struct size in bytes
//   - offsets: expected member offsets keyed by WGSL member name, may be nil
//
// Returns:
//   - error: ErrStructNotFound or ErrLayoutMismatch (wrapped) describing the first difference
func Expect(source, name string, size uint64, offsets map[string]uint64) error {
	layouts, err := ParseLayouts(source)
	layout, ok := layouts[name]
	if !ok {
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrStructNotFound, name, err)
		}
		return fmt.Errorf("%w: %s", ErrStructNotFound, name)
	}

	if layout.Size != size {
		return fmt.Errorf("%w: %s is %d bytes, want %d", ErrLayoutMismatch, name, layout.Size, size)
	}

	members := make([]string, 0, len(offsets))
	for member := range offsets {
		members = append(members, member)
	}
	sort.Strings(members)

	for _, member := range members {
		f, ok := layout.Field(member)
		if !ok {
			return fmt.Errorf("%w: %s has no member %q", ErrLayoutMismatch, name, member)
		}
		if f.Offset != offsets[member] {
			return fmt.Errorf("%w: %s.%s at offset %d, want %d", ErrLayoutMismatch, name, member, f.Offset, offsets[member])
		}
	}
	return nil
}
