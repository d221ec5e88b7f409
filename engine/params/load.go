package params

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// Load reads a JSON parameter file over Defaults and clamps the result.
// Fields missing from the file keep their default value.
//
// Parameters:
//   - path: the JSON file path
//
// Returns:
//   - RenderParameters: the loaded parameters
//   - error: an error if the file cannot be opened or decoded
func Load(path string) (RenderParameters, error) {
	f, err := os.Open(path)
	if err != nil {
		return Defaults(), fmt.Errorf("failed to open params file: %w", err)
	}
	defer f.Close()

	p, err := Decode(f)
	if err != nil {
		return Defaults(), fmt.Errorf("failed to load %s: %w", path, err)
	}
	return p, nil
}

// Decode reads JSON parameters from r over Defaults and clamps the result.
// Unknown fields are rejected so typos do not silently fall back to defaults.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - RenderParameters: the decoded parameters
//   - error: an error if the JSON is malformed or has unknown fields
func Decode(r io.Reader) (RenderParameters, error) {
	p := Defaults()
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return Defaults(), fmt.Errorf("failed to decode params: %w", err)
	}
	p.Clamp()
	return p, nil
}
