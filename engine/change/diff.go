package change

import (
	"reflect"
)

// DiffFields compares two structs of the same type field by field and returns the names of the
// fields that differ. Float fields and arrays of floats differ when any element moves by more
// than epsilon; every other field must be equal. Unexported fields and fields tagged
// `change:"-"` are skipped.
//
// Parameters:
//   - a: the previous value
//   - b: the current value
//   - epsilon: the float tolerance
//
// Returns:
//   - []string: the differing field names in declaration order
func DiffFields[T any](a, b T, epsilon float64) []string {
	va := reflect.ValueOf(a)
	vb := reflect.ValueOf(b)
	if va.Kind() != reflect.Struct {
		if !reflect.DeepEqual(a, b) {
			return []string{va.Type().String()}
		}
		return nil
	}

	var changed []string
	typ := va.Type()
	for i := range typ.NumField() {
		field := typ.Field(i)
		if !field.IsExported() || field.Tag.Get("change") == "-" {
			continue
		}
		if !valuesEqual(va.Field(i), vb.Field(i), epsilon) {
			changed = append(changed, field.Name)
		}
	}
	return changed
}

func valuesEqual(a, b reflect.Value, epsilon float64) bool {
	switch a.Kind() {
	case reflect.Float32, reflect.Float64:
		d := a.Float() - b.Float()
		return d <= epsilon && d >= -epsilon
	case reflect.Array:
		for i := range a.Len() {
			if !valuesEqual(a.Index(i), b.Index(i), epsilon) {
				return false
			}
		}
		return true
	case reflect.Bool:
		return a.Bool() == b.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return a.Int() == b.Int()
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return a.Uint() == b.Uint()
	default:
		return reflect.DeepEqual(a.Interface(), b.Interface())
	}
}
