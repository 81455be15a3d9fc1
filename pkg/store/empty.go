package store

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"
)

// IsEmpty reports whether value is empty: nil, a blank string, false, a zero
// or NaN number, or a slice, array, map or struct with no elements. Pointers
// are followed.
func IsEmpty(value any) bool {
	if value == nil {
		return true
	}

	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case json.Number:
		f, err := v.Float64()
		return err == nil && (f == 0 || math.IsNaN(f))
	}

	return isEmptyValue(reflect.ValueOf(value))
}

func isEmptyValue(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Invalid:
		return true
	case reflect.Pointer, reflect.Interface:
		if v.IsNil() {
			return true
		}
		return isEmptyValue(v.Elem())
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Bool:
		return !v.Bool()
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return v.Uint() == 0
	case reflect.Float32, reflect.Float64:
		f := v.Float()
		return f == 0 || math.IsNaN(f)
	case reflect.Complex64, reflect.Complex128:
		return v.Complex() == 0
	case reflect.Slice, reflect.Array, reflect.Map:
		return v.Len() == 0
	case reflect.Struct:
		return v.NumField() == 0
	default:
		// Funcs and channels are values.
		return false
	}
}
