// Package identity implements the strict-equality rule shared by the store and
// the reactive runtime: two values are the same when they are the same
// reference, never when they merely look alike.
package identity

import (
	"reflect"
	"unsafe"
)

// Identical reports whether a and b are strictly equal.
//
// Comparable dynamic types compare with ==. Maps, slices and funcs compare by
// the reference they carry: the same map, the same backing array with the same
// length and capacity, or the same function value. Two closures created from
// one function literal are different function values. Values whose type is not
// comparable and carries no single reference (structs holding slices, for
// example) are never identical.
func Identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	ta := reflect.TypeOf(a)
	if ta != reflect.TypeOf(b) {
		return false
	}

	if ta.Comparable() {
		return comparableEqual(a, b)
	}

	va, vb := reflect.ValueOf(a), reflect.ValueOf(b)
	switch ta.Kind() {
	case reflect.Map:
		return va.UnsafePointer() == vb.UnsafePointer()
	case reflect.Slice:
		return va.UnsafePointer() == vb.UnsafePointer() &&
			va.Len() == vb.Len() &&
			va.Cap() == vb.Cap()
	case reflect.Func:
		return funcValue(a) == funcValue(b)
	default:
		return false
	}
}

// comparableEqual applies == and treats a runtime comparison panic (an
// interface field holding an uncomparable value) as "not equal".
func comparableEqual(a, b any) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return a == b
}

// SameDeps reports whether two dependency lists are element-wise identical.
func SameDeps(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Identical(a[i], b[i]) {
			return false
		}
	}
	return true
}

// funcValue returns the closure pointer held in the data word of an
// interface holding a func.
func funcValue(v any) unsafe.Pointer {
	return (*[2]unsafe.Pointer)(unsafe.Pointer(&v))[1]
}
