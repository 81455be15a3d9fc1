package store

import "github.com/vango-dev/storectx/internal/identity"

// Identical reports whether a and b are strictly equal: == for comparable
// values, the same reference for maps, slices and funcs. Values that merely
// look alike are not identical.
func Identical(a, b any) bool {
	return identity.Identical(a, b)
}
