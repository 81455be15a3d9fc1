package persist

import (
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
)

// ErrClosed is returned by backends used after Close.
var ErrClosed = errors.New("persist: storage is closed")

// ErrNotListable is returned when a backend cannot enumerate its keys.
var ErrNotListable = errors.New("persist: storage cannot list keys")

// Storage is the backend contract. Implementations must be usable as map
// keys (pointer receivers), since handles are recognized by identity.
type Storage interface {
	// GetItem returns the stored text for key. ok is false when nothing is
	// stored; that is not an error.
	GetItem(key string) (value string, ok bool, err error)

	// SetItem stores value under key, replacing any previous value.
	SetItem(key, value string) error

	// RemoveItem deletes key. Removing an absent key is not an error.
	RemoveItem(key string) error
}

// Lister is implemented by backends that can enumerate their keys.
type Lister interface {
	// Keys returns the stored keys in ascending order.
	Keys() ([]string, error)
}

// Keys returns the keys stored in s, or ErrNotListable when s does not
// implement Lister.
func Keys(s Storage) ([]string, error) {
	l, ok := s.(Lister)
	if !ok || !Valid(s) {
		return nil, ErrNotListable
	}
	return l.Keys()
}

// Valid reports whether s is a usable storage handle. A nil interface and a
// typed nil pointer are both invalid, and every adapter function treats them
// as "no persistence requested".
func Valid(s Storage) bool {
	if s == nil {
		return false
	}
	v := reflect.ValueOf(s)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Interface, reflect.Chan:
		return !v.IsNil()
	}
	return true
}

// Lookup reads and decodes key. It reports ok=false, without error, when the
// handle is invalid, nothing is stored, or the stored text does not decode.
func Lookup(s Storage, key string) (value any, ok bool, err error) {
	if !Valid(s) {
		return nil, false, nil
	}

	raw, found, err := s.GetItem(key)
	if err != nil {
		return nil, false, fmt.Errorf("persist: get %q: %w", key, err)
	}
	if !found {
		return nil, false, nil
	}

	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		// Malformed text is a cache miss.
		return nil, false, nil
	}
	return value, true, nil
}

// Get returns the decoded value stored under key, or def when Lookup misses.
// On a backend error def is returned along with the error.
func Get(s Storage, key string, def any) (any, error) {
	value, ok, err := Lookup(s, key)
	if err != nil || !ok {
		return def, err
	}
	return value, nil
}

// Set encodes value and writes it under key when the encoded text differs
// from the stored text. It reports whether a write happened. Encoding errors
// are returned to the caller; nothing is written in that case.
func Set(s Storage, key string, value any) (changed bool, err error) {
	if !Valid(s) {
		return false, nil
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return false, fmt.Errorf("persist: encode %q: %w", key, err)
	}

	current, found, err := s.GetItem(key)
	if err != nil {
		return false, fmt.Errorf("persist: get %q: %w", key, err)
	}
	if found && current == string(encoded) {
		return false, nil
	}

	if err := s.SetItem(key, string(encoded)); err != nil {
		return false, fmt.Errorf("persist: set %q: %w", key, err)
	}
	return true, nil
}

// Remove deletes key when something is stored under it and reports whether
// it did.
func Remove(s Storage, key string) (removed bool, err error) {
	if !Valid(s) {
		return false, nil
	}

	_, found, err := s.GetItem(key)
	if err != nil {
		return false, fmt.Errorf("persist: get %q: %w", key, err)
	}
	if !found {
		return false, nil
	}

	if err := s.RemoveItem(key); err != nil {
		return false, fmt.Errorf("persist: remove %q: %w", key, err)
	}
	return true, nil
}
