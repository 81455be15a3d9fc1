// Package persisttest provides Storage doubles for tests.
package persisttest

import (
	"errors"
	"sync"

	"github.com/vango-dev/storectx/pkg/persist"
)

// ErrInjected is returned by a Spy whose Fail flag is set.
var ErrInjected = errors.New("persisttest: injected failure")

// Spy is an in-memory Storage that counts calls per method.
type Spy struct {
	mem *persist.MemoryStorage

	mu      sync.Mutex
	gets    map[string]int
	sets    map[string]int
	removes map[string]int
	fail    map[string]bool
}

// NewSpy returns an empty Spy.
func NewSpy() *Spy {
	return &Spy{
		mem:     persist.NewMemoryStorage(),
		gets:    make(map[string]int),
		sets:    make(map[string]int),
		removes: make(map[string]int),
		fail:    make(map[string]bool),
	}
}

// Seed stores raw text under key without counting the call.
func (s *Spy) Seed(key, raw string) {
	_ = s.mem.SetItem(key, raw)
}

// Raw returns the stored text without counting the call.
func (s *Spy) Raw(key string) (string, bool) {
	v, ok, _ := s.mem.GetItem(key)
	return v, ok
}

// FailOn makes every call touching key return ErrInjected.
func (s *Spy) FailOn(key string) {
	s.mu.Lock()
	s.fail[key] = true
	s.mu.Unlock()
}

// Gets returns the number of GetItem calls for key.
func (s *Spy) Gets(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.gets[key]
}

// Sets returns the number of SetItem calls for key.
func (s *Spy) Sets(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sets[key]
}

// Removes returns the number of RemoveItem calls for key.
func (s *Spy) Removes(key string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removes[key]
}

// Reset zeroes the counters.
func (s *Spy) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets = make(map[string]int)
	s.sets = make(map[string]int)
	s.removes = make(map[string]int)
}

func (s *Spy) count(m map[string]int, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m[key]++
	if s.fail[key] {
		return ErrInjected
	}
	return nil
}

// GetItem implements persist.Storage.
func (s *Spy) GetItem(key string) (string, bool, error) {
	if err := s.count(s.gets, key); err != nil {
		return "", false, err
	}
	return s.mem.GetItem(key)
}

// SetItem implements persist.Storage.
func (s *Spy) SetItem(key, value string) error {
	if err := s.count(s.sets, key); err != nil {
		return err
	}
	return s.mem.SetItem(key, value)
}

// RemoveItem implements persist.Storage.
func (s *Spy) RemoveItem(key string) error {
	if err := s.count(s.removes, key); err != nil {
		return err
	}
	return s.mem.RemoveItem(key)
}

// Keys implements persist.Lister.
func (s *Spy) Keys() ([]string, error) {
	return s.mem.Keys()
}
