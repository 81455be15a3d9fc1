package store

import (
	"maps"
	"sort"
)

// Snapshot is an immutable view of a Store's entries. A nil *Snapshot is
// empty.
type Snapshot struct {
	entries map[string]any
}

// Lookup returns the entry for key and whether it is present.
func (s *Snapshot) Lookup(key string) (any, bool) {
	if s == nil {
		return nil, false
	}
	v, ok := s.entries[key]
	return v, ok
}

// Len returns the number of entries.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.entries)
}

// Keys returns the keys in ascending order.
func (s *Snapshot) Keys() []string {
	if s == nil {
		return nil
	}
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Map returns a copy of the entries.
func (s *Snapshot) Map() map[string]any {
	if s == nil {
		return map[string]any{}
	}
	return maps.Clone(s.entries)
}

func (s *Snapshot) with(key string, value any) *Snapshot {
	next := make(map[string]any, s.Len()+1)
	if s != nil {
		maps.Copy(next, s.entries)
	}
	next[key] = value
	return &Snapshot{entries: next}
}

func (s *Snapshot) without(key string) *Snapshot {
	next := make(map[string]any, s.Len())
	if s != nil {
		for k, v := range s.entries {
			if k != key {
				next[k] = v
			}
		}
	}
	return &Snapshot{entries: next}
}

func (s *Snapshot) merge(staged map[string]any) *Snapshot {
	next := make(map[string]any, s.Len()+len(staged))
	if s != nil {
		maps.Copy(next, s.entries)
	}
	maps.Copy(next, staged)
	return &Snapshot{entries: next}
}
