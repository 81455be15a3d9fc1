package hooks

import (
	"errors"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/reactive"
	"github.com/vango-dev/storectx/pkg/store"
)

// ErrNoProvider is returned by setters used outside of a WithStore provider.
var ErrNoProvider = errors.New("hooks: no store provider")

// SetFunc stores a value.
type SetFunc func(value any) error

// RemoveFunc deletes a value.
type RemoveFunc func() error

// Stores is the batch accessor returned by UseStores.
type Stores struct {
	// SetStores stores every entry of data in one update.
	SetStores func(data map[string]any) error
}

// IsEmpty reports whether value is empty. See store.IsEmpty.
func IsEmpty(value any) bool {
	return store.IsEmpty(value)
}

type remoteState uint8

const (
	remoteNone remoteState = iota
	remoteSet
	remoteRemoved
)

// remoteValue is the last broadcast seen for key on channel name.
type remoteValue struct {
	name  string
	key   string
	value any
	state remoteState
}

// useRemote follows broadcasts for key on the channel of storage. Storages
// without a channel name never receive any.
func useRemote(bus *broadcast.Bus, key string, storage persist.Storage) *reactive.Signal[remoteValue] {
	remote := reactive.UseSignal[remoteValue](nil)
	name := persist.NameOf(storage)

	reactive.UseEffect(func() reactive.Cleanup {
		if r := remote.Peek(); r.state != remoteNone && (r.name != name || r.key != key) {
			remote.Set(remoteValue{})
		}
		if name == "" {
			return nil
		}
		return bus.Listen(name,
			func(k string, v any) {
				if k == key {
					remote.Set(remoteValue{name: name, key: key, value: v, state: remoteSet})
				}
			},
			func(k string) {
				if k == key {
					remote.Set(remoteValue{name: name, key: key, state: remoteRemoved})
				}
			},
		)
	}, bus, name, key)

	return remote
}

// current reports the broadcast for key on name, ignoring one recorded for a
// channel or key the component was bound to before.
func (r remoteValue) current(name, key string) remoteState {
	if r.name != name || r.key != key {
		return remoteNone
	}
	return r.state
}

// UseStore returns the value of key in the nearest store, a setter and a
// remover. The value is, in order: the in-memory entry, the last value
// broadcast for key on storage's channel, the value in storage, def.
//
// The setter and remover keep their identity across renders as long as the
// store, key and storage do not change. Outside a provider the value is def
// and both return ErrNoProvider.
func UseStore(key string, def any, storage persist.Storage) (any, SetFunc, RemoveFunc) {
	st := UseScope()
	bus := UseBus()
	if st != nil {
		bus = st.Bus()
	}
	remote := useRemote(bus, key, storage)

	set := reactive.UseCallback(SetFunc(func(value any) error {
		if st == nil {
			return ErrNoProvider
		}
		return st.Set(key, value, storage)
	}), st, key, storage)

	remove := reactive.UseCallback(RemoveFunc(func() error {
		if st == nil {
			return ErrNoProvider
		}
		return st.Remove(key, storage)
	}), st, key, storage)

	if st == nil {
		return def, set, remove
	}

	if v, ok := st.Lookup(key); ok {
		return v, set, remove
	}

	r := remote.Get()
	switch r.current(persist.NameOf(storage), key) {
	case remoteSet:
		return r.value, set, remove
	case remoteRemoved:
		return def, set, remove
	}

	value, err := persist.Get(storage, key, def)
	if err != nil {
		st.Logger().Error("store read failed", "key", key, "error", err)
	}
	return value, set, remove
}

// UseStores returns the batch setter of the nearest store. It writes through
// to storage when storage is valid.
func UseStores(storage persist.Storage) Stores {
	st := UseScope()
	setStores := reactive.UseCallback(func(data map[string]any) error {
		if st == nil {
			return ErrNoProvider
		}
		return st.Sets(data, storage)
	}, st, storage)
	return Stores{SetStores: setStores}
}
