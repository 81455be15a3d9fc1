package store

import (
	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/telemetry"
)

// SetItem writes value to storage and, when that changed the stored text of
// a conventional handle, publishes a set event on bus. A nil bus means
// broadcast.Default().
func SetItem(bus *broadcast.Bus, storage persist.Storage, key string, value any) (bool, error) {
	changed, err := persist.Set(storage, key, value)
	if err != nil || !changed {
		return changed, err
	}
	name := persist.NameOf(storage)
	publish(bus, name, broadcast.SetEvent(name, key, value))
	return true, nil
}

// RemoveItem deletes key from storage and, when something was removed from a
// conventional handle, publishes a remove event on bus.
func RemoveItem(bus *broadcast.Bus, storage persist.Storage, key string) (bool, error) {
	removed, err := persist.Remove(storage, key)
	if err != nil || !removed {
		return removed, err
	}
	name := persist.NameOf(storage)
	publish(bus, name, broadcast.RemoveEvent(name, key))
	return true, nil
}

func publish(bus *broadcast.Bus, name string, e broadcast.Event) {
	if name == "" {
		return
	}
	if bus == nil {
		bus = broadcast.Default()
	}
	bus.DispatchEvent(e)
	telemetry.EmitPersist(!e.Detail.HasValue, name, e.Detail.Key)
}
