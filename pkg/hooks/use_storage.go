package hooks

import (
	"log/slog"

	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/reactive"
	"github.com/vango-dev/storectx/pkg/store"
)

// UseLocalStore binds the component to key in persist.Local. The value is
// read once on mount, then follows every write to key made through any
// UseLocalStore setter or any store writing to persist.Local; a removal sets
// it to nil. No provider is needed.
func UseLocalStore(key string, def any) (any, SetFunc, RemoveFunc) {
	return useStorage(persist.Local(), key, def)
}

// UseSessionStore is UseLocalStore for persist.Session.
func UseSessionStore(key string, def any) (any, SetFunc, RemoveFunc) {
	return useStorage(persist.Session(), key, def)
}

func useStorage(storage persist.Storage, key string, def any) (any, SetFunc, RemoveFunc) {
	bus := UseBus()
	name := persist.NameOf(storage)

	value := reactive.UseSignal(func() any {
		v, err := persist.Get(storage, key, def)
		if err != nil {
			slog.Default().Error("storage read failed", "channel", name, "key", key, "error", err)
		}
		return v
	})

	reactive.UseEffect(func() reactive.Cleanup {
		return bus.Listen(name,
			func(k string, v any) {
				if k == key {
					value.Set(v)
				}
			},
			func(k string) {
				if k == key {
					value.Set(nil)
				}
			},
		)
	}, bus, name, key)

	set := reactive.UseCallback(SetFunc(func(v any) error {
		_, err := store.SetItem(bus, storage, key, v)
		return err
	}), bus, storage, key)

	remove := reactive.UseCallback(RemoveFunc(func() error {
		_, err := store.RemoveItem(bus, storage, key)
		return err
	}), bus, storage, key)

	return value.Get(), set, remove
}
