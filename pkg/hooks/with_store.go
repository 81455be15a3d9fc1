package hooks

import (
	"github.com/vango-dev/storectx/pkg/reactive"
	"github.com/vango-dev/storectx/pkg/store"
)

var storeContext = reactive.CreateContext[*store.Store](nil)

// WithStore wraps c with a provider creating a fresh store.Store on every
// mount. The store is discarded on unmount. opts are applied after the
// defaults (a reactive state and the bus from UseBus).
func WithStore(c *reactive.Component, opts ...store.Option) *reactive.Component {
	return reactive.Func(c.Name(), func(props reactive.Props) []reactive.Element {
		bus := UseBus()
		st := reactive.UseMemo(func() *store.Store {
			all := []store.Option{
				store.WithBus(bus),
				store.WithState(reactive.NewSignal[*store.Snapshot](nil)),
			}
			return store.New(append(all, opts...)...)
		})
		storeContext.Provide(st)
		return []reactive.Element{reactive.El(c, props)}
	})
}

// UseScope returns the store of the nearest WithStore provider, or nil.
func UseScope() *store.Store {
	return storeContext.Use()
}
