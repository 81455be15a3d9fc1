// Package hooks binds the scoped store and the persistence handles to
// reactive components.
//
// WithStore wraps a component with a provider that creates one store.Store
// per mount. Inside it, UseStore returns a (value, set, remove) triple for one
// key and UseStores a batch setter. UseLocalStore and UseSessionStore need no
// provider: they bind a component directly to persist.Local or
// persist.Session and follow writes made by other components through the
// broadcast bus.
//
//	app := hooks.WithStore(reactive.Func("App", func(reactive.Props) []reactive.Element {
//	    value, set, _ := hooks.UseStore("key", "default", nil)
//	    reactive.UseEffect(func() reactive.Cleanup {
//	        if hooks.IsEmpty(value) {
//	            _ = set("value")
//	        }
//	        return nil
//	    })
//	    return nil
//	}))
package hooks
