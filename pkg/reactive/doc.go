// Package reactive is a small component runtime: owner scopes, signals,
// hooks and a render loop.
//
// Components are render functions that return child elements. Reading a
// Signal during render subscribes the component; setting the Signal marks it
// dirty and the Runtime re-renders it on the next Flush.
//
//	count := reactive.Func("Counter", func(reactive.Props) []reactive.Element {
//	    n := reactive.UseSignal(func() int { return 0 })
//	    reactive.UseEffect(func() reactive.Cleanup {
//	        n.Set(n.Peek() + 1)
//	        return nil
//	    })
//	    fmt.Println(n.Get())
//	    return nil
//	})
//
//	rt := reactive.NewRuntime()
//	root := rt.Mount(reactive.El(count, nil))
//	defer root.Unmount()
//
// # Hooks
//
// UseSignal, UseMemo, UseCallback, UseEffect and Context.Use are hooks. They
// must be called during render, unconditionally and in the same order on
// every render, since their state is kept in per-owner slots.
//
// # Equality
//
// A Signal notifies only when the new value is not identical to the old one:
// == for comparable values, the same reference for maps, slices and funcs.
//
// # Threading
//
// Rendering and effects run on the goroutine calling Mount, Act or Flush.
// Signal.Set is safe from any goroutine; use Runtime.Dispatch to run a
// function on the loop started by Runtime.Run.
package reactive
