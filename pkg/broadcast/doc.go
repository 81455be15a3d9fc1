// Package broadcast is the cross-scope sync channel: a synchronous,
// topic-based publish/subscribe bus that carries backend writes and removals
// to every accessor bound to the same backend.
//
// Topics follow the "<name>Storage.<op>" convention, where name is the
// backend's channel name ("local" or "session") and op is "setItem" or
// "removeItem". Events are delivered synchronously, in dispatch order, on the
// goroutine that dispatched them. There is no coalescing and no reordering.
//
// A process-wide Bus is available through Default; tests and embedders
// construct their own with New.
//
//	bus := broadcast.New()
//	stop := bus.Listen("local",
//	    func(key string, value any) { fmt.Println("set", key, value) },
//	    func(key string) { fmt.Println("removed", key) },
//	)
//	defer stop()
//	bus.DispatchEvent(broadcast.SetEvent("local", "theme", "dark"))
package broadcast
