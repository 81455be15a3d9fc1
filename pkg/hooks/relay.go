package hooks

import (
	"context"
	"encoding/json"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
)

// Relay republishes changes observed on a backend, typically
// persist.FileStorage.Watch, as bus events on channel name, so accessors
// bound to that channel follow writes made by other processes. When
// dispatch is non-nil events are delivered through it (for example
// Runtime.Dispatch) instead of on the calling goroutine. Values that are not
// valid JSON are skipped. Relay returns when changes is closed or ctx is
// done.
func Relay(ctx context.Context, changes <-chan persist.Change, bus *broadcast.Bus, name string, dispatch func(func())) error {
	if bus == nil {
		bus = broadcast.Default()
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-changes:
			if !ok {
				return nil
			}

			var e broadcast.Event
			if c.Removed {
				e = broadcast.RemoveEvent(name, c.Key)
			} else {
				var value any
				if err := json.Unmarshal([]byte(c.Value), &value); err != nil {
					continue
				}
				e = broadcast.SetEvent(name, c.Key, value)
			}

			if dispatch != nil {
				dispatch(func() { bus.DispatchEvent(e) })
			} else {
				bus.DispatchEvent(e)
			}
		}
	}
}
