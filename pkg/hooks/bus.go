package hooks

import (
	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/reactive"
)

var busContext = reactive.CreateContext[*broadcast.Bus](nil)

// WithBus wraps c so that it and its descendants publish and listen on bus
// instead of broadcast.Default().
func WithBus(bus *broadcast.Bus, c *reactive.Component) *reactive.Component {
	return reactive.Func(c.Name(), func(props reactive.Props) []reactive.Element {
		busContext.Provide(bus)
		return []reactive.Element{reactive.El(c, props)}
	})
}

// UseBus returns the bus provided by the nearest WithBus, or
// broadcast.Default().
func UseBus() *broadcast.Bus {
	if bus := busContext.Use(); bus != nil {
		return bus
	}
	return broadcast.Default()
}
