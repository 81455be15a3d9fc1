package broadcast

import (
	"log/slog"
	"sync"

	"github.com/vango-dev/storectx/pkg/telemetry"
)

// Listener receives events for the topic it was registered on.
type Listener func(Event)

// Registration identifies one listener registration.
// The zero value is not a registration.
type Registration struct {
	topic string
	id    uint64
}

type entry struct {
	id uint64
	fn Listener
}

// Bus is a synchronous topic-based event bus. It is safe for concurrent
// registration and dispatch; listeners run on the dispatching goroutine.
type Bus struct {
	mu        sync.RWMutex
	listeners map[string][]entry
	nextID    uint64
	count     int

	logger  *slog.Logger
	metrics *telemetry.Metrics
	audit   bool
}

// Option configures a Bus.
type Option func(*Bus)

// WithLogger sets the logger used for registration debug output.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bus) {
		b.logger = logger
	}
}

// WithMetrics records dispatches and listener counts.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(b *Bus) {
		b.metrics = m
	}
}

// WithAudit emits telemetry.BusDispatched for every dispatch.
func WithAudit(enabled bool) Option {
	return func(b *Bus) {
		b.audit = enabled
	}
}

// New creates an empty Bus.
func New(opts ...Option) *Bus {
	b := &Bus{
		listeners: make(map[string][]entry),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

var (
	defaultBus     *Bus
	defaultBusOnce sync.Once
)

// Default returns the process-wide Bus.
func Default() *Bus {
	defaultBusOnce.Do(func() {
		defaultBus = New()
	})
	return defaultBus
}

// AddEventListener registers fn for topic. Listeners of a topic are invoked in
// registration order.
func (b *Bus) AddEventListener(topic string, fn Listener) Registration {
	b.mu.Lock()
	b.nextID++
	id := b.nextID
	b.listeners[topic] = append(b.listeners[topic], entry{id: id, fn: fn})
	b.count++
	count := b.count
	b.mu.Unlock()

	b.metrics.BusListeners(count)
	b.logger.Debug("bus listener added", "topic", topic, "id", id)
	return Registration{topic: topic, id: id}
}

// RemoveEventListener unregisters reg. It reports whether reg was registered.
func (b *Bus) RemoveEventListener(reg Registration) bool {
	b.mu.Lock()
	entries := b.listeners[reg.topic]
	removed := false
	for i, e := range entries {
		if e.id == reg.id {
			next := make([]entry, 0, len(entries)-1)
			next = append(next, entries[:i]...)
			next = append(next, entries[i+1:]...)
			if len(next) == 0 {
				delete(b.listeners, reg.topic)
			} else {
				b.listeners[reg.topic] = next
			}
			b.count--
			removed = true
			break
		}
	}
	count := b.count
	b.mu.Unlock()

	if removed {
		b.metrics.BusListeners(count)
		b.logger.Debug("bus listener removed", "topic", reg.topic, "id", reg.id)
	}
	return removed
}

// DispatchEvent delivers e to every listener registered on e.Type at the time
// of the call and returns how many were invoked. Listeners added or removed
// during delivery take effect for the next dispatch.
func (b *Bus) DispatchEvent(e Event) int {
	b.mu.RLock()
	entries := b.listeners[e.Type]
	b.mu.RUnlock()

	// entries is never mutated in place, so iterating it without the lock is safe.
	for _, en := range entries {
		en.fn(e)
	}

	b.metrics.BusDispatch(e.Type)
	if b.audit {
		telemetry.EmitDispatch(e.Type, e.Detail.Key, len(entries))
	}
	return len(entries)
}

// Listen registers onSet and onRemove for channel name and returns a function
// that removes both registrations. Either callback may be nil.
func (b *Bus) Listen(name string, onSet func(key string, value any), onRemove func(key string)) (stop func()) {
	var regs []Registration
	if onSet != nil {
		regs = append(regs, b.AddEventListener(Topic(name, OpSet), func(e Event) {
			onSet(e.Detail.Key, e.Detail.Value)
		}))
	}
	if onRemove != nil {
		regs = append(regs, b.AddEventListener(Topic(name, OpRemove), func(e Event) {
			onRemove(e.Detail.Key)
		}))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, reg := range regs {
				b.RemoveEventListener(reg)
			}
		})
	}
}

// ListenerCount returns the listeners registered on topic, or on all topics
// when topic is empty.
func (b *Bus) ListenerCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if topic == "" {
		return b.count
	}
	return len(b.listeners[topic])
}
