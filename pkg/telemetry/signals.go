package telemetry

import (
	"context"

	"github.com/zoobzio/capitan"
)

// Persistence signals.
var (
	// PersistSet is emitted when a write-through changed a backend value.
	PersistSet = capitan.NewSignal(
		"storectx.persist.set",
		"Backend value written",
	)

	// PersistRemoved is emitted when a backend value was removed.
	PersistRemoved = capitan.NewSignal(
		"storectx.persist.removed",
		"Backend value removed",
	)
)

// Bus signals.
var (
	// BusDispatched is emitted after an event was delivered to its listeners.
	BusDispatched = capitan.NewSignal(
		"storectx.bus.dispatched",
		"Broadcast event delivered",
	)
)

// Field keys for storectx events.
var (
	// KeyKey is the store key the event refers to.
	KeyKey = capitan.NewStringKey("key")

	// KeyChannel is the backend channel name ("local", "session" or "").
	KeyChannel = capitan.NewStringKey("channel")

	// KeyTopic is the bus topic.
	KeyTopic = capitan.NewStringKey("topic")

	// KeyListeners is the number of listeners an event reached.
	KeyListeners = capitan.NewIntKey("listeners")
)

// EmitPersist emits PersistSet or PersistRemoved for key on channel.
func EmitPersist(removed bool, channel, key string) {
	sig := PersistSet
	if removed {
		sig = PersistRemoved
	}
	capitan.Emit(context.Background(), sig,
		KeyChannel.Field(channel),
		KeyKey.Field(key),
	)
}

// EmitDispatch emits BusDispatched for topic.
func EmitDispatch(topic, key string, listeners int) {
	capitan.Emit(context.Background(), BusDispatched,
		KeyTopic.Field(topic),
		KeyKey.Field(key),
		KeyListeners.Field(listeners),
	)
}
