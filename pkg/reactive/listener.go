package reactive

// Listener is notified when a signal it read changes.
type Listener interface {
	// MarkDirty notifies the listener that one of its dependencies changed.
	MarkDirty()

	// ID returns a unique identifier used for deduplication.
	ID() uint64
}

// sourceTracker is implemented by listeners that drop their subscriptions
// before re-running.
type sourceTracker interface {
	addSource(source *signalBase)
}

// Cleanup is returned by effects. It runs before the effect re-runs and when
// its owner is disposed.
type Cleanup func()
