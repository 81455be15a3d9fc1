package store

import (
	"log/slog"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/telemetry"
)

// Write operations, used as metric labels.
const (
	OpSet    = "set"
	OpRemove = "remove"
	OpSets   = "sets"
)

// Store is the key-value store of one scope.
type Store struct {
	id string

	// mu serializes read-modify-write of state.
	mu    sync.Mutex
	state State

	bus     *broadcast.Bus
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithState sets the holder of the current Snapshot. Supplying a reactive
// signal makes Get and Lookup tracked reads.
func WithState(s State) Option {
	return func(st *Store) {
		if s != nil {
			st.state = s
		}
	}
}

// WithBus sets the bus writes to conventional handles are published on.
// Default: broadcast.Default().
func WithBus(b *broadcast.Bus) Option {
	return func(st *Store) {
		if b != nil {
			st.bus = b
		}
	}
}

// WithMetrics records write outcomes.
func WithMetrics(m *telemetry.Metrics) Option {
	return func(st *Store) {
		st.metrics = m
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(st *Store) {
		if logger != nil {
			st.logger = logger
		}
	}
}

// New creates an empty Store.
func New(opts ...Option) *Store {
	s := &Store{
		id:     uuid.NewString(),
		state:  &plainState{},
		bus:    broadcast.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With("scope", s.id)
	return s
}

// ID returns the scope identifier.
func (s *Store) ID() string {
	return s.id
}

// Bus returns the bus the store publishes on.
func (s *Store) Bus() *broadcast.Bus {
	return s.bus
}

// Logger returns the store's logger, tagged with its scope.
func (s *Store) Logger() *slog.Logger {
	return s.logger
}

// Snapshot returns the current entries without tracking.
func (s *Store) Snapshot() *Snapshot {
	return s.state.Peek()
}

// Lookup returns the in-memory entry for key. It is a tracked read.
func (s *Store) Lookup(key string) (any, bool) {
	return s.state.Get().Lookup(key)
}

// Get returns the in-memory entry for key, or else the value stored in
// storage, or else def. A backend read error is returned with def.
func (s *Store) Get(key string, def any, storage persist.Storage) (any, error) {
	if v, ok := s.Lookup(key); ok {
		return v, nil
	}
	return persist.Get(storage, key, def)
}

// Set stores value under key. It is a no-op when value is Identical to the
// current entry. Otherwise the value is written through to storage first and
// then replaces the entry, even when storage already held the same encoding.
// An encode or backend error leaves the entry unchanged.
func (s *Store) Set(key string, value any, storage persist.Storage) error {
	channel := persist.NameOf(storage)

	s.mu.Lock()
	prev := s.state.Peek()
	if cur, ok := prev.Lookup(key); ok && Identical(cur, value) {
		s.mu.Unlock()
		s.metrics.StoreWrite(OpSet, telemetry.ResultSuppressed)
		s.logger.Debug("store set suppressed", "key", key)
		return nil
	}

	persisted, err := persist.Set(storage, key, value)
	if err != nil {
		s.mu.Unlock()
		s.metrics.StoreWrite(OpSet, telemetry.ResultError)
		s.metrics.PersistOp(channel, OpSet, telemetry.ResultError)
		return err
	}
	s.state.Set(prev.with(key, value))
	s.mu.Unlock()

	s.metrics.StoreWrite(OpSet, telemetry.ResultApplied)
	s.logger.Debug("store set", "key", key, "persisted", persisted)
	if persist.Valid(storage) {
		s.afterPersist(channel, OpSet, persisted, broadcast.SetEvent(channel, key, value))
	}
	return nil
}

// Remove deletes key from memory and from storage. It is a no-op when key is
// in neither.
func (s *Store) Remove(key string, storage persist.Storage) error {
	channel := persist.NameOf(storage)

	s.mu.Lock()
	removed, err := persist.Remove(storage, key)
	if err != nil {
		s.mu.Unlock()
		s.metrics.StoreWrite(OpRemove, telemetry.ResultError)
		s.metrics.PersistOp(channel, OpRemove, telemetry.ResultError)
		return err
	}

	prev := s.state.Peek()
	_, present := prev.Lookup(key)
	if !removed && !present {
		s.mu.Unlock()
		s.metrics.StoreWrite(OpRemove, telemetry.ResultSuppressed)
		return nil
	}
	s.state.Set(prev.without(key))
	s.mu.Unlock()

	s.metrics.StoreWrite(OpRemove, telemetry.ResultApplied)
	s.logger.Debug("store remove", "key", key, "persisted", removed)
	if persist.Valid(storage) {
		s.afterPersist(channel, OpRemove, removed, broadcast.RemoveEvent(channel, key))
	}
	return nil
}

// Sets stores every entry of data whose value is not Identical to the
// current one, replacing the Snapshot once for all of them. Keys are written
// through in ascending order. On an error the Snapshot is left unchanged and
// the error is returned; entries already written to storage stay written.
func (s *Store) Sets(data map[string]any, storage persist.Storage) error {
	channel := persist.NameOf(storage)

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s.mu.Lock()
	prev := s.state.Peek()
	staged := make(map[string]any, len(keys))
	var written []string
	for _, k := range keys {
		v := data[k]
		if cur, ok := prev.Lookup(k); ok && Identical(cur, v) {
			continue
		}
		persisted, err := persist.Set(storage, k, v)
		if err != nil {
			s.mu.Unlock()
			s.metrics.StoreWrite(OpSets, telemetry.ResultError)
			s.metrics.PersistOp(channel, OpSet, telemetry.ResultError)
			s.publishAll(channel, written, data)
			return err
		}
		if persisted {
			written = append(written, k)
		}
		staged[k] = v
	}

	if len(staged) == 0 {
		s.mu.Unlock()
		s.metrics.StoreWrite(OpSets, telemetry.ResultSuppressed)
		return nil
	}
	s.state.Set(prev.merge(staged))
	s.mu.Unlock()

	s.metrics.StoreWrite(OpSets, telemetry.ResultApplied)
	s.logger.Debug("store sets", "keys", len(staged), "persisted", len(written))
	s.publishAll(channel, written, data)
	return nil
}

func (s *Store) publishAll(channel string, written []string, data map[string]any) {
	for _, k := range written {
		s.afterPersist(channel, OpSet, true, broadcast.SetEvent(channel, k, data[k]))
	}
}

func (s *Store) afterPersist(channel, op string, changed bool, e broadcast.Event) {
	if !changed {
		s.metrics.PersistOp(channel, op, telemetry.ResultSuppressed)
		return
	}
	s.metrics.PersistOp(channel, op, telemetry.ResultApplied)
	publish(s.bus, channel, e)
}
