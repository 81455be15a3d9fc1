package store_test

import (
	"errors"
	"testing"

	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/persist/persisttest"
	"github.com/vango-dev/storectx/pkg/store"
)

// countingState counts Snapshot replacements.
type countingState struct {
	cur  *store.Snapshot
	sets int
}

func (c *countingState) Get() *store.Snapshot  { return c.cur }
func (c *countingState) Peek() *store.Snapshot { return c.cur }
func (c *countingState) Set(s *store.Snapshot) {
	c.cur = s
	c.sets++
}

func newStore(t *testing.T) (*store.Store, *countingState) {
	t.Helper()
	st := &countingState{}
	return store.New(store.WithState(st), store.WithBus(broadcast.New())), st
}

func mustGet(t *testing.T, s *store.Store, key string, def any, storage persist.Storage) any {
	t.Helper()
	v, err := s.Get(key, def, storage)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v
}

func TestStore_ReadAfterWrite(t *testing.T) {
	s, st := newStore(t)

	if got := mustGet(t, s, "key", "def", nil); got != "def" {
		t.Errorf("initial: got %v, want def", got)
	}

	if err := s.Set("key", "v", nil); err != nil {
		t.Fatal(err)
	}
	if got := mustGet(t, s, "key", "def", nil); got != "v" {
		t.Errorf("after set: got %v, want v", got)
	}
	if st.sets != 1 {
		t.Errorf("replacements: got %d, want 1", st.sets)
	}

	if err := s.Set("key", "v", nil); err != nil {
		t.Fatal(err)
	}
	if st.sets != 1 {
		t.Errorf("replacements after identical set: got %d, want 1", st.sets)
	}
}

func TestStore_FalsyValuesArePresent(t *testing.T) {
	s, _ := newStore(t)

	for _, v := range []any{nil, false, 0, ""} {
		if err := s.Set("key", v, nil); err != nil {
			t.Fatal(err)
		}
		if got := mustGet(t, s, "key", "def", nil); got != v {
			t.Errorf("got %#v, want %#v", got, v)
		}
	}
}

func TestStore_IdentityNotDeepEquality(t *testing.T) {
	s, st := newStore(t)

	m := map[string]any{"n": 1}
	_ = s.Set("obj", m, nil)
	_ = s.Set("obj", m, nil)
	if st.sets != 1 {
		t.Errorf("same map twice: got %d replacements, want 1", st.sets)
	}

	_ = s.Set("obj", map[string]any{"n": 1}, nil)
	if st.sets != 2 {
		t.Errorf("equal but distinct map: got %d replacements, want 2", st.sets)
	}
}

func TestStore_Remove(t *testing.T) {
	s, st := newStore(t)

	if err := s.Remove("key", nil); err != nil {
		t.Fatal(err)
	}
	if st.sets != 0 {
		t.Errorf("removing absent key: got %d replacements, want 0", st.sets)
	}

	_ = s.Set("key", "v", nil)
	_ = s.Remove("key", nil)
	if st.sets != 2 {
		t.Errorf("replacements: got %d, want 2", st.sets)
	}
	if got := mustGet(t, s, "key", "def", nil); got != "def" {
		t.Errorf("after remove: got %v, want def", got)
	}
	if got := mustGet(t, s, "key", nil, nil); got != nil {
		t.Errorf("after remove without default: got %v, want nil", got)
	}
}

func TestStore_RemovePersistedOnly(t *testing.T) {
	s, st := newStore(t)
	spy := persisttest.NewSpy()
	spy.Seed("key", `"stored"`)

	_ = s.Remove("key", spy)
	if st.sets != 1 {
		t.Errorf("removing a persisted key: got %d replacements, want 1", st.sets)
	}
	if _, ok := spy.Raw("key"); ok {
		t.Error("key still in backend")
	}
}

func TestStore_PersistenceRoundTrip(t *testing.T) {
	s, _ := newStore(t)
	spy := persisttest.NewSpy()

	if got := mustGet(t, s, "key", nil, spy); got != nil {
		t.Errorf("first read: got %v, want nil", got)
	}
	if n := spy.Gets("key"); n != 1 {
		t.Errorf("GetItem after first read: got %d, want 1", n)
	}

	if err := s.Set("key", "v", spy); err != nil {
		t.Fatal(err)
	}
	if n := spy.Gets("key"); n != 2 {
		t.Errorf("GetItem after set: got %d, want 2", n)
	}
	if n := spy.Sets("key"); n != 1 {
		t.Errorf("SetItem after set: got %d, want 1", n)
	}
	if raw, _ := spy.Raw("key"); raw != `"v"` {
		t.Errorf("stored text: got %q, want %q", raw, `"v"`)
	}

	if err := s.Set("key", "v", spy); err != nil {
		t.Fatal(err)
	}
	if spy.Gets("key") != 2 || spy.Sets("key") != 1 {
		t.Errorf("identical set touched backend: gets=%d sets=%d", spy.Gets("key"), spy.Sets("key"))
	}
}

func TestStore_ReadThrough(t *testing.T) {
	s, _ := newStore(t)
	spy := persisttest.NewSpy()
	spy.Seed("key", `"stored"`)

	if got := mustGet(t, s, "key", "def", spy); got != "stored" {
		t.Errorf("got %v, want stored", got)
	}

	_ = s.Set("key", "mem", nil)
	before := spy.Gets("key")
	if got := mustGet(t, s, "key", "def", spy); got != "mem" {
		t.Errorf("in-memory should win: got %v", got)
	}
	if spy.Gets("key") != before {
		t.Error("in-memory hit should not read the backend")
	}
}

func TestStore_SetUpdatesMemoryWhenBackendUnchanged(t *testing.T) {
	s, st := newStore(t)
	spy := persisttest.NewSpy()
	spy.Seed("key", `"v"`)

	if err := s.Set("key", "v", spy); err != nil {
		t.Fatal(err)
	}
	if spy.Sets("key") != 0 {
		t.Errorf("SetItem: got %d, want 0", spy.Sets("key"))
	}
	if st.sets != 1 {
		t.Errorf("replacements: got %d, want 1", st.sets)
	}
	if v, ok := s.Lookup("key"); !ok || v != "v" {
		t.Errorf("Lookup: got %v (%v), want v", v, ok)
	}
}

func TestStore_EncodeErrorLeavesEntry(t *testing.T) {
	s, st := newStore(t)
	spy := persisttest.NewSpy()

	err := s.Set("fn", func() {}, spy)
	if err == nil {
		t.Fatal("expected encode error")
	}
	if st.sets != 0 {
		t.Errorf("replacements: got %d, want 0", st.sets)
	}

	// Without a backend nothing is encoded.
	if err := s.Set("fn", func() {}, nil); err != nil {
		t.Errorf("unexpected error without backend: %v", err)
	}
}

func TestStore_BackendError(t *testing.T) {
	s, _ := newStore(t)
	spy := persisttest.NewSpy()
	spy.FailOn("key")

	if err := s.Set("key", "v", spy); !errors.Is(err, persisttest.ErrInjected) {
		t.Errorf("Set: got %v, want ErrInjected", err)
	}
	if err := s.Remove("key", spy); !errors.Is(err, persisttest.ErrInjected) {
		t.Errorf("Remove: got %v, want ErrInjected", err)
	}
	if _, err := s.Get("key", "def", spy); !errors.Is(err, persisttest.ErrInjected) {
		t.Errorf("Get: got %v, want ErrInjected", err)
	}
}

func TestStore_Sets(t *testing.T) {
	s, st := newStore(t)
	spy := persisttest.NewSpy()

	_ = s.Set("a", 1, spy)
	spy.Reset()
	st.sets = 0

	if err := s.Sets(map[string]any{"a": 1, "b": 2}, spy); err != nil {
		t.Fatal(err)
	}
	if st.sets != 1 {
		t.Errorf("replacements: got %d, want 1", st.sets)
	}
	if n := spy.Sets("a"); n != 0 {
		t.Errorf("SetItem(a): got %d, want 0", n)
	}
	if n := spy.Gets("a"); n != 0 {
		t.Errorf("GetItem(a): got %d, want 0", n)
	}
	if n := spy.Sets("b"); n != 1 {
		t.Errorf("SetItem(b): got %d, want 1", n)
	}
	if got := mustGet(t, s, "b", nil, nil); got != 2 {
		t.Errorf("b: got %v, want 2", got)
	}

	if err := s.Sets(map[string]any{"a": 1, "b": 2}, spy); err != nil {
		t.Fatal(err)
	}
	if st.sets != 1 {
		t.Errorf("no-op batch: got %d replacements, want 1", st.sets)
	}
}

func TestStore_SetsNeverMutatesPrevious(t *testing.T) {
	s, _ := newStore(t)
	_ = s.Set("a", 1, nil)

	prev := s.Snapshot()
	_ = s.Sets(map[string]any{"a": 10, "b": 2}, nil)

	if v, _ := prev.Lookup("a"); v != 1 {
		t.Errorf("previous snapshot a: got %v, want 1", v)
	}
	if _, ok := prev.Lookup("b"); ok {
		t.Error("previous snapshot gained b")
	}
	if prev == s.Snapshot() {
		t.Error("snapshot was not replaced")
	}
	if got := s.Snapshot().Map(); len(got) != 2 || got["a"] != 10 || got["b"] != 2 {
		t.Errorf("current snapshot: got %v", got)
	}
}

func TestStore_SetsErrorKeepsSnapshot(t *testing.T) {
	s, st := newStore(t)
	spy := persisttest.NewSpy()
	spy.FailOn("b")

	prev := s.Snapshot()
	err := s.Sets(map[string]any{"a": 1, "b": 2}, spy)
	if !errors.Is(err, persisttest.ErrInjected) {
		t.Fatalf("got %v, want ErrInjected", err)
	}
	if st.sets != 0 || s.Snapshot() != prev {
		t.Error("snapshot replaced after failed batch")
	}
	if raw, ok := spy.Raw("a"); !ok || raw != "1" {
		t.Errorf("a written before the failure: got %q (%v)", raw, ok)
	}
}

func TestStore_PublishesOnNamedBackend(t *testing.T) {
	local := persist.NewMemoryStorage()
	defer persist.SetLocal(local)()

	bus := broadcast.New()
	s := store.New(store.WithBus(bus))

	var events []broadcast.Event
	stop := bus.Listen(persist.LocalName,
		func(key string, value any) {
			events = append(events, broadcast.SetEvent(persist.LocalName, key, value))
		},
		func(key string) {
			events = append(events, broadcast.RemoveEvent(persist.LocalName, key))
		},
	)
	defer stop()

	_ = s.Set("key", "v", local)
	_ = s.Set("key", "v", local)
	_ = s.Remove("key", local)
	_ = s.Remove("key", local)
	_ = s.Set("other", "x", persist.NewMemoryStorage())

	if len(events) != 2 {
		t.Fatalf("events: got %d, want 2 (%v)", len(events), events)
	}
	if events[0].Type != "localStorage.setItem" || events[0].Detail.Value != "v" {
		t.Errorf("first event: got %+v", events[0])
	}
	if events[1].Type != "localStorage.removeItem" || events[1].Detail.Key != "key" {
		t.Errorf("second event: got %+v", events[1])
	}
}

func TestSetItem(t *testing.T) {
	session := persist.NewMemoryStorage()
	defer persist.SetSession(session)()

	bus := broadcast.New()
	var seen []string
	stop := bus.Listen(persist.SessionName,
		func(key string, _ any) { seen = append(seen, "set:"+key) },
		func(key string) { seen = append(seen, "remove:"+key) },
	)
	defer stop()

	changed, err := store.SetItem(bus, session, "k", 1)
	if err != nil || !changed {
		t.Fatalf("SetItem: changed=%v err=%v", changed, err)
	}
	changed, _ = store.SetItem(bus, session, "k", 1)
	if changed {
		t.Error("identical encoding should not be rewritten")
	}
	removed, _ := store.RemoveItem(bus, session, "k")
	if !removed {
		t.Error("RemoveItem should report removal")
	}
	removed, _ = store.RemoveItem(bus, session, "k")
	if removed {
		t.Error("second RemoveItem should be a no-op")
	}

	if len(seen) != 2 || seen[0] != "set:k" || seen[1] != "remove:k" {
		t.Errorf("events: got %v, want [set:k remove:k]", seen)
	}
}

func TestStore_IDsAreDistinct(t *testing.T) {
	a, _ := newStore(t)
	b, _ := newStore(t)
	if a.ID() == b.ID() {
		t.Error("two stores share an ID")
	}
}
