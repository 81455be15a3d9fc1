package hooks_test

import (
	"errors"
	"testing"

	"github.com/vango-dev/storectx/internal/identity"
	"github.com/vango-dev/storectx/pkg/broadcast"
	"github.com/vango-dev/storectx/pkg/hooks"
	"github.com/vango-dev/storectx/pkg/persist"
	"github.com/vango-dev/storectx/pkg/persist/persisttest"
	"github.com/vango-dev/storectx/pkg/reactive"
)

// probe records what an accessor component saw.
type probe struct {
	renders int
	value   any
	set     hooks.SetFunc
	remove  hooks.RemoveFunc
	sets    []hooks.SetFunc
}

func accessor(name string, p *probe, key string, def any, storage persist.Storage) *reactive.Component {
	return reactive.Func(name, func(reactive.Props) []reactive.Element {
		p.renders++
		p.value, p.set, p.remove = hooks.UseStore(key, def, storage)
		p.sets = append(p.sets, p.set)
		return nil
	})
}

func children(cs ...*reactive.Component) []reactive.Element {
	els := make([]reactive.Element, len(cs))
	for i, c := range cs {
		els[i] = reactive.El(c, nil)
	}
	return els
}

func TestUseStore_SharedScope(t *testing.T) {
	bus := broadcast.New()
	var a, b probe
	var stores hooks.Stores

	compA := accessor("A", &a, "key", nil, nil)
	compB := accessor("B", &b, "key", "defaultB", nil)
	app := hooks.WithBus(bus, hooks.WithStore(reactive.Func("App", func(reactive.Props) []reactive.Element {
		stores = hooks.UseStores(nil)
		return children(compA, compB)
	})))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	if a.value != nil || b.value != "defaultB" {
		t.Fatalf("initial: a=%v b=%v, want nil/defaultB", a.value, b.value)
	}

	rt.Act(func() {
		if err := stores.SetStores(map[string]any{"key": "default"}); err != nil {
			t.Fatal(err)
		}
	})
	if a.value != "default" || b.value != "default" {
		t.Errorf("after SetStores: a=%v b=%v", a.value, b.value)
	}
	if a.renders != 2 || b.renders != 2 {
		t.Errorf("renders after SetStores: a=%d b=%d, want 2/2", a.renders, b.renders)
	}

	rt.Act(func() { _ = a.set("set-from-A") })
	if a.value != "set-from-A" || b.value != "set-from-A" {
		t.Errorf("after set: a=%v b=%v", a.value, b.value)
	}

	rt.Act(func() { _ = a.set("set-from-A") })
	if a.renders != 3 || b.renders != 3 {
		t.Errorf("identical set re-rendered: a=%d b=%d, want 3/3", a.renders, b.renders)
	}

	rt.Act(func() { _ = a.remove() })
	if a.value != nil || b.value != "defaultB" {
		t.Errorf("after remove: a=%v b=%v, want nil/defaultB", a.value, b.value)
	}

	rt.Act(func() { _ = b.remove() })
	if a.renders != 4 || b.renders != 4 {
		t.Errorf("removing absent key re-rendered: a=%d b=%d, want 4/4", a.renders, b.renders)
	}
}

func TestUseStore_ScopeIsolation(t *testing.T) {
	bus := broadcast.New()
	var a, b probe

	scope1 := hooks.WithStore(accessor("A", &a, "key", nil, nil))
	scope2 := hooks.WithStore(accessor("B", &b, "key", "mine", nil))
	app := hooks.WithBus(bus, reactive.Func("App", func(reactive.Props) []reactive.Element {
		return children(scope1, scope2)
	}))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	rt.Act(func() { _ = a.set("A") })
	if a.value != "A" {
		t.Errorf("a: got %v, want A", a.value)
	}
	if b.value != "mine" || b.renders != 1 {
		t.Errorf("other scope observed the write: value=%v renders=%d", b.value, b.renders)
	}
}

func TestUseStore_StableSetters(t *testing.T) {
	var a probe
	tick := reactive.NewSignal(0)

	comp := accessor("A", &a, "key", nil, nil)
	app := hooks.WithBus(broadcast.New(), hooks.WithStore(reactive.Func("App", func(reactive.Props) []reactive.Element {
		_ = tick.Get()
		return children(comp)
	})))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	rt.Act(func() { _ = a.set("v") })
	rt.Act(func() { tick.Set(1) })

	if len(a.sets) != 3 {
		t.Fatalf("renders: got %d, want 3", len(a.sets))
	}
	for i := 1; i < len(a.sets); i++ {
		if !identity.Identical(a.sets[0], a.sets[i]) {
			t.Errorf("setter identity changed at render %d", i)
		}
	}
}

func TestUseStore_PersistenceRoundTrip(t *testing.T) {
	spy := persisttest.NewSpy()
	var a probe

	app := hooks.WithBus(broadcast.New(), hooks.WithStore(accessor("A", &a, "key", nil, spy)))
	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	if a.value != nil {
		t.Errorf("first read: got %v, want nil", a.value)
	}
	if n := spy.Gets("key"); n != 1 {
		t.Errorf("GetItem after mount: got %d, want 1", n)
	}

	rt.Act(func() {
		if err := a.set("v"); err != nil {
			t.Fatal(err)
		}
	})
	if spy.Gets("key") != 2 || spy.Sets("key") != 1 {
		t.Errorf("after set: gets=%d sets=%d, want 2/1", spy.Gets("key"), spy.Sets("key"))
	}
	if raw, _ := spy.Raw("key"); raw != `"v"` {
		t.Errorf("stored text: got %q", raw)
	}
	if a.value != "v" {
		t.Errorf("value: got %v, want v", a.value)
	}

	rt.Act(func() { _ = a.set("v") })
	if spy.Gets("key") != 2 || spy.Sets("key") != 1 {
		t.Errorf("identical set touched backend: gets=%d sets=%d", spy.Gets("key"), spy.Sets("key"))
	}
}

func TestUseStores_Batch(t *testing.T) {
	spy := persisttest.NewSpy()
	var a, b probe
	var stores hooks.Stores

	compA := accessor("A", &a, "a", nil, spy)
	compB := accessor("B", &b, "b", nil, spy)
	app := hooks.WithBus(broadcast.New(), hooks.WithStore(reactive.Func("App", func(reactive.Props) []reactive.Element {
		stores = hooks.UseStores(spy)
		return children(compA, compB)
	})))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	rt.Act(func() { _ = a.set(1) })
	spy.Reset()
	rendersA, rendersB := a.renders, b.renders

	rt.Act(func() {
		if err := stores.SetStores(map[string]any{"a": 1, "b": 2}); err != nil {
			t.Fatal(err)
		}
	})

	if spy.Sets("a") != 0 || spy.Sets("b") != 1 {
		t.Errorf("SetItem calls: a=%d b=%d, want 0/1", spy.Sets("a"), spy.Sets("b"))
	}
	if a.renders != rendersA+1 || b.renders != rendersB+1 {
		t.Errorf("renders per accessor: a=+%d b=+%d, want +1/+1", a.renders-rendersA, b.renders-rendersB)
	}
	if b.value != 2 {
		t.Errorf("b: got %v, want 2", b.value)
	}
}

func TestUseStore_CrossScopeBroadcast(t *testing.T) {
	spy := persisttest.NewSpy()
	defer persist.SetLocal(spy)()

	bus := broadcast.New()
	var a, b probe
	scope1 := hooks.WithStore(accessor("A", &a, "key", nil, spy))
	scope2 := hooks.WithStore(accessor("B", &b, "key", nil, spy))
	app := hooks.WithBus(bus, reactive.Func("App", func(reactive.Props) []reactive.Element {
		return children(scope1, scope2)
	}))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))

	if n := spy.Gets("key"); n != 2 {
		t.Fatalf("GetItem after mount: got %d, want 2", n)
	}

	rt.Act(func() { _ = a.set("v") })

	if b.value != "v" {
		t.Errorf("other scope: got %v, want v", b.value)
	}
	if n := spy.Gets("key"); n != 3 {
		t.Errorf("GetItem: got %d, want 3 (one compare, no re-read)", n)
	}

	rt.Act(func() { _ = a.remove() })
	if a.value != nil || b.value != nil {
		t.Errorf("after remove: a=%v b=%v", a.value, b.value)
	}

	root.Unmount()
	if n := bus.ListenerCount(""); n != 0 {
		t.Errorf("listeners after unmount: got %d, want 0", n)
	}
}

func TestUseStore_NoProvider(t *testing.T) {
	var a probe
	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(accessor("A", &a, "key", "def", nil), nil))
	defer root.Unmount()

	if a.value != "def" {
		t.Errorf("value: got %v, want def", a.value)
	}
	if err := a.set("x"); !errors.Is(err, hooks.ErrNoProvider) {
		t.Errorf("set: got %v, want ErrNoProvider", err)
	}
	if err := a.remove(); !errors.Is(err, hooks.ErrNoProvider) {
		t.Errorf("remove: got %v, want ErrNoProvider", err)
	}
}

func TestUseStore_EncodeError(t *testing.T) {
	spy := persisttest.NewSpy()
	var a probe
	app := hooks.WithBus(broadcast.New(), hooks.WithStore(accessor("A", &a, "key", nil, spy)))

	rt := reactive.NewRuntime()
	root := rt.Mount(reactive.El(app, nil))
	defer root.Unmount()

	var err error
	rt.Act(func() { err = a.set(func() {}) })
	if err == nil {
		t.Error("expected encode error from setter")
	}
	if a.renders != 1 {
		t.Errorf("failed set re-rendered: %d", a.renders)
	}
}

func TestIsEmpty(t *testing.T) {
	for _, v := range []any{nil, false, 0, "", []any{}, map[string]any{}} {
		if !hooks.IsEmpty(v) {
			t.Errorf("IsEmpty(%#v): got false, want true", v)
		}
	}
	for _, v := range []any{true, 1, -1, "string", []any{1, 2, 3}, map[int]int{1: 2}, map[string]any{"k": "v"}} {
		if hooks.IsEmpty(v) {
			t.Errorf("IsEmpty(%#v): got true, want false", v)
		}
	}
}
