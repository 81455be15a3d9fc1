package reactive

import "github.com/vango-dev/storectx/internal/identity"

func currentRenderOwner(hook string) *Owner {
	owner := getCurrentOwner()
	if owner == nil {
		panic("reactive: " + hook + " called outside of render")
	}
	return owner
}

// useSlot returns the state in the next hook slot, creating it with init on
// the first render. Slot values are always pointers, so nil means "empty".
func useSlot[S any](hook string, init func() *S) *S {
	owner := currentRenderOwner(hook)
	if slot := owner.UseHookSlot(); slot != nil {
		s, ok := slot.(*S)
		if !ok {
			panic("reactive: hook order changed at " + hook)
		}
		return s
	}
	s := init()
	owner.SetHookSlot(s)
	return s
}

// UseSignal returns a component-local signal. init runs on the first render
// only.
func UseSignal[T any](init func() T) *Signal[T] {
	return useSlot("UseSignal", func() *Signal[T] {
		var v T
		if init != nil {
			Untracked(func() { v = init() })
		}
		return NewSignal(v)
	})
}

type depsSlot[T any] struct {
	value T
	deps  []any
}

// UseMemo returns compute() from the first render, recomputing it whenever
// deps are not identical to the previous render's deps.
func UseMemo[T any](compute func() T, deps ...any) T {
	s := useSlot("UseMemo", func() *depsSlot[T] {
		var v T
		Untracked(func() { v = compute() })
		return &depsSlot[T]{value: v, deps: deps}
	})
	if !identity.SameDeps(s.deps, deps) {
		Untracked(func() { s.value = compute() })
		s.deps = deps
	}
	return s.value
}

// UseCallback returns fn as passed on the first render, and again the same
// function until deps change, so callers may hold on to it.
func UseCallback[F any](fn F, deps ...any) F {
	s := useSlot("UseCallback", func() *depsSlot[F] {
		return &depsSlot[F]{value: fn, deps: deps}
	})
	if !identity.SameDeps(s.deps, deps) {
		s.value = fn
		s.deps = deps
	}
	return s.value
}

// effect is the state of one UseEffect call site.
type effect struct {
	owner    *Owner
	fn       func() Cleanup
	deps     []any
	cleanup  Cleanup
	disposed bool
}

func (e *effect) run() {
	if e.disposed {
		return
	}
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
	Untracked(func() {
		WithOwner(e.owner, func() {
			e.cleanup = e.fn()
		})
	})
}

func (e *effect) dispose() {
	if e.disposed {
		return
	}
	e.disposed = true
	if e.cleanup != nil {
		e.cleanup()
		e.cleanup = nil
	}
}

// UseEffect runs fn after the render commits: once after the first render,
// then after every render whose deps are not identical to the previous ones.
// The returned Cleanup runs before the next run and when the component
// unmounts. Effects of children run before those of their parent.
func UseEffect(fn func() Cleanup, deps ...any) {
	owner := currentRenderOwner("UseEffect")
	fresh := false
	e := useSlot("UseEffect", func() *effect {
		fresh = true
		e := &effect{owner: owner, fn: fn, deps: deps}
		owner.OnCleanup(e.dispose)
		return e
	})
	if fresh {
		owner.scheduleEffect(e)
		return
	}
	if !identity.SameDeps(e.deps, deps) {
		e.fn = fn
		e.deps = deps
		owner.scheduleEffect(e)
	}
}

// Ref is a mutable box that survives re-renders without triggering them.
type Ref[T any] struct {
	Current T
}

// UseRef returns the same *Ref on every render.
func UseRef[T any](initial T) *Ref[T] {
	return useSlot("UseRef", func() *Ref[T] {
		return &Ref[T]{Current: initial}
	})
}
