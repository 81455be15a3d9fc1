package reactive

import "testing"

type countingListener struct {
	id    uint64
	dirty int
}

func (l *countingListener) MarkDirty() { l.dirty++ }
func (l *countingListener) ID() uint64 { return l.id }

func TestSignalNotifiesOnChange(t *testing.T) {
	s := NewSignal(1)
	l := &countingListener{id: nextID()}

	WithListener(l, func() {
		if got := s.Get(); got != 1 {
			t.Errorf("Get: got %d, want 1", got)
		}
	})

	s.Set(1)
	if l.dirty != 0 {
		t.Errorf("equal set notified: got %d, want 0", l.dirty)
	}

	s.Set(2)
	if l.dirty != 1 {
		t.Errorf("dirty: got %d, want 1", l.dirty)
	}

	s.Update(func(n int) int { return n + 1 })
	if l.dirty != 2 || s.Peek() != 3 {
		t.Errorf("after Update: dirty=%d value=%d", l.dirty, s.Peek())
	}
}

func TestSignalPeekDoesNotSubscribe(t *testing.T) {
	s := NewSignal("a")
	l := &countingListener{id: nextID()}

	WithListener(l, func() { _ = s.Peek() })
	Untracked(func() { _ = s.Get() })

	s.Set("b")
	if l.dirty != 0 {
		t.Errorf("dirty: got %d, want 0", l.dirty)
	}
	if n := s.base.subscriberCount(); n != 0 {
		t.Errorf("subscribers: got %d, want 0", n)
	}
}

func TestSignalIdentityEquality(t *testing.T) {
	m := map[string]any{"a": 1}
	s := NewSignal[any](m)
	l := &countingListener{id: nextID()}
	WithListener(l, func() { _ = s.Get() })

	m["a"] = 2
	s.Set(m)
	if l.dirty != 0 {
		t.Errorf("same map reference notified: got %d, want 0", l.dirty)
	}

	s.Set(map[string]any{"a": 2})
	if l.dirty != 1 {
		t.Errorf("new map reference: got %d, want 1", l.dirty)
	}
}

func TestSignalWithEquals(t *testing.T) {
	s := NewSignal(1).WithEquals(func(a, b int) bool { return a%2 == b%2 })
	l := &countingListener{id: nextID()}
	WithListener(l, func() { _ = s.Get() })

	s.Set(3)
	if l.dirty != 0 {
		t.Errorf("custom-equal set notified: got %d", l.dirty)
	}
	s.Set(4)
	if l.dirty != 1 {
		t.Errorf("dirty: got %d, want 1", l.dirty)
	}
}

func TestSignalSubscribeDeduplicates(t *testing.T) {
	s := NewSignal(0)
	l := &countingListener{id: nextID()}
	WithListener(l, func() {
		_ = s.Get()
		_ = s.Get()
	})
	if n := s.base.subscriberCount(); n != 1 {
		t.Errorf("subscribers: got %d, want 1", n)
	}
}
