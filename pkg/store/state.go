package store

import "sync/atomic"

// State holds the current Snapshot of a Store. Get is a tracked read: a
// reactive implementation subscribes the running computation to later Set
// calls. Peek reads without subscribing.
//
// *reactive.Signal[*store.Snapshot] satisfies State.
type State interface {
	Get() *Snapshot
	Peek() *Snapshot
	Set(*Snapshot)
}

// plainState is the untracked State used when none is supplied.
type plainState struct {
	v atomic.Pointer[Snapshot]
}

func (p *plainState) Get() *Snapshot  { return p.v.Load() }
func (p *plainState) Peek() *Snapshot { return p.v.Load() }
func (p *plainState) Set(s *Snapshot) { p.v.Store(s) }
