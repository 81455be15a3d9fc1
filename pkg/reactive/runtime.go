package reactive

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sort"
	"sync"

	"github.com/vango-dev/storectx/pkg/telemetry"
)

// DefaultMaxPasses bounds the render passes of one Flush.
const DefaultMaxPasses = 100

// Runtime mounts component trees and re-renders them when the signals they
// read change.
type Runtime struct {
	owner *Owner

	// cycle serializes Mount, Act and Flush.
	cycle sync.Mutex

	dirtyMu sync.Mutex
	dirty   []*instance

	effects []*effect

	dispatchCh chan func()
	wake       chan struct{}

	maxPasses int
	logger    *slog.Logger
	metrics   *telemetry.Metrics
}

// RuntimeOption configures a Runtime.
type RuntimeOption func(*Runtime)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RuntimeOption {
	return func(r *Runtime) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithMetrics records renders and render storms.
func WithMetrics(m *telemetry.Metrics) RuntimeOption {
	return func(r *Runtime) {
		r.metrics = m
	}
}

// WithMaxPasses sets how many render passes one Flush may take before it
// gives up on a render loop. Default: DefaultMaxPasses.
func WithMaxPasses(n int) RuntimeOption {
	return func(r *Runtime) {
		if n > 0 {
			r.maxPasses = n
		}
	}
}

// WithQueueSize sets the capacity of the Dispatch queue. Default: 256.
func WithQueueSize(n int) RuntimeOption {
	return func(r *Runtime) {
		if n > 0 {
			r.dispatchCh = make(chan func(), n)
		}
	}
}

// NewRuntime creates a Runtime.
func NewRuntime(opts ...RuntimeOption) *Runtime {
	r := &Runtime{
		owner:      NewOwner(nil),
		dispatchCh: make(chan func(), 256),
		wake:       make(chan struct{}, 1),
		maxPasses:  DefaultMaxPasses,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Root is a mounted tree.
type Root struct {
	rt   *Runtime
	inst *instance
}

// Mount renders el and its descendants, runs their effects and flushes any
// re-renders they cause.
func (r *Runtime) Mount(el Element) *Root {
	root := &Root{rt: r}
	r.Act(func() {
		root.inst = newInstance(r, el, nil)
		r.render(root.inst)
	})
	return root
}

// Unmount disposes the tree: effect cleanups and owner cleanups run,
// children before parents.
func (root *Root) Unmount() {
	root.rt.Act(func() {
		root.inst.dispose()
	})
}

// Act runs fn and then flushes: pending effects run and dirty components
// re-render until the tree is stable.
func (r *Runtime) Act(fn func()) {
	r.cycle.Lock()
	defer r.cycle.Unlock()

	if fn != nil {
		fn()
	}
	r.flush()
}

// Flush re-renders dirty components and runs pending effects.
func (r *Runtime) Flush() {
	r.Act(nil)
}

// Dispatch queues fn to run on the loop started by Run. It is safe to call
// from any goroutine. When the queue is full fn is dropped.
func (r *Runtime) Dispatch(fn func()) {
	select {
	case r.dispatchCh <- fn:
	default:
		r.logger.Warn("dispatch queue full, discarding callback")
	}
}

// Run processes dispatched functions and re-renders components marked dirty
// from other goroutines until ctx is done.
func (r *Runtime) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case fn := <-r.dispatchCh:
			r.safeAct(fn)
		case <-r.wake:
			r.safeAct(nil)
		}
	}
}

func (r *Runtime) safeAct(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("dispatch panic",
				"panic", rec,
				"stack", string(debug.Stack()))
		}
	}()
	r.Act(fn)
}

func (r *Runtime) scheduleRender(c *instance) {
	r.dirtyMu.Lock()
	r.dirty = append(r.dirty, c)
	r.dirtyMu.Unlock()

	select {
	case r.wake <- struct{}{}:
	default:
	}
}

func (r *Runtime) takeDirty() []*instance {
	r.dirtyMu.Lock()
	defer r.dirtyMu.Unlock()
	dirty := r.dirty
	r.dirty = nil
	return dirty
}

func (r *Runtime) flush() {
	for pass := 0; ; pass++ {
		effects := r.effects
		r.effects = nil
		for _, e := range effects {
			e.run()
		}

		dirty := r.takeDirty()
		if len(dirty) == 0 && len(r.effects) == 0 {
			return
		}

		if pass >= r.maxPasses {
			r.metrics.RenderStorm()
			r.logger.Error("render storm: giving up",
				"passes", pass,
				"dirty", len(dirty))
			for _, c := range dirty {
				c.dirty.Store(false)
			}
			r.effects = nil
			return
		}

		// Parents first; a re-rendered parent re-renders its children.
		sort.SliceStable(dirty, func(i, j int) bool {
			return dirty[i].depth < dirty[j].depth
		})
		for _, c := range dirty {
			if c.disposed.Load() || !c.dirty.Load() {
				continue
			}
			r.render(c)
		}
	}
}

// render runs c's render function, reconciles its children and queues its
// effects after theirs.
func (r *Runtime) render(c *instance) {
	c.dirty.Store(false)
	c.clearSources()

	var children []Element
	WithOwner(c.owner, func() {
		c.owner.StartRender()
		WithListener(c, func() {
			children = c.el.comp.render(c.el.props)
		})
	})
	r.metrics.Render()

	r.reconcile(c, children)
	r.effects = append(r.effects, c.owner.takePendingEffects()...)
}

func (r *Runtime) reconcile(c *instance, elements []Element) {
	next := make([]*instance, 0, len(elements))
	for i, el := range elements {
		if i < len(c.children) && c.children[i].matches(el) {
			child := c.children[i]
			child.el = el
			r.render(child)
			next = append(next, child)
			continue
		}
		if i < len(c.children) {
			c.children[i].dispose()
		}
		child := newInstance(r, el, c)
		r.render(child)
		next = append(next, child)
	}
	for i := len(elements); i < len(c.children); i++ {
		c.children[i].dispose()
	}
	c.children = next
}
