package reactive

import (
	"sync"
	"sync/atomic"
)

// Props are the inputs of a component.
type Props map[string]any

// Component is a named render function. Render returns the child elements
// to mount under the component, or nil for a leaf.
type Component struct {
	name   string
	render func(Props) []Element
}

// Func creates a component.
func Func(name string, render func(Props) []Element) *Component {
	return &Component{name: name, render: render}
}

// Name returns the component name.
func (c *Component) Name() string {
	return c.name
}

// Element is a component with its props, as returned from a render.
type Element struct {
	comp  *Component
	props Props
	key   string
}

// El creates an element.
func El(c *Component, props Props) Element {
	return Element{comp: c, props: props}
}

// WithKey sets the reconciliation key. Children are matched by position,
// component and key; a mismatch remounts the child.
func (e Element) WithKey(key string) Element {
	e.key = key
	return e
}

// instance is a mounted element.
type instance struct {
	rt     *Runtime
	el     Element
	owner  *Owner
	parent *instance
	depth  int

	children []*instance

	dirty    atomic.Bool
	disposed atomic.Bool

	sources   []*signalBase
	sourcesMu sync.Mutex
}

var _ Listener = (*instance)(nil)

func newInstance(rt *Runtime, el Element, parent *instance) *instance {
	parentOwner := rt.owner
	depth := 0
	if parent != nil {
		parentOwner = parent.owner
		depth = parent.depth + 1
	}
	return &instance{
		rt:     rt,
		el:     el,
		owner:  NewOwner(parentOwner),
		parent: parent,
		depth:  depth,
	}
}

// MarkDirty implements Listener.
func (c *instance) MarkDirty() {
	if c.disposed.Load() {
		return
	}
	if c.dirty.CompareAndSwap(false, true) {
		c.rt.scheduleRender(c)
	}
}

// ID implements Listener.
func (c *instance) ID() uint64 {
	return c.owner.ID()
}

func (c *instance) addSource(source *signalBase) {
	c.sourcesMu.Lock()
	defer c.sourcesMu.Unlock()
	for _, s := range c.sources {
		if s == source {
			return
		}
	}
	c.sources = append(c.sources, source)
}

func (c *instance) clearSources() {
	c.sourcesMu.Lock()
	sources := c.sources
	c.sources = nil
	c.sourcesMu.Unlock()

	for _, s := range sources {
		s.unsubscribe(c)
	}
}

// matches reports whether el can be rendered into c without remounting.
func (c *instance) matches(el Element) bool {
	return c.el.comp == el.comp && c.el.key == el.key
}

func (c *instance) dispose() {
	if c.disposed.Swap(true) {
		return
	}
	for i := len(c.children) - 1; i >= 0; i-- {
		c.children[i].dispose()
	}
	c.children = nil
	c.clearSources()
	c.owner.Dispose()
}
