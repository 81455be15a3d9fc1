package reactive

// Context carries a value down the owner tree. Provide sets it for the
// current component and its descendants; Use reads the nearest one.
type Context[T any] struct {
	key          any
	defaultValue T
}

type contextKey[T any] struct {
	ctx *Context[T]
}

// CreateContext creates a context whose Use returns defaultValue when no
// ancestor provided a value.
func CreateContext[T any](defaultValue T) *Context[T] {
	ctx := &Context[T]{defaultValue: defaultValue}
	ctx.key = contextKey[T]{ctx: ctx}
	return ctx
}

// Provide makes value visible to the current component and its descendants.
// It must be called during render.
func (c *Context[T]) Provide(value T) {
	currentRenderOwner("Context.Provide").SetValue(c.key, value)
}

// Use returns the value provided by the nearest ancestor, or the default.
func (c *Context[T]) Use() T {
	owner := getCurrentOwner()
	if owner == nil {
		return c.defaultValue
	}
	if value, ok := owner.LookupValue(c.key); ok {
		if typed, ok := value.(T); ok {
			return typed
		}
	}
	return c.defaultValue
}

// Default returns the default value.
func (c *Context[T]) Default() T {
	return c.defaultValue
}
