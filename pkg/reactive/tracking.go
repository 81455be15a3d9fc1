package reactive

import (
	"runtime"
	"sync"
)

// trackingContext holds the reactive state of one goroutine.
type trackingContext struct {
	// currentOwner owns hooks called during render.
	currentOwner *Owner

	// currentListener is subscribed by signal reads. nil means untracked.
	currentListener Listener
}

var trackingContexts sync.Map

// getGoroutineID parses the goroutine ID from the stack header
// "goroutine <id> [...]".
func getGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)

	var id uint64
	for i := 10; i < n; i++ {
		if buf[i] == ' ' {
			break
		}
		id = id*10 + uint64(buf[i]-'0')
	}
	return id
}

// lookupTrackingContext returns the goroutine's context without creating one.
func lookupTrackingContext() *trackingContext {
	if ctx, ok := trackingContexts.Load(getGoroutineID()); ok {
		return ctx.(*trackingContext)
	}
	return nil
}

// updateTrackingContext applies fn to the goroutine's context, creating it
// if needed, and drops the entry once both fields are back to nil.
func updateTrackingContext(fn func(ctx *trackingContext)) {
	gid := getGoroutineID()

	var ctx *trackingContext
	if v, ok := trackingContexts.Load(gid); ok {
		ctx = v.(*trackingContext)
	} else {
		ctx = &trackingContext{}
	}
	fn(ctx)

	if ctx.currentOwner == nil && ctx.currentListener == nil {
		trackingContexts.Delete(gid)
		return
	}
	trackingContexts.Store(gid, ctx)
}

func getCurrentListener() Listener {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentListener
	}
	return nil
}

func setCurrentListener(l Listener) Listener {
	var old Listener
	updateTrackingContext(func(ctx *trackingContext) {
		old = ctx.currentListener
		ctx.currentListener = l
	})
	return old
}

func getCurrentOwner() *Owner {
	if ctx := lookupTrackingContext(); ctx != nil {
		return ctx.currentOwner
	}
	return nil
}

func setCurrentOwner(o *Owner) *Owner {
	var old *Owner
	updateTrackingContext(func(ctx *trackingContext) {
		old = ctx.currentOwner
		ctx.currentOwner = o
	})
	return old
}

// WithOwner runs fn with owner as the current owner.
func WithOwner(owner *Owner, fn func()) {
	old := setCurrentOwner(owner)
	defer setCurrentOwner(old)
	fn()
}

// WithListener runs fn with l subscribed to every signal it reads.
func WithListener(l Listener, fn func()) {
	old := setCurrentListener(l)
	defer setCurrentListener(old)
	fn()
}

// Untracked runs fn without subscribing anything to the signals it reads.
func Untracked(fn func()) {
	old := setCurrentListener(nil)
	defer setCurrentListener(old)
	fn()
}
