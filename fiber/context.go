package fiber

import "runtime"

// Context is the coroutine-side handle: the channel through which values
// move between yield points and resumptions, plus the flags the two sides
// communicate through. Exactly one side runs at a time.
type Context[R, S any] struct {
	recv R
	send S
	next chan struct{}
	stop bool
	done bool

	// A panic escaping the coroutine function parks here and is re-raised
	// on the resumer side by Next.
	panicked bool
	panicv   any
}

// Yield suspends the coroutine, delivering v to the resumer, and blocks
// until the next call to Next. It returns the value the resumer sent back.
func (c *Context[R, S]) Yield(v R) S {
	if c.stop {
		panic("cannot yield from a coroutine that has been stopped")
	}
	var zero S
	c.send = zero
	c.recv = v
	c.next <- struct{}{}
	<-c.next
	if c.stop {
		runtime.Goexit()
	}
	return c.send
}
