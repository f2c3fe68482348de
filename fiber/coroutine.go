// Package fiber provides coroutines: functions whose execution is suspended
// at yield points and resumed by their caller, one side running at a time.
//
// Each coroutine runs on its own goroutine, with control handed back and
// forth over an unbuffered channel. Coroutine bodies are ordinary Go code,
// and ordinary Go code must stay on a stack the runtime owns: the collector
// scans, grows and moves goroutine stacks at will, which rules out hosting
// bodies on caller-provided stack storage. The raw stack and context-switch
// primitives live in the bthread package, for entry functions that stay
// outside the runtime's sight.
package fiber

// Coroutine instances expose APIs allowing the program to drive the
// execution of coroutines.
//
// The type parameter R represents the type of values that the program can
// receive from the coroutine (what it yields), and the type parameter S is
// what the program can send back to a coroutine yield point.
type Coroutine[R, S any] struct{ ctx *Context[R, S] }

// Recv returns the last value that the coroutine has yielded. The method must
// be called only after a call to Next has returned true, or the return value
// is undefined. Calling the method multiple times after a call to Next
// returns the same value each time.
func (c Coroutine[R, S]) Recv() R { return c.ctx.recv }

// Send sets the value that will be seen by the coroutine after it resumes
// from a yield point. Calling the method multiple times before a call to Next
// does not result in sending multiple values, only the last value sent will
// be seen by the coroutine.
func (c Coroutine[R, S]) Send(v S) { c.ctx.send = v }

// Stop interrupts the coroutine. On the next call to Next, the coroutine
// will not return from its yield point; instead, it unwinds its call stack,
// calling each defer statement in the inverse order that they were declared.
//
// Stop is idempotent, calling it multiple times or after completion of the
// coroutine has no effect.
//
// This method is just an interrupt mechanism, the program does not have to
// call it to release the coroutine resources after completion.
func (c Coroutine[R, S]) Stop() { c.ctx.stop = true }

// Done returns true if the coroutine completed, either because it was
// stopped or because its function returned.
func (c Coroutine[R, S]) Done() bool { return c.ctx.done }

// Next executes the coroutine until its next yield point, or until
// completion. The method returns true if the coroutine entered a yield
// point, after which the program should call Recv to obtain the value that
// the coroutine yielded, and Send to set the value that will be returned
// from the yield point.
//
// A panic that escapes the coroutine's function is re-raised on the caller's
// stack instead of crashing the process from an unjoined goroutine.
func (c Coroutine[R, S]) Next() bool {
	if c.ctx.done {
		return false
	}
	c.ctx.next <- struct{}{}
	_, ok := <-c.ctx.next
	if c.ctx.panicked {
		c.ctx.panicked = false
		v := c.ctx.panicv
		c.ctx.panicv = nil
		panic(v)
	}
	return ok
}

// New creates a new coroutine which executes f as entry point. The coroutine
// does not run until the first call to Next.
func New[R, S any](f func()) Coroutine[R, S] {
	c := &Context[R, S]{
		next: make(chan struct{}),
	}

	go func() {
		g := getg()
		storeContext(g, c)

		defer func() {
			c.done = true
			close(c.next)
			clearContext(g)
		}()

		<-c.next

		if !c.stop {
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.panicked = true
						c.panicv = r
					}
				}()
				f()
			}()
		}
	}()

	return Coroutine[R, S]{ctx: c}
}

// Run executes a coroutine to completion, calling f for each value that the
// coroutine yields, and sending back each value that f returns.
func Run[R, S any](c Coroutine[R, S], f func(R) S) {
	// The coroutine is run to completion, but f might panic in which case we
	// don't want to leave it in an uncompleted state and interrupt it instead.
	defer func() {
		if !c.Done() {
			c.Stop()
			c.Next()
		}
	}()

	for c.Next() {
		r := c.Recv()
		s := f(r)
		c.Send(s)
	}
}

// Yield sends v to the resumer and pauses the execution of the coroutine
// until the Next method is called on the associated coroutine handle.
//
// The function panics when called on a stack where no active coroutine
// exists, or if the type parameters do not match those of the coroutine.
func Yield[R, S any](v R) S {
	return LoadContext[R, S]().Yield(v)
}

// LoadContext returns the context for the current coroutine.
//
// The function panics when called on a stack where no active coroutine
// exists, or if the type parameters do not match those of the coroutine.
func LoadContext[R, S any]() *Context[R, S] {
	switch c := loadContext(getg()).(type) {
	case *Context[R, S]:
		return c
	case nil:
		panic("fiber.Yield: not called from a coroutine stack")
	default:
		panic("fiber.Yield: coroutine type mismatch")
	}
}
