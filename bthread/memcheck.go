package bthread

import "unsafe"

// MemoryChecker lets an external memory checking tool (the moral equivalent
// of valgrind's stack registration API) learn about every fiber stack as it
// comes and goes. Implementations must be safe for concurrent use.
type MemoryChecker interface {
	// RegisterStack reports the usable range [bottom-size, bottom) of a new
	// stack and returns a nonzero handle for it.
	RegisterStack(bottom unsafe.Pointer, size int) int

	// DeregisterStack retires a handle previously returned by RegisterStack.
	DeregisterStack(id int)
}

// Set once at process start, before any stacks are allocated.
var memoryChecker MemoryChecker

// SetMemoryChecker installs the process-wide checker hook. Passing nil (the
// default) turns stack registration into a no-op.
func SetMemoryChecker(c MemoryChecker) { memoryChecker = c }

func registerStack(s *StackStorage) int {
	if memoryChecker == nil {
		return 0
	}
	return memoryChecker.RegisterStack(s.Bottom, s.StackSize)
}

func deregisterStack(id int) {
	if memoryChecker != nil {
		memoryChecker.DeregisterStack(id)
	}
}
