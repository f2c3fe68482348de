package bthread

import "flag"

// StackType names a stack size class. Classes are flat tags, not a
// hierarchy: each carries its own default size and per-worker cache capacity.
type StackType int8

const (
	// StackTypeMain is the zero-size placeholder for a caller-owned stack
	// (the OS thread's own stack). Nothing is allocated for it.
	StackTypeMain StackType = iota
	// StackTypePthread also runs on the hosting thread's stack and
	// allocates nothing; it exists so schedulers can tag fibers that must
	// not be migrated off their thread stack.
	StackTypePthread
	StackTypeSmall
	StackTypeNormal
	StackTypeLarge

	numStackTypes = 5
)

func (t StackType) String() string {
	switch t {
	case StackTypeMain:
		return "main"
	case StackTypePthread:
		return "pthread"
	case StackTypeSmall:
		return "small"
	case StackTypeNormal:
		return "normal"
	case StackTypeLarge:
		return "large"
	}
	return "unknown"
}

// Size class configuration. Mutable at process start (directly or through
// RegisterFlags), effectively read-once afterwards.
var (
	stackSizeSmall  = 32768
	stackSizeNormal = 1048576
	stackSizeLarge  = 8388608

	// guardPageSize <= 0 disables guard pages process-wide and allocates
	// stacks from the heap (not recommended).
	guardPageSize = 4096

	tcStackSmall  = 32
	tcStackNormal = 8
)

// RegisterFlags binds the size class configuration to fs. The core consumes
// this configuration but does not own flag parsing; a host binary calls this
// before flag.Parse if it wants the knobs exposed.
func RegisterFlags(fs *flag.FlagSet) {
	fs.IntVar(&stackSizeSmall, "stack_size_small", stackSizeSmall, "size of small stacks")
	fs.IntVar(&stackSizeNormal, "stack_size_normal", stackSizeNormal, "size of normal stacks")
	fs.IntVar(&stackSizeLarge, "stack_size_large", stackSizeLarge, "size of large stacks")
	fs.IntVar(&guardPageSize, "guard_page_size", guardPageSize,
		"size of guard page, allocate stacks by heap if it's 0(not recommended)")
	fs.IntVar(&tcStackSmall, "tc_stack_small", tcStackSmall, "maximum small stacks cached by each worker")
	fs.IntVar(&tcStackNormal, "tc_stack_normal", tcStackNormal, "maximum normal stacks cached by each worker")
}

func (t StackType) defaultStackSize() int {
	switch t {
	case StackTypeSmall:
		return stackSizeSmall
	case StackTypeNormal:
		return stackSizeNormal
	case StackTypeLarge:
		return stackSizeLarge
	}
	return 0
}

// cacheCap is the maximum number of idle stacks of this class one worker may
// retain. Zero disables recycling for the class.
func (t StackType) cacheCap() int {
	switch t {
	case StackTypeSmall:
		return tcStackSmall
	case StackTypeNormal:
		return tcStackNormal
	}
	return 0
}
