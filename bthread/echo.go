package bthread

// echoState is the shared frame of a context round-trip: the two handles
// rewritten by each transfer, and the value the entry side reads.
//
// Entry functions handed to MakeContext must not be ordinary Go functions.
// The goroutine's recorded stack bounds still describe its own stack while a
// transferred-to context runs, so anything the runtime does with a stack
// (prologue growth checks, scanning, shrinking) is undefined on the bthread
// region; only code that never calls into Go and never allocates may run
// there. echoEntry is the canonical such function and what the round-trip
// tests drive.
type echoState struct {
	caller Fcontext
	callee Fcontext
	val    uintptr
}

// echoEntry doubles echoState.val and transfers back to the caller context,
// forever. The state pointer arrives through the jump contract on the first
// transfer and is carried in a callee-saved register after that. Defined in
// echo_*.s; never called from Go.
func echoEntry()

// echoEntryPC returns the code address of echoEntry, the fn argument for
// MakeContext. Defined in echo_*.s.
func echoEntryPC() uintptr
