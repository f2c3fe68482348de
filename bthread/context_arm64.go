package bthread

// Machine-state block layout on arm64 (AAPCS64). This is a public contract:
// anything that inspects a suspended fiber reads these offsets.
//
// An Fcontext points at offset 0. The block holds, from low to high:
//
//	0x00-0x3f  d8-d15
//	0x40-0x8f  x19-x28 (x28 is saved for layout compatibility but never
//	           restored: it is the goroutine register, and the goroutine
//	           driving a context may change between transfers)
//	0x90  x29 (frame pointer)
//	0x98  x30 (link register; fresh contexts park the finish sentinel here,
//	      so an entry function that returns lands on it)
//	0xa0  resume address
//	0xa8  padding (keeps the block a multiple of 16)
//
// d8-d15 are saved and restored unconditionally: compilers may keep integer
// values in fp registers across calls, so the preserveFPU flag cannot safely
// skip them and is accepted as a no-op on this architecture.
//
// The block sits contextHeadroom bytes below the 16-byte aligned stack top;
// the headroom absorbs the resumer's result-slot store on the first entry
// into a fresh context.
const (
	contextBlockSize = 0xb0
	contextHeadroom  = 0x40

	contextOffFPEnv    = 0x00
	contextOffResumePC = 0xa0
	contextOffFinishPC = 0x98
)

// arm64 fresh contexts carry no control-word snapshot (there is no separate
// fp control state to park; d8-d15 travel with every switch).
const contextHasFPEnvSnapshot = false
