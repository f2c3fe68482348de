package bthread

// Machine-state block layout on amd64 (System V AMD64 ABI). This is a public
// contract: anything that inspects a suspended fiber (debuggers, unwinders,
// signal handlers) reads these offsets.
//
// An Fcontext points at offset 0. The block holds, from low to high:
//
//	0x00  MXCSR (32-bit SSE control/status)
//	0x04  x87 FPU control word
//	0x08  R12
//	0x10  R13
//	0x18  R14
//	0x20  R15
//	0x28  RBX
//	0x30  RBP
//	0x38  resume address (entry function, or the return point of the
//	      JumpContext call that suspended this context)
//	0x40  finish sentinel address (fresh contexts only; consumed as the
//	      entry function's return address)
//
// The saved stack pointer itself is the Fcontext value. R14 is saved for ABI
// completeness but the resumed side rederives the goroutine pointer from
// thread-local storage, since the goroutine driving a context may change
// between transfers.
//
// The block sits contextHeadroom bytes below the 16-byte aligned stack top;
// the headroom absorbs the resumer's result-slot store on the first entry
// into a fresh context.
const (
	contextBlockSize = 0x48
	contextHeadroom  = 0x40

	contextOffFPEnv    = 0x00
	contextOffResumePC = 0x38
	contextOffFinishPC = 0x40
)

// Fresh contexts snapshot the FPU environment, so the MXCSR word in a block
// built by MakeContext is never zero (the hardware default is 0x1f80).
const contextHasFPEnvSnapshot = true
