package bthread

import "unsafe"

// Fcontext is the handle of a suspended execution context: the address of
// the machine-state block parked at the top of the context's stack. The
// block layout is architecture-specific and published in the per-arch
// context_*.go files, since debuggers and unwinders may need to read it.
// Zero means "no context".
//
// The block is mutated in place by every transfer: suspending a side rewrites
// its block, resuming a side consumes it. A context owns no memory of its
// own; it dies with the stack region it lives on.
type Fcontext uintptr

// MakeContext constructs a fresh execution context over the stack region
// whose highest address is sp. The first transfer into the returned context
// starts executing fn with the transfer value in the platform's first
// argument register.
//
// fn must never return: returning lands on a pre-installed finish sentinel
// that terminates the process with exit_group(0). Normal fiber termination
// is a transfer back to a scheduler-owned context, never a return.
//
// The floating point control state (where the architecture has one) is
// snapshotted into the block so the first switch in starts from a defined
// numeric environment. No memory beyond the caller-supplied region is
// touched. size records the region's usable length; the block itself always
// fits in contextBlockSize+contextHeadroom bytes below sp.
func MakeContext(sp unsafe.Pointer, size uintptr, fn uintptr) Fcontext

// JumpContext suspends the calling context into *from and resumes to,
// delivering vp to the resumed side: as JumpContext's own return value when
// the target was suspended inside JumpContext, or as the entry function's
// argument on a first resume.
//
// The switch saves the callee-saved register set the host ABI mandates on
// the caller's stack, records the resulting stack pointer in *from, adopts
// the stack pointer found in to, and restores symmetrically. It is the one
// suspension point of the runtime and is atomic as far as any observer is
// concerned: nothing the runtime controls can interrupt it mid-transfer.
//
// preserveFPU additionally saves and restores the floating point control
// state. The flag must be used symmetrically for a given pair of contexts:
// the side that skips the save leaves the slot uninitialized for a restore
// that must then also be skipped. Architectures whose ABI makes skipping
// unsafe save the state regardless and accept the flag as a no-op.
func JumpContext(from *Fcontext, to Fcontext, vp uintptr, preserveFPU bool) uintptr
