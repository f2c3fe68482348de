// Package bthread provides the two primitives a fiber runtime is built on:
// a stack storage manager that materializes (and recycles) the memory region
// a fiber's call stack lives in, and an fcontext-style context switch that
// creates an execution context over such a region and transfers control
// between two contexts.
//
// The package implements mechanism, not policy. Scheduling, run queues and
// synchronization belong to the caller; every storage and context is owned
// by exactly one worker at a time and the package does no internal locking.
package bthread

import (
	"expvar"
	"fmt"
	"sync/atomic"
	"unsafe"
)

// StackStorage describes one allocated stack region. Stacks grow downward:
// Bottom is the address one past the highest usable byte, and doubles as the
// anchor for recovering the original allocation base on release.
//
// StackSize+GuardSize equals the total span acquired from the system. A
// storage must not be reused after DeallocateStackStorage without going
// through AllocateStackStorage again.
type StackStorage struct {
	Bottom    unsafe.Pointer
	StackSize int
	GuardSize int

	// MonitorID is the handle returned by the active MemoryChecker for the
	// usable range, zero when no checker is installed.
	MonitorID int

	// Retains the allocation on the guard-free path; dropping the reference
	// is the "free".
	heap []byte
}

var (
	stackCount        atomic.Int64
	misalignedMapFreq atomic.Int64
)

func init() {
	expvar.Publish("bthread_stack_count", expvar.Func(func() any {
		return stackCount.Load()
	}))
	expvar.Publish("bthread_misaligned_map_count", expvar.Func(func() any {
		return misalignedMapFreq.Load()
	}))
}

// StackCount returns the number of live stack storages in the process. The
// counter is advisory: it is sampled by metrics exporters and never consulted
// for control decisions.
func StackCount() int64 { return stackCount.Load() }

// MisalignedMapCount returns how many mappings came back from the OS below
// page alignment. A nonzero value means the host's mapping granularity is
// coarser than expected; the allocations themselves still succeeded.
func MisalignedMapCount() int64 { return misalignedMapFreq.Load() }

// AllocateStackStorage acquires a stack region of at least stackSizeIn usable
// bytes and fills in s. The usable size is rounded up to the page size with a
// floor of two pages.
//
// With guardSizeIn <= 0 the region is plain heap memory and no mapping or
// protection syscall is issued. Otherwise the guard size is rounded up to the
// page size with a floor of one page, the whole span is mapped anonymously,
// and the low guard region is made inaccessible so that overflowing the stack
// faults at the first bad write instead of corrupting a neighbor.
//
// On failure s is left unchanged, the live-stack counter is not touched, and
// the error matches one of ErrOutOfMemory, ErrMappingFailed or
// ErrProtectionFailed under errors.Is.
func AllocateStackStorage(s *StackStorage, stackSizeIn, guardSizeIn int) error {
	pagesize := pageSize()
	pagesizeM1 := pagesize - 1
	minStackSize := pagesize * 2
	minGuardSize := pagesize

	stacksize := (max(stackSizeIn, minStackSize) + pagesizeM1) &^ pagesizeM1

	if guardSizeIn <= 0 {
		// Degraded mode: no mapping or protection syscalls. A detected
		// overflow is an accepted risk here. The Go allocator aborts the
		// process instead of failing, so unlike the mapped path this one
		// cannot report ErrOutOfMemory in practice.
		mem := make([]byte, stacksize)
		stackCount.Add(1)
		s.Bottom = unsafe.Add(unsafe.Pointer(unsafe.SliceData(mem)), stacksize)
		s.StackSize = stacksize
		s.GuardSize = 0
		s.heap = mem
		s.MonitorID = registerStack(s)
		return nil
	}

	guardsize := (max(guardSizeIn, minGuardSize) + pagesizeM1) &^ pagesizeM1
	memsize := stacksize + guardsize

	mem, err := mapStack(memsize)
	if err != nil {
		// May fail due to vm.max_map_count (65536 by default).
		return fmt.Errorf("bthread: mmap size=%d stack_count=%d: %w (%v)",
			memsize, stackCount.Load(), ErrMappingFailed, err)
	}

	base := uintptr(unsafe.Pointer(unsafe.SliceData(mem)))
	aligned := (base + uintptr(pagesizeM1)) &^ uintptr(pagesizeM1)
	offset := int(aligned - base)
	if offset != 0 {
		misalignedMapFreq.Add(1)
	}
	// The guard shrinks by the realignment offset. A guard below the one
	// page minimum is worse than none: it would report success while leaving
	// part of the overflow range writable.
	if guardsize-offset < minGuardSize {
		unmapStack(mem)
		return fmt.Errorf("bthread: realigned base %#x leaves %d guard bytes, need %d: %w",
			aligned, guardsize-offset, minGuardSize, ErrProtectionFailed)
	}
	if err := protectNone(mem[offset:guardsize]); err != nil {
		unmapStack(mem)
		return fmt.Errorf("bthread: mprotect addr=%#x len=%d: %w (%v)",
			aligned, guardsize-offset, ErrProtectionFailed, err)
	}

	stackCount.Add(1)
	s.Bottom = unsafe.Add(unsafe.Pointer(unsafe.SliceData(mem)), memsize)
	s.StackSize = stacksize
	s.GuardSize = guardsize
	s.heap = nil
	s.MonitorID = registerStack(s)
	return nil
}

// DeallocateStackStorage releases the region behind s using the mechanism it
// was acquired with. It never fails from the caller's point of view; an OS
// level failure to unmap is not actionable and is swallowed.
//
// A degenerate storage whose Bottom cannot contain the claimed span is left
// alone rather than turned into undefined pointer arithmetic.
func DeallocateStackStorage(s *StackStorage) {
	if s.MonitorID != 0 {
		deregisterStack(s.MonitorID)
		s.MonitorID = 0
	}
	memsize := s.StackSize + s.GuardSize
	if uintptr(s.Bottom) <= uintptr(memsize) {
		return
	}
	stackCount.Add(-1)
	if s.GuardSize <= 0 {
		s.heap = nil
	} else {
		base := unsafe.Add(s.Bottom, -memsize)
		unmapStack(unsafe.Slice((*byte)(base), memsize))
	}
	s.Bottom = nil
}
