package bthread

import (
	"runtime"
	"testing"
	"unsafe"
)

// The block layout is a published contract pinned down by the layout tests;
// transfer behavior is exercised against echoEntry, the assembly entry
// function that stays out of the runtime's sight (see echo.go).

func TestMakeContextLayout(t *testing.T) {
	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), 0); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer DeallocateStackStorage(&s)

	entry := uintptr(0xfeedface0)
	ctx := MakeContext(s.Bottom, uintptr(s.StackSize), entry)

	base := uintptr(ctx)
	top := uintptr(s.Bottom) &^ 15
	lo := uintptr(s.Bottom) - uintptr(s.StackSize)

	if want := top - contextHeadroom - contextBlockSize; base != want {
		t.Errorf("block address: want=%#x got=%#x", want, base)
	}
	if base < lo || base+contextBlockSize > uintptr(s.Bottom) {
		t.Errorf("block [%#x,%#x) outside stack [%#x,%#x)",
			base, base+contextBlockSize, lo, uintptr(s.Bottom))
	}

	resume := *(*uintptr)(unsafe.Pointer(base + contextOffResumePC))
	if resume != entry {
		t.Errorf("resume address: want=%#x got=%#x", entry, resume)
	}
	finish := *(*uintptr)(unsafe.Pointer(base + contextOffFinishPC))
	if finish == 0 {
		t.Error("finish sentinel not installed")
	}
	if finish == entry {
		t.Error("finish sentinel aliases the entry function")
	}
}

func TestMakeContextFPEnvSnapshot(t *testing.T) {
	if !contextHasFPEnvSnapshot {
		t.Skip("architecture parks no fp control snapshot in the block")
	}

	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), 0); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer DeallocateStackStorage(&s)

	ctx := MakeContext(s.Bottom, uintptr(s.StackSize), uintptr(0x1000))

	// MXCSR after reset is 0x1f80; whatever the current environment is, a
	// snapshot is never all zero bits.
	mxcsr := *(*uint32)(unsafe.Pointer(uintptr(ctx) + contextOffFPEnv))
	if mxcsr == 0 {
		t.Error("fp control snapshot missing: MXCSR word is zero")
	}
}

func TestJumpContextRoundTrip(t *testing.T) {
	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), pageSize()); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer DeallocateStackStorage(&s)

	st := &echoState{}
	st.callee = MakeContext(s.Bottom, uintptr(s.StackSize), echoEntryPC())

	for i := uintptr(1); i <= 1000; i++ {
		st.val = i
		got := JumpContext(&st.caller, st.callee, uintptr(unsafe.Pointer(st)), false)
		if got != 2*i {
			t.Fatalf("transfer %d: want=%d got=%d", i, 2*i, got)
		}
	}
}

func TestJumpContextAcrossCollections(t *testing.T) {
	// The suspended context and its stack are invisible to the collector;
	// forcing collections between transfers must not disturb the register
	// state parked in the block.
	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), pageSize()); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer DeallocateStackStorage(&s)

	st := &echoState{}
	st.callee = MakeContext(s.Bottom, uintptr(s.StackSize), echoEntryPC())

	for i := uintptr(1); i <= 8; i++ {
		st.val = i
		got := JumpContext(&st.caller, st.callee, uintptr(unsafe.Pointer(st)), false)
		if got != 2*i {
			t.Fatalf("transfer %d: want=%d got=%d", i, 2*i, got)
		}
		runtime.GC()
	}
}

func TestJumpContextReusedStack(t *testing.T) {
	// The pool recycle path builds a fresh context over a previously used
	// region; each incarnation starts from a clean first transfer.
	var p StackPool
	defer p.Drain()

	for round := 0; round < 3; round++ {
		cs, err := p.Get(StackTypeSmall, echoEntryPC())
		if err != nil {
			t.Fatalf("get %d: %v", round, err)
		}
		st := &echoState{callee: cs.Context}
		st.val = uintptr(round + 5)
		got := JumpContext(&st.caller, st.callee, uintptr(unsafe.Pointer(st)), false)
		if want := 2 * uintptr(round+5); got != want {
			t.Fatalf("round %d: want=%d got=%d", round, want, got)
		}
		p.Put(cs)
	}
}

func BenchmarkJumpContextRoundTrip(b *testing.B) {
	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), pageSize()); err != nil {
		b.Fatal(err)
	}
	defer DeallocateStackStorage(&s)

	st := &echoState{val: 1}
	st.callee = MakeContext(s.Bottom, uintptr(s.StackSize), echoEntryPC())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		JumpContext(&st.caller, st.callee, uintptr(unsafe.Pointer(st)), false)
	}
}

func TestMakeContextIsRepeatable(t *testing.T) {
	// Reusing a region (the pool's recycle path) rebuilds the block from
	// scratch; two constructions over the same region must agree.
	var s StackStorage
	if err := AllocateStackStorage(&s, 16*pageSize(), 0); err != nil {
		t.Fatalf("allocate: %v", err)
	}
	defer DeallocateStackStorage(&s)

	first := MakeContext(s.Bottom, uintptr(s.StackSize), uintptr(0x1000))
	second := MakeContext(s.Bottom, uintptr(s.StackSize), uintptr(0x2000))

	if first != second {
		t.Errorf("block address changed across constructions: %#x != %#x", first, second)
	}
	resume := *(*uintptr)(unsafe.Pointer(uintptr(second) + contextOffResumePC))
	if resume != 0x2000 {
		t.Errorf("resume address: want=0x2000 got=%#x", resume)
	}
}
