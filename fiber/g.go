package fiber

// This file contains the parts of the Go runtime source needed to identify
// the current goroutine: the head of the runtime.g struct, used as a stable
// per-goroutine key for the local storage in gls.go.
//
// See: https://github.com/golang/go/blob/master/src/runtime/runtime2.go

type stack struct {
	lo, hi uintptr
}

type g struct {
	stack       stack
	stackguard0 uintptr
	stackguard1 uintptr
}

// getg returns the current goroutine, like the compiler intrinsic
// runtime.getg. Defined in getg_*.s.
func getg() *g
