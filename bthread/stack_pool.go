package bthread

import "fmt"

// ContextualStack couples a stack storage with the execution context built
// over it. It is what a scheduler passes around when suspending and resuming
// a fiber.
type ContextualStack struct {
	Context   Fcontext
	StackType StackType
	Storage   StackStorage
}

// GetStack materializes a stack of class t and constructs a context over it
// that resumes at entry. For the placeholder classes (main, pthread) no
// memory is allocated and no context is made: the fiber runs on the stack it
// was called on.
func GetStack(t StackType, entry uintptr) (*ContextualStack, error) {
	cs := &ContextualStack{StackType: t}
	switch t {
	case StackTypeMain, StackTypePthread:
		return cs, nil
	case StackTypeSmall, StackTypeNormal, StackTypeLarge:
	default:
		return nil, fmt.Errorf("bthread: unknown stack type %d", t)
	}
	if err := AllocateStackStorage(&cs.Storage, t.defaultStackSize(), guardPageSize); err != nil {
		return nil, err
	}
	cs.Context = MakeContext(cs.Storage.Bottom, uintptr(cs.Storage.StackSize), entry)
	return cs, nil
}

// ReturnStack releases cs immediately, bypassing any cache. Safe on the
// placeholder classes, which own no storage.
func ReturnStack(cs *ContextualStack) {
	if cs == nil {
		return
	}
	DeallocateStackStorage(&cs.Storage)
}

// StackPool is a worker-local cache of idle stacks, one bounded LIFO per
// size class. Reusing a parked stack skips the mapping and protection
// syscalls that dominate allocation cost.
//
// A pool belongs to exactly one worker and is not safe for concurrent use;
// handing stacks between workers must be serialized by the scheduler that
// owns them. The zero value is ready to use.
type StackPool struct {
	idle [numStackTypes][]*ContextualStack
}

// Get returns an idle stack of class t, or materializes a new one. A reused
// stack gets a fresh context constructed over it resuming at entry; the
// previous fiber's machine state block is dead the moment its stack is
// returned.
func (p *StackPool) Get(t StackType, entry uintptr) (*ContextualStack, error) {
	if int(t) < 0 || int(t) >= numStackTypes {
		return nil, fmt.Errorf("bthread: unknown stack type %d", t)
	}
	if n := len(p.idle[t]); n > 0 {
		cs := p.idle[t][n-1]
		p.idle[t][n-1] = nil
		p.idle[t] = p.idle[t][:n-1]
		cs.Context = MakeContext(cs.Storage.Bottom, uintptr(cs.Storage.StackSize), entry)
		return cs, nil
	}
	return GetStack(t, entry)
}

// Put parks cs for reuse, releasing it instead when the class cache is full,
// the class does not recycle, or the class tag is out of range. Evicted
// stacks go through the real deallocation path exactly once.
func (p *StackPool) Put(cs *ContextualStack) {
	if cs == nil || cs.Storage.Bottom == nil {
		return
	}
	if t := cs.StackType; int(t) >= 0 && int(t) < numStackTypes && len(p.idle[t]) < t.cacheCap() {
		p.idle[t] = append(p.idle[t], cs)
		return
	}
	ReturnStack(cs)
}

// Drain releases every idle stack. Called when a worker retires.
func (p *StackPool) Drain() {
	for t := range p.idle {
		for _, cs := range p.idle[t] {
			ReturnStack(cs)
		}
		p.idle[t] = nil
	}
}
