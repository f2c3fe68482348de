package bthread

import "errors"

// Allocation failures are classified so that a scheduler can pick a fallback
// (a smaller size class, or guard-free mode). None of them are retried here.
var (
	// ErrOutOfMemory reports that a plain heap allocation could not be
	// satisfied. With the Go runtime an exhausted heap usually aborts the
	// process before this can be observed; the sentinel exists so that the
	// guard-free path has the same error surface as the mapped path.
	ErrOutOfMemory = errors.New("bthread: out of memory")

	// ErrMappingFailed reports that the anonymous memory mapping for a
	// guarded stack failed, commonly because of vm.max_map_count.
	ErrMappingFailed = errors.New("bthread: stack mapping failed")

	// ErrProtectionFailed reports that the guard region could not be made
	// inaccessible, either because mprotect failed or because base
	// realignment left less than a full guard page of protected space.
	ErrProtectionFailed = errors.New("bthread: guard protection failed")
)
