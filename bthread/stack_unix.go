//go:build unix

package bthread

import (
	"sync"

	"golang.org/x/sys/unix"
)

// Read once at first use, constant afterwards.
var pageSize = sync.OnceValue(unix.Getpagesize)

func mapStack(size int) ([]byte, error) {
	return unix.Mmap(-1, 0, size,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
}

func unmapStack(mem []byte) {
	_ = unix.Munmap(mem)
}

func protectNone(mem []byte) error {
	return unix.Mprotect(mem, unix.PROT_NONE)
}
