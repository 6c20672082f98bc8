//go:build unix

package native

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

var ErrAllocationFailed = errors.New("native: buffer allocation failed")

// Alloc reserves n bytes of native memory outside the Go heap. The
// region stays valid at a fixed address until Free; the garbage
// collector never moves or reclaims it.
func Alloc(n int) (unsafe.Pointer, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: invalid size %d", ErrAllocationFailed, n)
	}
	b, err := unix.Mmap(-1, 0, n, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAllocationFailed, err)
	}
	return unsafe.Pointer(&b[0]), nil
}

// Free releases a region obtained from Alloc. A nil pointer is a no-op.
func Free(p unsafe.Pointer, n int) error {
	if p == nil || n <= 0 {
		return nil
	}
	return unix.Munmap(unsafe.Slice((*byte)(p), n))
}

// Bytes views n bytes of native memory at p. The view aliases the
// region; callers copy out before the region is freed or invalidated.
func Bytes(p unsafe.Pointer, n int) []byte {
	if p == nil || n <= 0 {
		return nil
	}
	return unsafe.Slice((*byte)(p), n)
}
