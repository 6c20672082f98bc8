// Package native owns the transfer record and buffer memory handed
// across the process boundary by the platform copy primitive.
//
// Ownership boundary:
// - descriptor wire layout
// - off-heap buffer allocation and release
package native

import "unsafe"

// Descriptor is the copy primitive's transfer record. Its layout is a
// wire contract with the peer process: a native-word tag, a 32-bit
// byte count, and the buffer address, in that order, with the
// platform's natural field alignment. The tag is carried but unused.
type Descriptor struct {
	Tag     uintptr
	Size    uint32
	Address unsafe.Pointer
}
