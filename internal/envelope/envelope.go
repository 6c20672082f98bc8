// Package envelope owns the serialization boundary of a single
// message transfer.
//
// Ownership boundary:
// - intermediate text encoding of channel/payload
// - byte framing of the text form
// - native buffer lifecycle for one encode or decode
package envelope

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/BurntSushi/toml"

	"github.com/copperline/datacopy/internal/message"
	"github.com/copperline/datacopy/internal/native"
)

var (
	ErrNilAddress     = errors.New("envelope: nil source address")
	ErrAlreadyEncoded = errors.New("envelope: encode on a non-fresh envelope")
)

// wireText is the intermediate text form. The field names are a wire
// contract with the peer; do not rename.
type wireText struct {
	Channel string `toml:"channel"`
	Payload string `toml:"payload"`
}

// buffer distinguishes who frees the native region on release. An
// envelope that decoded a foreign buffer holds a borrowed variant, so
// freeing someone else's memory is unrepresentable.
type buffer interface {
	release(d native.Descriptor)
}

type ownedBuffer struct{}

func (ownedBuffer) release(d native.Descriptor) {
	_ = native.Free(d.Address, int(d.Size))
}

type borrowedBuffer struct{}

func (borrowedBuffer) release(native.Descriptor) {}

// Envelope wraps one Message for one transfer. Each instance serves a
// single send or a single receive; it is not reused and performs no
// locking of its own.
type Envelope struct {
	msg  message.Message
	buf  buffer // nil until an encode or decode completes
	desc native.Descriptor
}

// NewOutbound prepares an envelope for sending. No native memory is
// touched until Encode.
func NewOutbound(channel, payload string) *Envelope {
	return &Envelope{msg: message.New(channel, payload)}
}

// Encode serializes the message into a freshly allocated native
// buffer and returns the descriptor for the copy primitive. The
// envelope owns that buffer until Release. Encode does not validate
// the message; an unaddressed message still encodes. Allocation
// failure propagates and leaves nothing allocated.
func (e *Envelope) Encode() (native.Descriptor, error) {
	if e.buf != nil {
		return native.Descriptor{}, ErrAlreadyEncoded
	}
	text, err := toml.Marshal(wireText{Channel: e.msg.Channel, Payload: e.msg.Payload})
	if err != nil {
		return native.Descriptor{}, fmt.Errorf("envelope: marshal text form: %w", err)
	}
	framed, err := encodeFrame(text)
	if err != nil {
		return native.Descriptor{}, err
	}
	p, err := native.Alloc(len(framed))
	if err != nil {
		return native.Descriptor{}, err
	}
	copy(native.Bytes(p, len(framed)), framed)
	e.buf = ownedBuffer{}
	e.desc = native.Descriptor{Size: uint32(len(framed)), Address: p}
	return e.desc, nil
}

// Decode reconstructs an envelope from the descriptor record at addr,
// as delivered by the copy primitive. The source bytes are copied out
// before returning; they are only guaranteed valid for the duration
// of this call. Corrupt or truncated bytes yield an envelope whose
// message reports IsValid false, never an error: receive-side input
// is not trusted. Only a nil addr is an error. The resulting envelope
// never owns the source buffer.
func Decode(addr unsafe.Pointer) (*Envelope, error) {
	if addr == nil {
		return nil, ErrNilAddress
	}
	d := *(*native.Descriptor)(addr)
	e := &Envelope{buf: borrowedBuffer{}, desc: d}
	if d.Address == nil || d.Size == 0 {
		return e, nil
	}
	raw := make([]byte, d.Size)
	copy(raw, native.Bytes(d.Address, int(d.Size)))
	text, err := decodeFrame(raw)
	if err != nil {
		return e, nil
	}
	var w wireText
	if err := toml.Unmarshal(text, &w); err != nil {
		return e, nil
	}
	e.msg = message.New(w.Channel, w.Payload)
	return e, nil
}

// Release frees the native buffer if this envelope allocated it and
// clears the stored descriptor. Safe to call any number of times;
// calls after the first are no-ops.
func (e *Envelope) Release() {
	if e.buf != nil && e.desc.Address != nil {
		e.buf.release(e.desc)
	}
	e.desc = native.Descriptor{}
}

// Descriptor returns the stored transfer record. Zero after Release
// or before Encode.
func (e *Envelope) Descriptor() native.Descriptor {
	return e.desc
}

func (e *Envelope) Channel() string { return e.msg.Channel }

func (e *Envelope) Payload() string { return e.msg.Payload }

func (e *Envelope) IsValid() bool { return e.msg.IsValid() }

func (e *Envelope) String() string { return e.msg.String() }
