package envelope

import (
	"errors"
	"testing"
	"unsafe"

	"github.com/copperline/datacopy/internal/native"
)

func TestRoundTrip(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()

	if desc.Size == 0 {
		t.Fatalf("expected non-zero descriptor size")
	}
	if desc.Address == nil {
		t.Fatalf("expected non-nil descriptor address")
	}
	if desc.Tag != 0 {
		t.Fatalf("expected zero tag, got %d", desc.Tag)
	}

	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer in.Release()

	if !in.IsValid() {
		t.Fatalf("expected valid decoded message")
	}
	if in.Channel() != "Chat" || in.Payload() != "Hello" {
		t.Fatalf("round-trip mismatch: %q / %q", in.Channel(), in.Payload())
	}
	if in.String() != "Chat: Hello" {
		t.Fatalf("unexpected string form: %q", in.String())
	}
}

func TestRoundTripEmptyPayload(t *testing.T) {
	out := NewOutbound("Chat", "")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()

	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer in.Release()

	if !in.IsValid() {
		t.Fatalf("expected valid decoded message")
	}
	if in.Payload() != "" {
		t.Fatalf("expected empty payload, got %q", in.Payload())
	}
}

func TestUnaddressedMessageStillEncodes(t *testing.T) {
	out := NewOutbound("", "Hello")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode must not validate: %v", err)
	}
	defer out.Release()

	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	defer in.Release()

	if in.IsValid() {
		t.Fatalf("expected invalid message for empty channel")
	}
	if in.Payload() != "Hello" {
		t.Fatalf("payload not preserved: %q", in.Payload())
	}
}

func TestDecodeNilAddress(t *testing.T) {
	if _, err := Decode(nil); !errors.Is(err, ErrNilAddress) {
		t.Fatalf("expected ErrNilAddress, got %v", err)
	}
}

func TestDecodeTruncatedBuffer(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()

	short := desc
	short.Size = 4

	in, err := Decode(unsafe.Pointer(&short))
	if err != nil {
		t.Fatalf("truncated input must not error: %v", err)
	}
	defer in.Release()
	if in.IsValid() {
		t.Fatalf("expected invalid message from truncated buffer")
	}
}

func TestDecodeCorruptMagic(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()

	native.Bytes(desc.Address, int(desc.Size))[0] ^= 0xFF

	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("corrupt input must not error: %v", err)
	}
	defer in.Release()
	if in.IsValid() {
		t.Fatalf("expected invalid message from corrupt magic")
	}
}

func TestDecodeMalformedTextForm(t *testing.T) {
	framed, err := encodeFrame([]byte("channel = ["))
	if err != nil {
		t.Fatalf("frame: %v", err)
	}
	p, err := native.Alloc(len(framed))
	if err != nil {
		t.Fatalf("alloc: %v", err)
	}
	defer native.Free(p, len(framed))
	copy(native.Bytes(p, len(framed)), framed)

	desc := native.Descriptor{Size: uint32(len(framed)), Address: p}
	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("malformed text must not error: %v", err)
	}
	defer in.Release()
	if in.IsValid() {
		t.Fatalf("expected invalid message from malformed text form")
	}
}

func TestDecodeEmptyDescriptor(t *testing.T) {
	desc := native.Descriptor{}
	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("empty descriptor must not error: %v", err)
	}
	defer in.Release()
	if in.IsValid() {
		t.Fatalf("expected invalid message from empty descriptor")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	if _, err := out.Encode(); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out.Release()
	if d := out.Descriptor(); d.Address != nil || d.Size != 0 || d.Tag != 0 {
		t.Fatalf("descriptor not cleared after release: %+v", d)
	}
	out.Release()
	out.Release()
}

func TestDecodedEnvelopeDoesNotFreeSource(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	desc, err := out.Encode()
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()

	in, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	in.Release()
	in.Release()

	// The source buffer belongs to the sender; it must survive the
	// receiver's release and still decode.
	again, err := Decode(unsafe.Pointer(&desc))
	if err != nil {
		t.Fatalf("re-decode: %v", err)
	}
	defer again.Release()
	if !again.IsValid() || again.Payload() != "Hello" {
		t.Fatalf("source buffer damaged by borrowed release")
	}
}

func TestEncodeTwiceRejected(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	if _, err := out.Encode(); err != nil {
		t.Fatalf("encode: %v", err)
	}
	defer out.Release()
	if _, err := out.Encode(); !errors.Is(err, ErrAlreadyEncoded) {
		t.Fatalf("expected ErrAlreadyEncoded, got %v", err)
	}
}

func TestEncodeAfterReleaseRejected(t *testing.T) {
	out := NewOutbound("Chat", "Hello")
	if _, err := out.Encode(); err != nil {
		t.Fatalf("encode: %v", err)
	}
	out.Release()
	if _, err := out.Encode(); !errors.Is(err, ErrAlreadyEncoded) {
		t.Fatalf("expected ErrAlreadyEncoded, got %v", err)
	}
}
