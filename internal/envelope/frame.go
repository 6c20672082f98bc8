package envelope

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// Frame layout: magic u32 | version u16 | text_len u32, big-endian,
// followed by exactly text_len bytes of the text form. Encode and
// decode must stay symmetric; the peer process parses this byte for
// byte.
const (
	frameMagic     uint32 = 0xC0DA7A01
	frameVersion   uint16 = 1
	frameHeaderLen        = 10
)

// MaxTextBytes bounds decode memory use on corrupt length fields.
const MaxTextBytes = 1 << 20

var (
	ErrShortFrame     = errors.New("envelope: short frame")
	ErrBadMagic       = errors.New("envelope: invalid frame magic")
	ErrBadVersion     = errors.New("envelope: unsupported frame version")
	ErrLengthMismatch = errors.New("envelope: frame length mismatch")
	ErrTextTooLarge   = errors.New("envelope: text form too large")
)

func encodeFrame(text []byte) ([]byte, error) {
	if len(text) > MaxTextBytes {
		return nil, fmt.Errorf("%w: %d bytes", ErrTextTooLarge, len(text))
	}
	buf := make([]byte, frameHeaderLen+len(text))
	binary.BigEndian.PutUint32(buf[0:4], frameMagic)
	binary.BigEndian.PutUint16(buf[4:6], frameVersion)
	binary.BigEndian.PutUint32(buf[6:10], uint32(len(text)))
	copy(buf[frameHeaderLen:], text)
	return buf, nil
}

func decodeFrame(b []byte) ([]byte, error) {
	if len(b) < frameHeaderLen {
		return nil, ErrShortFrame
	}
	if binary.BigEndian.Uint32(b[0:4]) != frameMagic {
		return nil, ErrBadMagic
	}
	if binary.BigEndian.Uint16(b[4:6]) != frameVersion {
		return nil, ErrBadVersion
	}
	textLen := binary.BigEndian.Uint32(b[6:10])
	if textLen > MaxTextBytes {
		return nil, ErrTextTooLarge
	}
	if uint32(len(b)-frameHeaderLen) != textLen {
		return nil, ErrLengthMismatch
	}
	return b[frameHeaderLen:], nil
}
