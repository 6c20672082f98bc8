// Package transport owns receiver registration and the send path over
// the copy primitive.
//
// Ownership boundary:
// - channel -> receiver registry
// - descriptor hand-off and the release-on-every-exit contract
//
// The envelope package owns serialization; transport only moves
// descriptors between the two boundary points.
package transport

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"github.com/rs/zerolog"

	"github.com/copperline/datacopy/internal/envelope"
	"github.com/copperline/datacopy/internal/native"
)

var (
	ErrNoReceiver       = errors.New("transport: no receiver for channel")
	ErrDuplicateChannel = errors.New("transport: channel already registered")
	ErrEmptyChannel     = errors.New("transport: empty channel")
)

// Handler receives one decoded envelope. The envelope and its source
// buffer are only valid for the duration of the call; handlers copy
// out what they keep.
type Handler func(*envelope.Envelope)

// Registry maps channel names to receivers. Registry access is
// mutex-guarded; delivered envelopes themselves are single-use and
// need no locking.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]Handler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

func (r *Registry) Register(channel string, h Handler) error {
	if channel == "" {
		return ErrEmptyChannel
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[channel]; ok {
		return fmt.Errorf("%w: %q", ErrDuplicateChannel, channel)
	}
	r.handlers[channel] = h
	return nil
}

func (r *Registry) Unregister(channel string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, channel)
}

func (r *Registry) Lookup(channel string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	h, ok := r.handlers[channel]
	return h, ok
}

// Loopback delivers messages between registered receivers in the same
// process, playing both sides of the copy primitive.
type Loopback struct {
	reg *Registry
	log zerolog.Logger
}

func NewLoopback(reg *Registry, log zerolog.Logger) *Loopback {
	return &Loopback{reg: reg, log: log}
}

// Send encodes one message and hands its descriptor to the channel's
// receiver. The encoded buffer is released on every exit path,
// including a panicking handler.
func (l *Loopback) Send(channel, payload string) error {
	h, ok := l.reg.Lookup(channel)
	if !ok {
		return fmt.Errorf("%w: %q", ErrNoReceiver, channel)
	}

	out := envelope.NewOutbound(channel, payload)
	desc, err := out.Encode()
	if err != nil {
		return fmt.Errorf("transport: encode for %q: %w", channel, err)
	}
	defer out.Release()

	if err := l.deliver(h, desc); err != nil {
		return err
	}
	l.log.Debug().Str("channel", channel).Uint32("bytes", desc.Size).Msg("message delivered")
	return nil
}

// deliver plays the receiving side: decode happens synchronously while
// the descriptor address is still valid, and the decoded envelope is
// torn down before deliver returns.
func (l *Loopback) deliver(h Handler, desc native.Descriptor) error {
	in, err := envelope.Decode(unsafe.Pointer(&desc))
	if err != nil {
		return fmt.Errorf("transport: decode delivery: %w", err)
	}
	defer in.Release()
	if !in.IsValid() {
		l.log.Warn().Uint32("bytes", desc.Size).Msg("delivery failed to decode")
	}
	h(in)
	return nil
}
