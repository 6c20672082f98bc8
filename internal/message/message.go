// Package message owns the structured chat message value.
//
// Ownership boundary:
// - channel/payload value semantics
// - validity predicate
// - canonical display form
package message

import "fmt"

// Message is one addressed text payload. Immutable once constructed.
type Message struct {
	Channel string
	Payload string
}

func New(channel, payload string) Message {
	return Message{Channel: channel, Payload: payload}
}

// IsValid reports whether the message is addressed to a channel.
// The payload may be empty; the channel may not.
func (m Message) IsValid() bool {
	return m.Channel != ""
}

// String is the canonical display form.
func (m Message) String() string {
	return fmt.Sprintf("%s: %s", m.Channel, m.Payload)
}
