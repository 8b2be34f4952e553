// Package schema holds the records shared by the memory log, the checkpoint
// store and the orchestration loop, together with their error taxonomy.
package schema

import (
	"slices"
)

// ActionKind names an action type. Messages carry the kind that produced
// them in CauseBy and checkpoints carry the kind that is in flight.
type ActionKind string

const (
	// KindExternal marks input that entered the team from outside, such as
	// the kickoff requirement typed by a human.
	KindExternal ActionKind = "external"
)

const (
	// RoleUser is the producer label of messages authored by the human.
	RoleUser = "user"
	// EndMarker closes an open-ended exchange.
	EndMarker = "end"
)

// Message is an immutable record in a role's memory. An empty SendTo means
// the message is broadcast to every subscriber.
type Message struct {
	Content  string     `json:"content"`
	Role     string     `json:"role"`
	CauseBy  ActionKind `json:"cause_by"`
	SentFrom string     `json:"sent_from"`
	SendTo   []string   `json:"send_to"`
}

// Recipients normalizes a recipient list into a sorted set without blanks.
func Recipients(names ...string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if name == "" || slices.Contains(out, name) {
			continue
		}
		out = append(out, name)
	}
	slices.Sort(out)
	if len(out) == 0 {
		return nil
	}
	return out
}

func (m Message) IsBroadcast() bool {
	return len(m.SendTo) == 0
}

// IsAddressedTo reports whether name may receive the message.
func (m Message) IsAddressedTo(name string) bool {
	return m.IsBroadcast() || slices.Contains(m.SendTo, name)
}

// IsEnd reports whether the message is an end-of-exchange marker.
func (m Message) IsEnd() bool {
	return m.Content == EndMarker
}

// Clone returns a copy that does not share the recipient slice.
func (m Message) Clone() Message {
	out := m
	out.SendTo = slices.Clone(m.SendTo)
	return out
}

// CloneMessages deep copies a message slice.
func CloneMessages(msgs []Message) []Message {
	if msgs == nil {
		return nil
	}
	out := make([]Message, len(msgs))
	for i, msg := range msgs {
		out[i] = msg.Clone()
	}
	return out
}

// Equal compares every field; a nil and an empty recipient list are equal.
func (m Message) Equal(other Message) bool {
	return m.Content == other.Content &&
		m.Role == other.Role &&
		m.CauseBy == other.CauseBy &&
		m.SentFrom == other.SentFrom &&
		slices.Equal(m.SendTo, other.SendTo)
}
