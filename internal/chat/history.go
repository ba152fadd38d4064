package chat

import "encoding/json"

// DefaultHistorySize is the number of messages kept for replay.
const DefaultHistorySize = 100

// Message is one chat record as sent by a client.  By convention it is an
// object with sender, text and time, but the registry never inspects it.
type Message = json.RawMessage

// History is a fixed-capacity FIFO of messages.  Appending to a full
// history evicts the oldest entry.  It is not safe for concurrent use;
// Registry guards it.
type History struct {
	buf   []Message
	start int
	n     int
}

// NewHistory returns a History holding at most capacity messages.  A
// non-positive capacity falls back to DefaultHistorySize.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = DefaultHistorySize
	}
	return &History{buf: make([]Message, capacity)}
}

// Append adds m as the newest entry.
func (h *History) Append(m Message) {
	if h.n < len(h.buf) {
		h.buf[(h.start+h.n)%len(h.buf)] = m
		h.n++
		return
	}
	h.buf[h.start] = m
	h.start = (h.start + 1) % len(h.buf)
}

// Snapshot returns the entries oldest first.  The result is never nil so
// it encodes as [] when empty.
func (h *History) Snapshot() []Message {
	out := make([]Message, 0, h.n)
	for i := 0; i < h.n; i++ {
		out = append(out, h.buf[(h.start+i)%len(h.buf)])
	}
	return out
}

// Len returns the number of stored entries.
func (h *History) Len() int { return h.n }

// Cap returns the capacity.
func (h *History) Cap() int { return len(h.buf) }
