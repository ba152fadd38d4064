// Package chat implements the community chat room: the set of live
// connections and the replay history shared by all of them.
package chat

import (
	"context"
	"log"
	"sync"
)

// Conn is one open realtime channel to a client.  Implementations must be
// comparable, since the registry keys its membership on them.
type Conn interface {
	Send(ctx context.Context, v any) error
}

// Registry tracks the connections admitted to the room and the message
// history.  One mutex serialises every operation, so membership changes,
// history appends and sends never interleave.
type Registry struct {
	mu      sync.Mutex
	conns   map[Conn]struct{}
	history *History
}

// NewRegistry returns an empty registry whose history holds historySize
// messages.
func NewRegistry(historySize int) *Registry {
	return &Registry{
		conns:   make(map[Conn]struct{}),
		history: NewHistory(historySize),
	}
}

// Admit adds c to the room and sends it the current history as a single
// JSON list.  Admitting a connection twice leaves one membership.  When
// the replay cannot be delivered c is retired again and the error is
// returned.
func (r *Registry) Admit(ctx context.Context, c Conn) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.conns[c] = struct{}{}
	if err := c.Send(ctx, r.history.Snapshot()); err != nil {
		delete(r.conns, c)
		return err
	}
	return nil
}

// Retire removes c from the room.  Retiring an unknown connection is a
// no-op.
func (r *Registry) Retire(c Conn) {
	r.mu.Lock()
	delete(r.conns, c)
	r.mu.Unlock()
}

// Broadcast delivers m to every admitted connection.  Connections that
// fail are dropped after the sweep; failures are not reported.
func (r *Registry) Broadcast(ctx context.Context, m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.broadcastLocked(ctx, m)
}

// Publish appends m to the history and broadcasts it.  A connection
// admitted concurrently either finds m in its replay or receives it live.
func (r *Registry) Publish(ctx context.Context, m Message) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.history.Append(m)
	r.broadcastLocked(ctx, m)
}

func (r *Registry) broadcastLocked(ctx context.Context, m Message) {
	var dead []Conn
	for c := range r.conns {
		if err := c.Send(ctx, m); err != nil {
			dead = append(dead, c)
		}
	}
	for _, c := range dead {
		delete(r.conns, c)
	}
	if len(dead) > 0 {
		log.Printf("[chat] dropped %d unreachable connection(s)", len(dead))
	}
}

// Len returns the number of admitted connections.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.conns)
}

// History returns a copy of the stored messages, oldest first.
func (r *Registry) History() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history.Snapshot()
}
