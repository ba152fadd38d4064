package chat

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// fakeConn records everything sent to it.  Sends fail while fail is set.
type fakeConn struct {
	mu     sync.Mutex
	replay [][]Message
	live   []Message
	fail   bool
}

func (f *fakeConn) Send(_ context.Context, v any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("connection reset")
	}
	switch m := v.(type) {
	case []Message:
		f.replay = append(f.replay, m)
	case Message:
		f.live = append(f.live, m)
	}
	return nil
}

func (f *fakeConn) liveCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.live)
}

func TestAdmitReplaysHistoryOnlyToNewcomer(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(10)
	old := &fakeConn{}
	if err := r.Admit(ctx, old); err != nil {
		t.Fatal(err)
	}
	r.Publish(ctx, msg(1))
	r.Publish(ctx, msg(2))

	c := &fakeConn{}
	if err := r.Admit(ctx, c); err != nil {
		t.Fatal(err)
	}
	if len(c.replay) != 1 {
		t.Fatalf("replays: got %d, want 1", len(c.replay))
	}
	if got := c.replay[0]; len(got) != 2 || string(got[0]) != string(msg(1)) || string(got[1]) != string(msg(2)) {
		t.Errorf("replay: got %s, want [m1 m2]", got)
	}
	if len(old.replay) != 1 || len(old.replay[0]) != 0 {
		t.Errorf("first member replay: got %v, want one empty list", old.replay)
	}
	if n := old.liveCount(); n != 2 {
		t.Errorf("first member live: got %d, want 2", n)
	}
}

func TestAdmitIsIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(10)
	c := &fakeConn{}
	_ = r.Admit(ctx, c)
	_ = r.Admit(ctx, c)
	if r.Len() != 1 {
		t.Errorf("Len: got %d, want 1", r.Len())
	}
	r.Broadcast(ctx, msg(1))
	if n := c.liveCount(); n != 1 {
		t.Errorf("deliveries: got %d, want 1", n)
	}
}

func TestAdmitFailedReplayRetires(t *testing.T) {
	t.Parallel()
	r := NewRegistry(10)
	c := &fakeConn{fail: true}
	if err := r.Admit(context.Background(), c); err == nil {
		t.Fatal("Admit: want error for failing replay")
	}
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
}

func TestRetireUnknownIsNoop(t *testing.T) {
	t.Parallel()
	r := NewRegistry(10)
	c := &fakeConn{}
	_ = r.Admit(context.Background(), c)
	r.Retire(&fakeConn{})
	r.Retire(c)
	r.Retire(c)
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
}

func TestBroadcastDropsFailedConnections(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(10)
	good, bad := &fakeConn{}, &fakeConn{}
	_ = r.Admit(ctx, good)
	_ = r.Admit(ctx, bad)
	bad.mu.Lock()
	bad.fail = true
	bad.mu.Unlock()

	r.Broadcast(ctx, msg(1))

	if r.Len() != 1 {
		t.Fatalf("Len after failed send: got %d, want 1", r.Len())
	}
	if n := good.liveCount(); n != 1 {
		t.Errorf("healthy member deliveries: got %d, want 1", n)
	}
	// The dropped connection is no longer attempted.
	bad.mu.Lock()
	bad.fail = false
	bad.mu.Unlock()
	r.Broadcast(ctx, msg(2))
	if n := bad.liveCount(); n != 0 {
		t.Errorf("dropped member deliveries: got %d, want 0", n)
	}
}

func TestBroadcastDoesNotTouchHistory(t *testing.T) {
	t.Parallel()
	r := NewRegistry(10)
	r.Broadcast(context.Background(), msg(1))
	if n := len(r.History()); n != 0 {
		t.Errorf("history: got %d entries, want 0", n)
	}
}

func TestPublishReachesEveryMember(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(10)
	conns := []*fakeConn{{}, {}, {}}
	for _, c := range conns {
		_ = r.Admit(ctx, c)
	}
	r.Publish(ctx, msg(7))
	for i, c := range conns {
		if n := c.liveCount(); n != 1 {
			t.Errorf("conn %d: got %d deliveries, want 1", i, n)
		}
	}
	if h := r.History(); len(h) != 1 || string(h[0]) != string(msg(7)) {
		t.Errorf("history: got %s, want [m7]", h)
	}
}

// A connection admitted while messages are being published sees each of
// them exactly once, either in its replay or live.
func TestAdmitDuringPublishSeesEachMessageOnce(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	const n = 50
	r := NewRegistry(n)
	c := &fakeConn{}

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < n; i++ {
			r.Publish(ctx, msg(i))
		}
	}()
	go func() {
		defer wg.Done()
		_ = r.Admit(ctx, c)
	}()
	wg.Wait()

	seen := map[string]int{}
	for _, batch := range c.replay {
		for _, m := range batch {
			seen[string(m)]++
		}
	}
	for _, m := range c.live {
		seen[string(m)]++
	}
	for i := 0; i < n; i++ {
		if got := seen[string(msg(i))]; got != 1 {
			t.Errorf("message %d seen %d times, want 1", i, got)
		}
	}
}

func TestConcurrentAdmitRetire(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewRegistry(10)
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &fakeConn{}
			_ = r.Admit(ctx, c)
			r.Publish(ctx, msg(1))
			r.Retire(c)
		}()
	}
	wg.Wait()
	if r.Len() != 0 {
		t.Errorf("Len: got %d, want 0", r.Len())
	}
}
