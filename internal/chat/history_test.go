package chat

import (
	"encoding/json"
	"fmt"
	"testing"
)

func msg(i int) Message { return Message(fmt.Sprintf(`{"text":"m%d"}`, i)) }

func TestHistoryEmptySnapshotEncodesAsList(t *testing.T) {
	t.Parallel()
	h := NewHistory(3)
	b, err := json.Marshal(h.Snapshot())
	if err != nil {
		t.Fatal(err)
	}
	if string(b) != "[]" {
		t.Errorf("empty snapshot: got %s, want []", b)
	}
}

func TestHistoryKeepsInsertionOrder(t *testing.T) {
	t.Parallel()
	h := NewHistory(5)
	for i := 0; i < 3; i++ {
		h.Append(msg(i))
	}
	got := h.Snapshot()
	if len(got) != 3 {
		t.Fatalf("len: got %d, want 3", len(got))
	}
	for i, m := range got {
		if string(m) != string(msg(i)) {
			t.Errorf("entry %d: got %s, want %s", i, m, msg(i))
		}
	}
}

func TestHistoryEvictsOldest(t *testing.T) {
	t.Parallel()
	h := NewHistory(DefaultHistorySize)
	for i := 0; i < DefaultHistorySize+1; i++ {
		h.Append(msg(i))
	}
	got := h.Snapshot()
	if len(got) != DefaultHistorySize {
		t.Fatalf("len: got %d, want %d", len(got), DefaultHistorySize)
	}
	if string(got[0]) != string(msg(1)) {
		t.Errorf("oldest: got %s, want %s", got[0], msg(1))
	}
	if string(got[len(got)-1]) != string(msg(DefaultHistorySize)) {
		t.Errorf("newest: got %s, want %s", got[len(got)-1], msg(DefaultHistorySize))
	}
}

func TestHistoryNonPositiveCapacityUsesDefault(t *testing.T) {
	t.Parallel()
	if got := NewHistory(0).Cap(); got != DefaultHistorySize {
		t.Errorf("Cap: got %d, want %d", got, DefaultHistorySize)
	}
}
