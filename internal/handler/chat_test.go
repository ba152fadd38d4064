package handler

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/iliyamo/doulacare/internal/chat"
)

func dialChat(ctx context.Context, t *testing.T, url string) (*websocket.Conn, []json.RawMessage) {
	t.Helper()
	ws, _, err := websocket.Dial(ctx, url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = ws.Close(websocket.StatusNormalClosure, "") })
	var history []json.RawMessage
	if err := wsjson.Read(ctx, ws, &history); err != nil {
		t.Fatalf("read history: %v", err)
	}
	return ws, history
}

func TestChatRoom(t *testing.T) {
	t.Parallel()
	reg := chat.NewRegistry(chat.DefaultHistorySize)
	e := echo.New()
	e.GET("/chat", NewChatHandler(reg, 5*time.Second, []string{"http://localhost:5173"}).Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	alice, history := dialChat(ctx, t, url)
	if len(history) != 0 {
		t.Fatalf("initial history: got %d entries, want 0", len(history))
	}
	bob, _ := dialChat(ctx, t, url)

	sent := map[string]string{"sender": "alice", "text": "hello", "time": "10:00"}
	if err := wsjson.Write(ctx, alice, sent); err != nil {
		t.Fatal(err)
	}
	for name, ws := range map[string]*websocket.Conn{"alice": alice, "bob": bob} {
		var got map[string]string
		if err := wsjson.Read(ctx, ws, &got); err != nil {
			t.Fatalf("%s read: %v", name, err)
		}
		if got["text"] != "hello" || got["sender"] != "alice" {
			t.Errorf("%s received %v", name, got)
		}
	}

	_, history = dialChat(ctx, t, url)
	if len(history) != 1 {
		t.Fatalf("replayed history: got %d entries, want 1", len(history))
	}
	var first map[string]string
	if err := json.Unmarshal(history[0], &first); err != nil || first["text"] != "hello" {
		t.Errorf("replayed entry: got %s", history[0])
	}
	if n := reg.Len(); n != 3 {
		t.Errorf("members: got %d, want 3", n)
	}
}

func TestChatClosesOnInvalidFrame(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.GET("/chat", NewChatHandler(chat.NewRegistry(0), 5*time.Second, nil).Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	frames := map[string]struct {
		typ  websocket.MessageType
		data string
	}{
		"malformed json": {websocket.MessageText, `{"text": "hel`},
		"binary frame":   {websocket.MessageBinary, `{"text": "hello"}`},
	}
	for name, f := range frames {
		ws, _ := dialChat(ctx, t, url)
		if err := ws.Write(ctx, f.typ, []byte(f.data)); err != nil {
			t.Fatalf("%s write: %v", name, err)
		}
		_, _, err := ws.Read(ctx)
		if got := websocket.CloseStatus(err); got != websocket.StatusUnsupportedData {
			t.Errorf("%s: got close status %v (err %v), want %v", name, got, err, websocket.StatusUnsupportedData)
		}
	}
}

func TestChatRejectsForeignOrigin(t *testing.T) {
	t.Parallel()
	e := echo.New()
	e.GET("/chat", NewChatHandler(chat.NewRegistry(0), time.Second, []string{"http://localhost:5173"}).Serve)
	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := &websocket.DialOptions{HTTPHeader: map[string][]string{"Origin": {"http://evil.example"}}}
	if _, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(srv.URL, "http")+"/chat", opts); err == nil {
		t.Error("dial from foreign origin: want error")
	}
}
