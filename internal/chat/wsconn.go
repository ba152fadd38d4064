package chat

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// WSConn adapts a websocket connection to Conn.  Each send is bounded by
// timeout when it is positive.
type WSConn struct {
	ws      *websocket.Conn
	timeout time.Duration
}

// NewWSConn wraps ws.
func NewWSConn(ws *websocket.Conn, timeout time.Duration) *WSConn {
	return &WSConn{ws: ws, timeout: timeout}
}

// Send writes v as one JSON text frame.
func (c *WSConn) Send(ctx context.Context, v any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	return wsjson.Write(ctx, c.ws, v)
}

// ErrInvalidMessage reports a client frame that is not a JSON text message.
var ErrInvalidMessage = errors.New("chat: invalid message")

// Receive reads the next JSON value from the client without decoding it.
// Frames that are binary or not valid JSON yield ErrInvalidMessage and
// leave the connection open for the caller to close.
func (c *WSConn) Receive(ctx context.Context) (Message, error) {
	typ, data, err := c.ws.Read(ctx)
	if err != nil {
		return nil, err
	}
	if typ != websocket.MessageText || !json.Valid(data) {
		return nil, ErrInvalidMessage
	}
	return Message(data), nil
}

// Close ends the connection with the given status.
func (c *WSConn) Close(code websocket.StatusCode, reason string) error {
	return c.ws.Close(code, reason)
}
