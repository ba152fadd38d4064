package handler

import (
    "context"
    "errors"
    "log"
    "net/url"
    "time"

    "github.com/labstack/echo/v4"
    "nhooyr.io/websocket"

    "github.com/iliyamo/doulacare/internal/chat"
)

// ChatHandler upgrades GET /chat to a websocket and joins the client to
// the community room.
type ChatHandler struct {
    Registry     *chat.Registry
    WriteTimeout time.Duration
    accept       *websocket.AcceptOptions
}

// NewChatHandler builds the handler.  origins are the CORS origins
// (scheme://host[:port]); their hosts become the accepted websocket
// origin patterns.  Requests without an Origin header, as sent by native
// mobile clients, are always accepted.
func NewChatHandler(reg *chat.Registry, writeTimeout time.Duration, origins []string) *ChatHandler {
    if reg == nil {
        panic("nil registry passed to NewChatHandler")
    }
    patterns := make([]string, 0, len(origins))
    for _, o := range origins {
        if u, err := url.Parse(o); err == nil && u.Host != "" {
            patterns = append(patterns, u.Host)
        }
    }
    return &ChatHandler{
        Registry:     reg,
        WriteTimeout: writeTimeout,
        accept:       &websocket.AcceptOptions{OriginPatterns: patterns},
    }
}

// Serve runs one client session: history replay on connect, then every
// JSON value the client sends is published to the whole room, sender
// included.
func (h *ChatHandler) Serve(c echo.Context) error {
    ws, err := websocket.Accept(c.Response(), c.Request(), h.accept)
    if err != nil {
        return nil // Accept already wrote the error response
    }
    conn := chat.NewWSConn(ws, h.WriteTimeout)
    ctx := c.Request().Context()

    if err := h.Registry.Admit(ctx, conn); err != nil {
        log.Printf("[chat] history replay failed: %v", err)
        _ = conn.Close(websocket.StatusInternalError, "history replay failed")
        return nil
    }
    defer h.Registry.Retire(conn)

    for {
        m, err := conn.Receive(ctx)
        if err != nil {
            switch {
            case errors.Is(err, chat.ErrInvalidMessage):
                _ = conn.Close(websocket.StatusUnsupportedData, "invalid message")
            case websocket.CloseStatus(err) != -1, ctx.Err() != nil:
                // peer closed or request cancelled
            default:
                log.Printf("[chat] read: %v", err)
                _ = conn.Close(websocket.StatusInternalError, "read failed")
            }
            return nil
        }
        // Detached from ctx: this client's disconnect must not abort
        // delivery to the others.
        h.Registry.Publish(context.Background(), m)
    }
}
