package handler

import (
    "errors"
    "net/http"
    "strings"
    "time"

    "github.com/google/uuid"
    "github.com/labstack/echo/v4"

    "github.com/iliyamo/doulacare/internal/model"
    "github.com/iliyamo/doulacare/internal/repository"
)

// MessageHandler serves persisted private messaging between a mother and
// a doula.  A thread is the (mother, doula) pair; read flags are tracked
// per side.
type MessageHandler struct {
    Messages *repository.MessageRepo
    Users    *repository.UserRepo
}

func NewMessageHandler(msgs *repository.MessageRepo, users *repository.UserRepo) *MessageHandler {
    if msgs == nil || users == nil {
        panic("nil repository passed to NewMessageHandler")
    }
    return &MessageHandler{Messages: msgs, Users: users}
}

// Send handles POST /messages/send?sender_auth_id=&sender_role=.
func (h *MessageHandler) Send(c echo.Context) error {
    sender, ok := queryUUID(c, "sender_auth_id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid sender_auth_id")
    }
    role := c.QueryParam("sender_role")
    var body struct {
        ReceiverAuthID uuid.UUID `json:"receiver_auth_id"`
        Text           string    `json:"text"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    text := strings.TrimSpace(body.Text)
    if text == "" {
        return errJSON(c, http.StatusBadRequest, "text is required")
    }

    ctx := c.Request().Context()
    if _, err := h.Users.GetByAuthIDAndRole(ctx, sender, role); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return errJSON(c, http.StatusNotFound, "Sender not found")
        }
        return respondError(c, err)
    }
    if _, err := h.Users.GetByAuthID(ctx, body.ReceiverAuthID); err != nil {
        if errors.Is(err, repository.ErrNotFound) {
            return errJSON(c, http.StatusNotFound, "Receiver not found")
        }
        return respondError(c, err)
    }

    // The sender has read what they wrote; the receiver has not.
    m := model.Message{SenderRole: role, Text: text}
    switch role {
    case model.RoleMother:
        m.MotherAuthID, m.DoulaAuthID = sender, body.ReceiverAuthID
        m.ReadByMother = true
    case model.RoleDoula:
        m.MotherAuthID, m.DoulaAuthID = body.ReceiverAuthID, sender
        m.ReadByDoula = true
    default:
        return errJSON(c, http.StatusBadRequest, "Invalid sender_role")
    }
    if err := h.Messages.Create(ctx, &m); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"id": m.ID, "created_at": m.CreatedAt})
}

type threadMessage struct {
    ID         uint64    `json:"id"`
    SenderRole string    `json:"sender_role"`
    Text       string    `json:"text"`
    CreatedAt  time.Time `json:"created_at"`
}

// Thread handles GET /messages/thread?mother_auth_id=&doula_auth_id=.
func (h *MessageHandler) Thread(c echo.Context) error {
    mother, ok1 := queryUUID(c, "mother_auth_id")
    doula, ok2 := queryUUID(c, "doula_auth_id")
    if !ok1 || !ok2 {
        return errJSON(c, http.StatusBadRequest, "mother_auth_id and doula_auth_id are required")
    }
    msgs, err := h.Messages.Thread(c.Request().Context(), mother, doula)
    if err != nil {
        return respondError(c, err)
    }
    out := make([]threadMessage, 0, len(msgs))
    for _, m := range msgs {
        out = append(out, threadMessage{ID: m.ID, SenderRole: m.SenderRole, Text: m.Text, CreatedAt: m.CreatedAt})
    }
    return c.JSON(http.StatusOK, out)
}

// UnreadCount handles GET /messages/unread-count?user_auth_id=&role=.
func (h *MessageHandler) UnreadCount(c echo.Context) error {
    user, ok := queryUUID(c, "user_auth_id")
    if !ok {
        return errJSON(c, http.StatusBadRequest, "invalid user_auth_id")
    }
    n, err := h.Messages.UnreadCount(c.Request().Context(), user, c.QueryParam("role"))
    if err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"count": n})
}

// MarkRead handles POST /messages/mark-read.
func (h *MessageHandler) MarkRead(c echo.Context) error {
    var body struct {
        MotherAuthID uuid.UUID `json:"mother_auth_id"`
        DoulaAuthID  uuid.UUID `json:"doula_auth_id"`
        Role         string    `json:"role"`
    }
    if err := c.Bind(&body); err != nil {
        return errJSON(c, http.StatusBadRequest, "invalid request body")
    }
    if err := h.Messages.MarkRead(c.Request().Context(), body.MotherAuthID, body.DoulaAuthID, body.Role); err != nil {
        return respondError(c, err)
    }
    return c.JSON(http.StatusOK, echo.Map{"ok": true})
}

// threadSummary is one conversation in the threads listing.
type threadSummary struct {
    OtherAuthID   uuid.UUID `json:"other_auth_id"`
    OtherName     string    `json:"other_name"`
    OtherRole     string    `json:"other_role"`
    LastText      string    `json:"last_text"`
    LastCreatedAt time.Time `json:"last_created_at"`
    UnreadCount   int       `json:"unread_count"`
}

// inboxEntry is one conversation in the inbox listing.
type inboxEntry struct {
    ThreadKey    string    `json:"thread_key"`
    MotherAuthID uuid.UUID `json:"mother_auth_id"`
    DoulaAuthID  uuid.UUID `json:"doula_auth_id"`
    OtherName    string    `json:"other_name"`
    LastText     string    `json:"last_text"`
    LastAt       time.Time `json:"last_at"`
    UnreadCount  int       `json:"unread_count"`
}

// counterpart returns the other side of m for a viewer holding role.
func counterpart(m model.Message, role string) uuid.UUID {
    if role == model.RoleMother {
        return m.DoulaAuthID
    }
    return m.MotherAuthID
}

func otherRole(role string) string {
    if role == model.RoleMother {
        return model.RoleDoula
    }
    return model.RoleMother
}

func unreadFor(m model.Message, role string) bool {
    if role == model.RoleMother {
        return !m.ReadByMother
    }
    return !m.ReadByDoula
}

var errBadUserAuthID = errors.New("invalid user_auth_id")

// loadConversations fetches the viewer's messages newest first and the
// users they talk to keyed by auth id.
func (h *MessageHandler) loadConversations(c echo.Context) ([]model.Message, map[uuid.UUID]model.User, string, error) {
    user, ok := queryUUID(c, "user_auth_id")
    if !ok {
        return nil, nil, "", errBadUserAuthID
    }
    role := c.QueryParam("role")
    ctx := c.Request().Context()
    msgs, err := h.Messages.ListForUser(ctx, user, role)
    if err != nil {
        return nil, nil, "", err
    }
    others, err := h.Users.GetByAuthIDs(ctx, collect(msgs, func(m model.Message) uuid.UUID { return counterpart(m, role) }))
    if err != nil {
        return nil, nil, "", err
    }
    return msgs, others, role, nil
}

func conversationError(c echo.Context, err error) error {
    if errors.Is(err, errBadUserAuthID) {
        return errJSON(c, http.StatusBadRequest, err.Error())
    }
    return respondError(c, err)
}

// Threads handles GET /messages/threads?user_auth_id=&role=.  Every
// message unread by the viewer counts towards its thread.
func (h *MessageHandler) Threads(c echo.Context) error {
    msgs, others, role, err := h.loadConversations(c)
    if err != nil {
        return conversationError(c, err)
    }
    index := map[uuid.UUID]int{}
    out := []threadSummary{}
    for _, m := range msgs {
        other := counterpart(m, role)
        i, ok := index[other]
        if !ok {
            name := "Unknown"
            if u, found := others[other]; found {
                name = u.Name
            }
            out = append(out, threadSummary{
                OtherAuthID:   other,
                OtherName:     name,
                OtherRole:     otherRole(role),
                LastText:      m.Text,
                LastCreatedAt: m.CreatedAt,
            })
            i = len(out) - 1
            index[other] = i
        }
        if unreadFor(m, role) {
            out[i].UnreadCount++
        }
    }
    return c.JSON(http.StatusOK, out)
}

// Inbox handles GET /messages/inbox?user_auth_id=&role=.  Only messages
// written by the other side count as unread.
func (h *MessageHandler) Inbox(c echo.Context) error {
    msgs, others, role, err := h.loadConversations(c)
    if err != nil {
        return conversationError(c, err)
    }
    index := map[string]int{}
    out := []inboxEntry{}
    for _, m := range msgs {
        key := m.MotherAuthID.String() + "-" + m.DoulaAuthID.String()
        i, ok := index[key]
        if !ok {
            name := "User"
            if u, found := others[counterpart(m, role)]; found {
                name = u.Name
            }
            out = append(out, inboxEntry{
                ThreadKey:    key,
                MotherAuthID: m.MotherAuthID,
                DoulaAuthID:  m.DoulaAuthID,
                OtherName:    name,
                LastText:     m.Text,
                LastAt:       m.CreatedAt,
            })
            i = len(out) - 1
            index[key] = i
        }
        if unreadFor(m, role) && m.SenderRole == otherRole(role) {
            out[i].UnreadCount++
        }
    }
    return c.JSON(http.StatusOK, out)
}
