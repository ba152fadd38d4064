package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// ErrInvalidRole is returned when a role other than mother or doula is
// used to address one side of a thread.
var ErrInvalidRole = errors.New("invalid role")

// MessageRepo persists private mother/doula messages.
type MessageRepo struct{ db *gorm.DB }

func NewMessageRepo(db *gorm.DB) *MessageRepo { return &MessageRepo{db: db} }

// roleColumns returns the participant and read-flag columns that belong
// to role.  ok is false for roles that cannot take part in a thread.
func roleColumns(role string) (idCol, readCol string, ok bool) {
	switch role {
	case model.RoleMother:
		return "mother_auth_id", "read_by_mother", true
	case model.RoleDoula:
		return "doula_auth_id", "read_by_doula", true
	}
	return "", "", false
}

// Create inserts m.
func (r *MessageRepo) Create(ctx context.Context, m *model.Message) error {
	return translate(r.db.WithContext(ctx).Create(m).Error)
}

// Thread returns the conversation between the pair, oldest first.
func (r *MessageRepo) Thread(ctx context.Context, motherAuthID, doulaAuthID uuid.UUID) ([]model.Message, error) {
	var out []model.Message
	err := r.db.WithContext(ctx).
		Where("mother_auth_id = ? AND doula_auth_id = ?", motherAuthID, doulaAuthID).
		Order("created_at").Order("id").Find(&out).Error
	return out, translate(err)
}

// UnreadCount counts the messages in all of the user's threads that are
// still unread for role.
func (r *MessageRepo) UnreadCount(ctx context.Context, authID uuid.UUID, role string) (int64, error) {
	idCol, readCol, ok := roleColumns(role)
	if !ok {
		return 0, ErrInvalidRole
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where(idCol+" = ? AND "+readCol+" = ?", authID, false).
		Count(&n).Error
	return n, translate(err)
}

// MarkRead flags every message in the thread as read for role.
func (r *MessageRepo) MarkRead(ctx context.Context, motherAuthID, doulaAuthID uuid.UUID, role string) error {
	_, readCol, ok := roleColumns(role)
	if !ok {
		return ErrInvalidRole
	}
	err := r.db.WithContext(ctx).Model(&model.Message{}).
		Where("mother_auth_id = ? AND doula_auth_id = ?", motherAuthID, doulaAuthID).
		Update(readCol, true).Error
	return translate(err)
}

// ListForUser returns every message the user takes part in as role,
// newest first.
func (r *MessageRepo) ListForUser(ctx context.Context, authID uuid.UUID, role string) ([]model.Message, error) {
	idCol, _, ok := roleColumns(role)
	if !ok {
		return nil, ErrInvalidRole
	}
	var out []model.Message
	err := r.db.WithContext(ctx).Where(idCol+" = ?", authID).
		Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, translate(err)
}
