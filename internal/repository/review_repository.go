package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// ReviewRepo persists doula reviews.
type ReviewRepo struct{ db *gorm.DB }

func NewReviewRepo(db *gorm.DB) *ReviewRepo { return &ReviewRepo{db: db} }

// Create inserts a review for booking bookingID.  The booking must exist
// (ErrNotFound) and be paid (ErrForbidden); mother and doula are copied
// from it.  The check and the insert share one transaction.
func (r *ReviewRepo) Create(ctx context.Context, bookingID uint64, rating int, comment *string) (model.Review, error) {
	var rev model.Review
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var b model.Booking
		if err := tx.First(&b, bookingID).Error; err != nil {
			return err
		}
		if b.Status != model.StatusPaid {
			return ErrForbidden
		}
		rev = model.Review{
			BookingID: b.ID,
			MotherID:  b.MotherID,
			DoulaID:   b.DoulaID,
			Rating:    rating,
			Comment:   comment,
		}
		return tx.Create(&rev).Error
	})
	return rev, translate(err)
}

// ListByDoula returns reviews for a doula, newest first.
func (r *ReviewRepo) ListByDoula(ctx context.Context, doulaID uint64) ([]model.Review, error) {
	var out []model.Review
	err := r.db.WithContext(ctx).Where("doula_id = ?", doulaID).
		Order("created_at DESC").Order("id DESC").Find(&out).Error
	return out, translate(err)
}
