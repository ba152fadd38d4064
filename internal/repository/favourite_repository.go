package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// FavouriteRepo stores the doulas a mother has saved.
type FavouriteRepo struct{ db *gorm.DB }

func NewFavouriteRepo(db *gorm.DB) *FavouriteRepo { return &FavouriteRepo{db: db} }

// Toggle removes the (mother, doula) favourite when present and creates it
// otherwise.  It returns true when the pair is favourited afterwards.
func (r *FavouriteRepo) Toggle(ctx context.Context, motherAuthID uuid.UUID, doulaID uint64) (bool, error) {
	var favourited bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var f model.Favourite
		err := tx.Where("mother_auth_id = ? AND doula_id = ?", motherAuthID, doulaID).First(&f).Error
		if err == nil {
			favourited = false
			return tx.Delete(&f).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		favourited = true
		return tx.Create(&model.Favourite{MotherAuthID: motherAuthID, DoulaID: doulaID}).Error
	})
	return favourited, translate(err)
}

// ListByMother returns the mother's favourites in the order they were made.
func (r *FavouriteRepo) ListByMother(ctx context.Context, motherAuthID uuid.UUID) ([]model.Favourite, error) {
	var out []model.Favourite
	err := r.db.WithContext(ctx).Where("mother_auth_id = ?", motherAuthID).Order("id").Find(&out).Error
	return out, translate(err)
}
