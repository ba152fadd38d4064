package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// BookingRepo provides CRUD operations for bookings.  All timestamps are
// stored as zone-free UTC; callers normalise before writing.
type BookingRepo struct {
	db *gorm.DB
}

// NewBookingRepo returns a new BookingRepo bound to the given database.
func NewBookingRepo(db *gorm.DB) *BookingRepo { return &BookingRepo{db: db} }

// Create inserts b and populates its generated ID.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	return translate(r.db.WithContext(ctx).Create(b).Error)
}

// GetByID fetches a booking by id.  ErrNotFound when it does not exist.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).First(&b, id).Error
	return b, translate(err)
}

// List returns every booking ordered by id.
func (r *BookingRepo) List(ctx context.Context) ([]model.Booking, error) {
	var out []model.Booking
	err := r.db.WithContext(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

// ListByMother returns the bookings made by the mother with the given
// internal id, ordered by id.
func (r *BookingRepo) ListByMother(ctx context.Context, motherID uint64) ([]model.Booking, error) {
	var out []model.Booking
	err := r.db.WithContext(ctx).Where("mother_id = ?", motherID).Order("id").Find(&out).Error
	return out, translate(err)
}

// ListByDoula returns the bookings addressed to the doula with the given
// internal id, ordered by id.
func (r *BookingRepo) ListByDoula(ctx context.Context, doulaID uint64) ([]model.Booking, error) {
	var out []model.Booking
	err := r.db.WithContext(ctx).Where("doula_id = ?", doulaID).Order("id").Find(&out).Error
	return out, translate(err)
}

// UpdateStatus overwrites the status of booking id and returns the
// refreshed row.  The status value is not validated here.
func (r *BookingRepo) UpdateStatus(ctx context.Context, id uint64, status string) (model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&b, id).Error; err != nil {
			return err
		}
		if err := tx.Model(&b).Update("status", status).Error; err != nil {
			return err
		}
		return tx.First(&b, id).Error
	})
	return b, translate(err)
}

// MarkPaidIfConfirmed moves booking id from confirmed to paid in a single
// conditional statement.  It reports whether a row changed; false means
// the booking is missing or was not confirmed, and nothing was written.
func (r *BookingRepo) MarkPaidIfConfirmed(ctx context.Context, id uint64) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Booking{}).
		Where("id = ? AND status = ?", id, model.StatusConfirmed).
		Update("status", model.StatusPaid)
	if res.Error != nil {
		return false, translate(res.Error)
	}
	return res.RowsAffected == 1, nil
}

// FindPaid returns the first paid booking between the pair, or
// ErrNotFound.
func (r *BookingRepo) FindPaid(ctx context.Context, motherID, doulaID uint64) (model.Booking, error) {
	var b model.Booking
	err := r.db.WithContext(ctx).
		Where("mother_id = ? AND doula_id = ? AND status = ?", motherID, doulaID, model.StatusPaid).
		Order("id").First(&b).Error
	return b, translate(err)
}
