package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// UserRepo provides persistence for mothers, doulas and admins.
type UserRepo struct{ DB *gorm.DB }

func NewUserRepo(db *gorm.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts u and fills its generated ID and timestamps.
func (r *UserRepo) Create(ctx context.Context, u *model.User) error {
	return translate(r.DB.WithContext(ctx).Create(u).Error)
}

// List returns every user ordered by id.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	var out []model.User
	err := r.DB.WithContext(ctx).Order("id").Find(&out).Error
	return out, translate(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).First(&u, id).Error
	return u, translate(err)
}

// GetByAuthID fetches a user by the identity issued by the auth provider.
func (r *UserRepo) GetByAuthID(ctx context.Context, authID uuid.UUID) (model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Where("auth_id = ?", authID).First(&u).Error
	return u, translate(err)
}

// GetByAuthIDAndRole is GetByAuthID restricted to one role.
func (r *UserRepo) GetByAuthIDAndRole(ctx context.Context, authID uuid.UUID, role string) (model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Where("auth_id = ? AND role = ?", authID, role).First(&u).Error
	return u, translate(err)
}

// GetByIDs loads the users with the given ids keyed by id.  Missing ids
// are simply absent from the map.
func (r *UserRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.User
	if err := r.DB.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	for _, u := range rows {
		out[u.ID] = u
	}
	return out, nil
}

// GetByAuthIDs is GetByIDs keyed by auth id.
func (r *UserRepo) GetByAuthIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]model.User, error) {
	out := make(map[uuid.UUID]model.User, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []model.User
	if err := r.DB.WithContext(ctx).Where("auth_id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, translate(err)
	}
	for _, u := range rows {
		if u.AuthID != nil {
			out[*u.AuthID] = u
		}
	}
	return out, nil
}

// Update applies the non-nil columns in fields to the user with the given
// id and returns the refreshed row.  Keys are column names.
func (r *UserRepo) Update(ctx context.Context, id uint64, fields map[string]any) (model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&u, id).Error; err != nil {
			return err
		}
		if len(fields) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(fields).Error; err != nil {
			return err
		}
		return tx.First(&u, id).Error
	})
	return u, translate(err)
}

// BootstrapInput carries the identity claims used to upsert a user on
// first sign-in.
type BootstrapInput struct {
	AuthID   uuid.UUID
	Role     string
	Name     *string
	Location *string
}

// Bootstrap makes sure a row exists for in.AuthID.  An existing row only
// receives values for fields that are still blank (name also counts as
// blank when it is the placeholder) and has its role kept in sync.  A new
// row gets the placeholder name when none is supplied.
func (r *UserRepo) Bootstrap(ctx context.Context, in BootstrapInput) (model.User, error) {
	var u model.User
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("auth_id = ?", in.AuthID).First(&u).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			authID := in.AuthID
			u = model.User{AuthID: &authID, Role: in.Role, Name: model.DefaultUserName, Location: in.Location}
			if in.Name != nil && *in.Name != "" {
				u.Name = *in.Name
			}
			return tx.Create(&u).Error
		case err != nil:
			return err
		}

		changes := map[string]any{}
		if in.Name != nil && *in.Name != "" {
			if cur := strings.TrimSpace(u.Name); cur == "" || u.Name == model.DefaultUserName {
				changes["name"] = *in.Name
			}
		}
		if in.Location != nil && (u.Location == nil || strings.TrimSpace(*u.Location) == "") {
			changes["location"] = *in.Location
		}
		if in.Role != "" && u.Role != in.Role {
			changes["role"] = in.Role
		}
		if len(changes) == 0 {
			return nil
		}
		if err := tx.Model(&u).Updates(changes).Error; err != nil {
			return err
		}
		return tx.First(&u, u.ID).Error
	})
	return u, translate(err)
}

// DoulaFilter narrows the doula directory.  Zero values disable a filter
// except VerifiedOnly, which callers default to true.
type DoulaFilter struct {
	VerifiedOnly bool
	Location     string
	MinPrice     *float64
	MaxPrice     *float64
	Query        string
	SortBy       string // price, name or location; anything else keeps id order
}

var doulaSortColumns = map[string]string{
	"price":    "price",
	"name":     "name",
	"location": "location",
}

// ListDoulas returns doulas matching f.  Text filters are case-insensitive
// substring matches.
func (r *UserRepo) ListDoulas(ctx context.Context, f DoulaFilter) ([]model.User, error) {
	q := r.DB.WithContext(ctx).Where("role = ?", model.RoleDoula)
	if f.VerifiedOnly {
		q = q.Where("verified = ?", true)
	}
	if f.Location != "" {
		q = q.Where("LOWER(location) LIKE ?", likePattern(f.Location))
	}
	if f.MinPrice != nil {
		q = q.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		q = q.Where("price <= ?", *f.MaxPrice)
	}
	if f.Query != "" {
		like := likePattern(f.Query)
		q = q.Where("LOWER(name) LIKE ? OR LOWER(location) LIKE ? OR LOWER(qualifications) LIKE ? OR LOWER(services) LIKE ?",
			like, like, like, like)
	}
	if col, ok := doulaSortColumns[f.SortBy]; ok {
		q = q.Order(col).Order("id")
	} else {
		q = q.Order("id")
	}
	var out []model.User
	err := q.Find(&out).Error
	return out, translate(err)
}

// likePattern lower-cases s and wraps it in %.
func likePattern(s string) string { return "%" + strings.ToLower(s) + "%" }
