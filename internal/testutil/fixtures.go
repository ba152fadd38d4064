package testutil

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/iliyamo/doulacare/internal/model"
)

// User inserts a user with a fresh auth id and the given role.  Doulas
// are verified and priced at 50.
func User(t *testing.T, db *gorm.DB, role, name string) model.User {
	t.Helper()
	id := uuid.New()
	u := model.User{AuthID: &id, Role: role, Name: name}
	if role == model.RoleDoula {
		u.Verified = true
		u.Price = 50
	}
	Create(t, db, &u)
	return u
}

// Booking inserts a booking between mother and doula in the given status.
func Booking(t *testing.T, db *gorm.DB, mother, doula model.User, status string) model.Booking {
	t.Helper()
	start := time.Date(2025, 11, 1, 14, 0, 0, 0, time.UTC)
	b := model.Booking{
		MotherID:     mother.ID,
		DoulaID:      doula.ID,
		MotherAuthID: mother.AuthID,
		DoulaAuthID:  doula.AuthID,
		StartsAt:     start,
		EndsAt:       start.Add(time.Hour),
		Mode:         model.DefaultMode,
		Status:       status,
	}
	Create(t, db, &b)
	return b
}

// Create inserts v or fails the test.
func Create(t *testing.T, db *gorm.DB, v any) {
	t.Helper()
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create %T: %v", v, err)
	}
}
