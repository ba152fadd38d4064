package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/iliyamo/doulacare/internal/model"
	"github.com/iliyamo/doulacare/internal/testutil"
)

func TestCreateReview(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewReviewRepo(db)
	ctx := context.Background()
	m := testutil.User(t, db, model.RoleMother, "Mia")
	d := testutil.User(t, db, model.RoleDoula, "Dana")
	unpaid := testutil.Booking(t, db, m, d, model.StatusConfirmed)
	paid := testutil.Booking(t, db, m, d, model.StatusPaid)

	if _, err := repo.Create(ctx, unpaid.ID, 5, nil); !errors.Is(err, ErrForbidden) {
		t.Errorf("unpaid: got %v, want ErrForbidden", err)
	}
	if _, err := repo.Create(ctx, 9999, 5, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing: got %v, want ErrNotFound", err)
	}

	first, err := repo.Create(ctx, paid.ID, 4, strp("kind"))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if first.MotherID != m.ID || first.DoulaID != d.ID {
		t.Errorf("participants: got mother=%d doula=%d", first.MotherID, first.DoulaID)
	}
	second, err := repo.Create(ctx, paid.ID, 5, nil)
	if err != nil {
		t.Fatal(err)
	}

	list, err := repo.ListByDoula(ctx, d.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].ID != second.ID || list[1].ID != first.ID {
		t.Errorf("ListByDoula: got %+v, want newest first", list)
	}
}
