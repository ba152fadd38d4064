package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/iliyamo/doulacare/internal/model"
	"github.com/iliyamo/doulacare/internal/testutil"
)

func strp(s string) *string { return &s }

func f64(v float64) *float64 { return &v }

func TestBootstrapCreatesPlaceholder(t *testing.T) {
	t.Parallel()
	repo := NewUserRepo(testutil.NewDB(t))
	id := uuid.New()

	u, err := repo.Bootstrap(context.Background(), BootstrapInput{AuthID: id, Role: model.RoleMother})
	if err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if u.Name != model.DefaultUserName {
		t.Errorf("Name: got %q, want %q", u.Name, model.DefaultUserName)
	}
	if u.Role != model.RoleMother {
		t.Errorf("Role: got %q, want mother", u.Role)
	}
	if u.AuthID == nil || *u.AuthID != id {
		t.Errorf("AuthID: got %v, want %v", u.AuthID, id)
	}
}

func TestBootstrapFillsBlanksOnly(t *testing.T) {
	t.Parallel()
	repo := NewUserRepo(testutil.NewDB(t))
	ctx := context.Background()
	id := uuid.New()

	first, err := repo.Bootstrap(ctx, BootstrapInput{AuthID: id, Role: model.RoleDoula})
	if err != nil {
		t.Fatal(err)
	}
	// Placeholder name and empty location get filled; role follows the claim.
	u, err := repo.Bootstrap(ctx, BootstrapInput{AuthID: id, Role: model.RoleMother, Name: strp("Ana"), Location: strp("Lisbon")})
	if err != nil {
		t.Fatal(err)
	}
	if u.ID != first.ID {
		t.Fatalf("ID: got %d, want %d", u.ID, first.ID)
	}
	if u.Name != "Ana" || u.Location == nil || *u.Location != "Lisbon" || u.Role != model.RoleMother {
		t.Errorf("after fill: got name=%q location=%v role=%q", u.Name, u.Location, u.Role)
	}

	// Set values are kept.
	u, err = repo.Bootstrap(ctx, BootstrapInput{AuthID: id, Role: model.RoleMother, Name: strp("Other"), Location: strp("Porto")})
	if err != nil {
		t.Fatal(err)
	}
	if u.Name != "Ana" || *u.Location != "Lisbon" {
		t.Errorf("after second bootstrap: got name=%q location=%q, want Ana Lisbon", u.Name, *u.Location)
	}

	all, _ := repo.List(ctx)
	if len(all) != 1 {
		t.Errorf("users: got %d, want 1", len(all))
	}
}

func TestUpdateUser(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	d := testutil.User(t, db, model.RoleDoula, "Dana")

	u, err := repo.Update(ctx, d.ID, map[string]any{"price": 80.0, "location": "Cork"})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if u.Price != 80 || u.Location == nil || *u.Location != "Cork" || u.Name != "Dana" {
		t.Errorf("got price=%v location=%v name=%q", u.Price, u.Location, u.Name)
	}
	if _, err := repo.Update(ctx, 9999, map[string]any{"price": 1.0}); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing user: got %v, want ErrNotFound", err)
	}

	other := testutil.User(t, db, model.RoleMother, "Mia")
	if _, err := repo.Update(ctx, other.ID, map[string]any{"auth_id": d.AuthID.String()}); !errors.Is(err, ErrConflict) {
		t.Errorf("duplicate auth_id: got %v, want ErrConflict", err)
	}
}

func TestListDoulas(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	ctx := context.Background()
	mk := func(name, location string, price float64, verified bool, services string) {
		testutil.Create(t, db, &model.User{
			Name: name, Role: model.RoleDoula, Location: strp(location), Price: price,
			Verified: verified, Services: strp(services),
		})
	}
	mk("Zoe", "Dublin", 70, true, "birth support")
	mk("Amy", "Galway", 40, true, "postpartum")
	mk("Bea", "dublin north", 55, false, "lactation")
	mk("Cat", "Cork", 90, true, "Postpartum night care")
	testutil.User(t, db, model.RoleMother, "Mia")

	repo := NewUserRepo(db)
	names := func(f DoulaFilter) []string {
		t.Helper()
		us, err := repo.ListDoulas(ctx, f)
		if err != nil {
			t.Fatalf("ListDoulas(%+v): %v", f, err)
		}
		out := make([]string, len(us))
		for i, u := range us {
			out[i] = u.Name
		}
		return out
	}

	cases := []struct {
		name string
		f    DoulaFilter
		want []string
	}{
		{"all", DoulaFilter{}, []string{"Zoe", "Amy", "Bea", "Cat"}},
		{"verified", DoulaFilter{VerifiedOnly: true}, []string{"Zoe", "Amy", "Cat"}},
		{"location any case", DoulaFilter{Location: "DUBLIN"}, []string{"Zoe", "Bea"}},
		{"price range", DoulaFilter{MinPrice: f64(50), MaxPrice: f64(80)}, []string{"Zoe", "Bea"}},
		{"query services", DoulaFilter{Query: "postpartum"}, []string{"Amy", "Cat"}},
		{"sort by price", DoulaFilter{VerifiedOnly: true, SortBy: "price"}, []string{"Amy", "Zoe", "Cat"}},
		{"sort by name", DoulaFilter{SortBy: "name"}, []string{"Amy", "Bea", "Cat", "Zoe"}},
		{"unknown sort", DoulaFilter{SortBy: "rating"}, []string{"Zoe", "Amy", "Bea", "Cat"}},
	}
	for _, tc := range cases {
		got := names(tc.f)
		if len(got) != len(tc.want) {
			t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
			continue
		}
		for i := range got {
			if got[i] != tc.want[i] {
				t.Errorf("%s: got %v, want %v", tc.name, got, tc.want)
				break
			}
		}
	}
}

func TestGetByAuthIDAndRole(t *testing.T) {
	t.Parallel()
	db := testutil.NewDB(t)
	repo := NewUserRepo(db)
	ctx := context.Background()
	m := testutil.User(t, db, model.RoleMother, "Mia")

	if _, err := repo.GetByAuthIDAndRole(ctx, *m.AuthID, model.RoleMother); err != nil {
		t.Errorf("matching role: %v", err)
	}
	if _, err := repo.GetByAuthIDAndRole(ctx, *m.AuthID, model.RoleDoula); !errors.Is(err, ErrNotFound) {
		t.Errorf("wrong role: got %v, want ErrNotFound", err)
	}
	byAuth, err := repo.GetByAuthIDs(ctx, []uuid.UUID{*m.AuthID, uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if len(byAuth) != 1 || byAuth[*m.AuthID].ID != m.ID {
		t.Errorf("GetByAuthIDs: got %v", byAuth)
	}
}
