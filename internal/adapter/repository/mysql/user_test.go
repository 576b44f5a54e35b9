package mysql

import (
	"context"
	"errors"
	"testing"
	"time"

	domain "flendly-backend/internal/domain/user"
)

func TestUserRepository_CreateAndLookup(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	u := &domain.User{UserID: "u1", Name: "Ann", Email: "Ann@Example.com", PasswordHash: "x", Role: domain.RoleApplicant, RegisteredAt: time.Now().UTC()}
	if err := repo.Create(ctx, u); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 || u.Email != "ann@example.com" {
		t.Fatalf("unexpected created user: %+v", u)
	}

	got, err := repo.GetByEmail(ctx, "ANN@example.com")
	if err != nil || got.UserID != "u1" || got.Role != domain.RoleApplicant {
		t.Fatalf("GetByEmail: %+v %v", got, err)
	}
	if got, err := repo.GetByUserID(ctx, "u1"); err != nil || got.Name != "Ann" {
		t.Fatalf("GetByUserID: %+v %v", got, err)
	}
	if _, err := repo.GetByUserID(ctx, "u404"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
	if _, err := repo.GetByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("want ErrNotFound, got %v", err)
	}
}

func TestUserRepository_DuplicateEmail(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	if err := repo.Create(ctx, &domain.User{UserID: "u1", Email: "a@example.com", Role: domain.RoleApplicant}); err != nil {
		t.Fatal(err)
	}
	err := repo.Create(ctx, &domain.User{UserID: "u2", Email: "A@EXAMPLE.COM", Role: domain.RoleApplicant})
	if !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("want ErrEmailTaken, got %v", err)
	}
}

func TestUserRepository_List(t *testing.T) {
	repo := NewUserRepository(openTestDB(t))
	ctx := context.Background()

	for _, id := range []string{"u1", "u2", "u3"} {
		if err := repo.Create(ctx, &domain.User{UserID: id, Email: id + "@example.com", Role: domain.RoleApplicant}); err != nil {
			t.Fatal(err)
		}
	}
	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 3 || list[0].UserID != "u1" || list[2].UserID != "u3" {
		t.Fatalf("List = %+v", list)
	}
}
