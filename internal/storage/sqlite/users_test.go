package sqlite

import (
	"context"
	"errors"
	"testing"

	"tasknest/internal/models"
)

func TestCreateUserAndLookup(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	user := models.User{
		ID:        "uuid-1",
		Firstname: "Ada",
		Lastname:  "Lovelace",
		Username:  "ada",
		Email:     "ada@example.com",
		Password:  "hashed-secret",
	}
	if err := store.CreateUser(ctx, user); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetUserByUsername(ctx, "ada")
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "uuid-1" || got.Email != "ada@example.com" || got.Password != "hashed-secret" {
		t.Errorf("lookup mismatch: %+v", got)
	}

	exists, err := store.UserExists(ctx, "uuid-1")
	if err != nil || !exists {
		t.Errorf("UserExists = %v, %v; want true", exists, err)
	}
	exists, err = store.UserExists(ctx, "uuid-unknown")
	if err != nil || exists {
		t.Errorf("UserExists(unknown) = %v, %v; want false", exists, err)
	}
}

func TestCreateUserDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	base := models.User{ID: "uuid-1", Username: "sam", Email: "sam@example.com"}
	if err := store.CreateUser(ctx, base); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		user models.User
	}{
		{name: "same email", user: models.User{ID: "uuid-2", Username: "other", Email: "sam@example.com"}},
		{name: "same username", user: models.User{ID: "uuid-3", Username: "sam", Email: "other@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := store.CreateUser(ctx, tt.user); !errors.Is(err, ErrUserExists) {
				t.Errorf("CreateUser error = %v, want ErrUserExists", err)
			}
		})
	}
}

func TestUpsertGoogleUser(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := models.User{
		ID:        "uuid-g1",
		Firstname: "Grace",
		Email:     "grace@example.com",
		GoogleSub: "google-sub-123",
	}
	id, err := store.UpsertGoogleUser(ctx, first)
	if err != nil {
		t.Fatal(err)
	}
	if id != "uuid-g1" {
		t.Fatalf("first upsert id = %s, want uuid-g1", id)
	}

	// Same subject signs in again: the existing account wins, the fresh uuid
	// is discarded.
	again := first
	again.ID = "uuid-g2"
	id, err = store.UpsertGoogleUser(ctx, again)
	if err != nil {
		t.Fatal(err)
	}
	if id != "uuid-g1" {
		t.Errorf("second upsert id = %s, want original uuid-g1", id)
	}
}

func TestUpdateUserPartial(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, models.User{ID: "uuid-1", Username: "kim", Email: "kim@example.com", Firstname: "Kim"}); err != nil {
		t.Fatal(err)
	}

	last := "Smith"
	if err := store.UpdateUser(ctx, "uuid-1", models.UserPatch{Lastname: &last}); err != nil {
		t.Fatal(err)
	}

	got, err := store.GetUserByID(ctx, "uuid-1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Lastname != "Smith" || got.Firstname != "Kim" {
		t.Errorf("patched user = %+v", got)
	}

	if err := store.UpdateUser(ctx, "uuid-missing", models.UserPatch{Lastname: &last}); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("update missing user error = %v, want ErrUserNotFound", err)
	}
	if err := store.UpdateUser(ctx, "uuid-1", models.UserPatch{}); err == nil {
		t.Error("expected error for empty patch")
	}
}

func TestProfilePic(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.CreateUser(ctx, models.User{ID: "uuid-1", Username: "lee", Email: "lee@example.com"}); err != nil {
		t.Fatal(err)
	}

	if _, err := store.GetProfilePic(ctx, "uuid-1"); !errors.Is(err, ErrNoProfilePic) {
		t.Errorf("unset avatar error = %v, want ErrNoProfilePic", err)
	}

	if err := store.SetProfilePic(ctx, "uuid-1", "http://localhost:8080/uploads/avatars/uuid-1.jpeg"); err != nil {
		t.Fatal(err)
	}
	url, err := store.GetProfilePic(ctx, "uuid-1")
	if err != nil {
		t.Fatal(err)
	}
	if url != "http://localhost:8080/uploads/avatars/uuid-1.jpeg" {
		t.Errorf("avatar url = %q", url)
	}

	if _, err := store.GetProfilePic(ctx, "uuid-missing"); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("missing user error = %v, want ErrUserNotFound", err)
	}
}
