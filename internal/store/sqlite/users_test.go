package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readshelfapp/readshelf-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, s, "user-1", "reader@example.com")

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != user.Email {
		t.Errorf("Email: got %q, want %q", got.Email, user.Email)
	}
	if got.PasswordHash != user.PasswordHash {
		t.Errorf("PasswordHash: got %q, want %q", got.PasswordHash, user.PasswordHash)
	}
	if got.FirstName != user.FirstName || got.LastName != user.LastName {
		t.Errorf("name: got %q %q, want %q %q", got.FirstName, got.LastName, user.FirstName, user.LastName)
	}
	if got.IsStaff {
		t.Error("IsStaff: expected false")
	}
	if !got.LastLoginAt.IsZero() {
		t.Errorf("LastLoginAt: expected zero, got %v", got.LastLoginAt)
	}
	if got.CreatedAt.Unix() != user.CreatedAt.Unix() {
		t.Errorf("CreatedAt: got %v, want %v", got.CreatedAt, user.CreatedAt)
	}
}

func TestGetUserNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "missing")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")

	// Same email, different case, different ID.
	dup := makeTestUser("user-2", "Reader@Example.com")
	err := s.CreateUser(ctx, dup)
	if !errors.Is(err, store.ErrEmailExists) {
		t.Fatalf("expected ErrEmailExists, got %v", err)
	}
}

func TestGetUserByEmailCaseInsensitive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")

	got, err := s.GetUserByEmail(ctx, "READER@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if got.ID != "user-1" {
		t.Errorf("ID: got %q, want user-1", got.ID)
	}

	_, err = s.GetUserByEmail(ctx, "nobody@example.com")
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestUpdateUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	user := mustCreateUser(t, s, "user-1", "reader@example.com")

	user.DisplayName = "Bookworm"
	user.IsStaff = true
	user.LastLoginAt = time.Now()
	if err := s.UpdateUser(ctx, user); err != nil {
		t.Fatalf("UpdateUser: %v", err)
	}

	got, err := s.GetUser(ctx, "user-1")
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.DisplayName != "Bookworm" {
		t.Errorf("DisplayName: got %q, want Bookworm", got.DisplayName)
	}
	if !got.IsStaff {
		t.Error("IsStaff: expected true")
	}
	if got.LastLoginAt.IsZero() {
		t.Error("LastLoginAt: expected non-zero")
	}
}

func TestUpdateUserNotFound(t *testing.T) {
	s := newTestStore(t)

	user := makeTestUser("missing", "missing@example.com")
	err := s.UpdateUser(context.Background(), user)
	if !errors.Is(err, store.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestCountUsers(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	n, err := s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 users, got %d", n)
	}

	mustCreateUser(t, s, "user-1", "one@example.com")
	mustCreateUser(t, s, "user-2", "two@example.com")

	n, err = s.CountUsers(ctx)
	if err != nil {
		t.Fatalf("CountUsers: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 users, got %d", n)
	}
}
