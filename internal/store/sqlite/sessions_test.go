package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

// makeTestSession builds a session for an existing user.
func makeTestSession(sessionID, userID, tokenHash string) *domain.Session {
	now := time.Now()
	return &domain.Session{
		ID:               sessionID,
		UserID:           userID,
		RefreshTokenHash: tokenHash,
		ExpiresAt:        now.Add(24 * time.Hour),
		CreatedAt:        now,
		LastSeenAt:       now,
	}
}

func TestCreateAndGetSessionByRefreshToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	session := makeTestSession("sess-1", "user-1", "deadbeef")

	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := s.GetSessionByRefreshToken(ctx, "deadbeef")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("ID: got %q, want sess-1", got.ID)
	}
	if got.UserID != "user-1" {
		t.Errorf("UserID: got %q, want user-1", got.UserID)
	}
	if got.ExpiresAt.Unix() != session.ExpiresAt.Unix() {
		t.Errorf("ExpiresAt: got %v, want %v", got.ExpiresAt, session.ExpiresAt)
	}

	_, err = s.GetSessionByRefreshToken(ctx, "unknown-hash")
	if !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestUpdateSessionRotatesToken(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	session := makeTestSession("sess-1", "user-1", "hash-old")
	if err := s.CreateSession(ctx, session); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	session.RefreshTokenHash = "hash-new"
	session.LastSeenAt = time.Now()
	if err := s.UpdateSession(ctx, session); err != nil {
		t.Fatalf("UpdateSession: %v", err)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash-old"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("old hash should be gone, got %v", err)
	}
	got, err := s.GetSessionByRefreshToken(ctx, "hash-new")
	if err != nil {
		t.Fatalf("GetSessionByRefreshToken: %v", err)
	}
	if got.ID != "sess-1" {
		t.Errorf("ID: got %q, want sess-1", got.ID)
	}
}

func TestDeleteSession(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	if err := s.CreateSession(ctx, makeTestSession("sess-1", "user-1", "hash-1")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := s.DeleteSession(ctx, "sess-1"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if err := s.DeleteSession(ctx, "sess-1"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestDeleteExpiredSessions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")

	expired := makeTestSession("sess-old", "user-1", "hash-old")
	expired.ExpiresAt = time.Now().Add(-time.Hour)
	if err := s.CreateSession(ctx, expired); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}
	if err := s.CreateSession(ctx, makeTestSession("sess-live", "user-1", "hash-live")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	n, err := s.DeleteExpiredSessions(ctx)
	if err != nil {
		t.Fatalf("DeleteExpiredSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 deleted, got %d", n)
	}

	if _, err := s.GetSessionByRefreshToken(ctx, "hash-live"); err != nil {
		t.Errorf("live session should survive: %v", err)
	}
}
