package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/readshelfapp/readshelf-server/internal/auth"
	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/store"
	"github.com/readshelfapp/readshelf-server/internal/store/sqlite"
)

// testServices bundles the services under test with their shared store.
type testServices struct {
	auth  *AuthService
	books *BookService
	rels  *RelationshipService
	store store.Store
}

func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	testStore, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { testStore.Close() })

	key, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), 15*time.Minute, 720*time.Hour)
	require.NoError(t, err)

	return &testServices{
		auth:  NewAuthService(testStore, tokenService, logger),
		books: NewBookService(testStore, logger),
		rels:  NewRelationshipService(testStore, logger),
		store: testStore,
	}
}

// registerTestUser registers a user through the auth service and returns it.
func registerTestUser(t *testing.T, ts *testServices, email string) *domain.User {
	t.Helper()
	resp, err := ts.auth.Register(context.Background(), RegisterRequest{
		Email:     email,
		Password:  "correct horse battery",
		FirstName: "Test",
		LastName:  "Reader",
	})
	require.NoError(t, err)
	return resp.User
}

// createTestBook creates a book owned by the actor.
func createTestBook(t *testing.T, ts *testServices, actor *domain.User, title string) *domain.Book {
	t.Helper()
	book, err := ts.books.Create(context.Background(), actor, CreateBookRequest{
		Title:  title,
		Author: "Ann Author",
		Price:  "19.99",
	})
	require.NoError(t, err)
	return book
}

func boolPtr(v bool) *bool { return &v }
func intPtr(v int) *int    { return &v }

func ratingString(t *testing.T, ts *testServices, bookID string) string {
	t.Helper()
	book, err := ts.store.GetBook(context.Background(), bookID)
	require.NoError(t, err)
	if book.Rating == nil {
		return ""
	}
	return book.Rating.StringFixed(2)
}

// setBogusRating plants a sentinel aggregate so tests can detect whether
// a recompute ran.
func setBogusRating(t *testing.T, ts *testServices, bookID string) {
	t.Helper()
	bogus := decimal.RequireFromString("1.11")
	require.NoError(t, ts.store.SetBookRating(context.Background(), bookID, &bogus))
}
