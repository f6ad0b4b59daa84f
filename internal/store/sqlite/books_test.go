package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

func TestCreateAndGetBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	book := mustCreateBook(t, s, "book-1", "user-1")

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != book.Title {
		t.Errorf("Title: got %q, want %q", got.Title, book.Title)
	}
	if got.Author != book.Author {
		t.Errorf("Author: got %q, want %q", got.Author, book.Author)
	}
	if !got.Price.Equal(book.Price) {
		t.Errorf("Price: got %s, want %s", got.Price, book.Price)
	}
	if got.OwnerID != "user-1" {
		t.Errorf("OwnerID: got %q, want user-1", got.OwnerID)
	}
	if got.Rating != nil {
		t.Errorf("Rating: expected nil, got %s", got.Rating)
	}
}

func TestGetBookNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBook(context.Background(), "missing")
	if !errors.Is(err, store.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

func TestUpdateBook(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	book := mustCreateBook(t, s, "book-1", "user-1")

	book.Title = "Renamed"
	book.Price = decimal.RequireFromString("42.50")
	book.UpdatedAt = time.Now()
	if err := s.UpdateBook(ctx, book); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title: got %q, want Renamed", got.Title)
	}
	if got.Price.StringFixed(2) != "42.50" {
		t.Errorf("Price: got %s, want 42.50", got.Price.StringFixed(2))
	}
}

func TestUpdateBookPreservesRating(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	book := mustCreateBook(t, s, "book-1", "user-1")

	rating := decimal.RequireFromString("4.67")
	if err := s.SetBookRating(ctx, "book-1", &rating); err != nil {
		t.Fatalf("SetBookRating: %v", err)
	}

	book.Title = "Renamed"
	if err := s.UpdateBook(ctx, book); err != nil {
		t.Fatalf("UpdateBook: %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Rating == nil || got.Rating.StringFixed(2) != "4.67" {
		t.Errorf("Rating: got %v, want 4.67", got.Rating)
	}
}

func TestDeleteBookCascadesRelationships(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	mustCreateBook(t, s, "book-1", "user-1")

	rel := domain.NewBookRelationship("user-1", "book-1")
	rel.Like = true
	if err := s.UpsertRelationship(ctx, rel); err != nil {
		t.Fatalf("UpsertRelationship: %v", err)
	}

	if err := s.DeleteBook(ctx, "book-1"); err != nil {
		t.Fatalf("DeleteBook: %v", err)
	}
	if err := s.DeleteBook(ctx, "book-1"); !errors.Is(err, store.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
	if _, err := s.GetRelationship(ctx, "user-1", "book-1"); !errors.Is(err, store.ErrRelationshipNotFound) {
		t.Fatalf("expected relationship cascade, got %v", err)
	}
}

func TestDeleteUserClearsBookOwner(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	mustCreateBook(t, s, "book-1", "user-1")

	if _, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, "user-1"); err != nil {
		t.Fatalf("delete user: %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.OwnerID != "" {
		t.Errorf("OwnerID: expected cleared, got %q", got.OwnerID)
	}
}

func TestSetBookRatingNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	mustCreateUser(t, s, "user-1", "reader@example.com")
	mustCreateBook(t, s, "book-1", "user-1")

	rating := decimal.RequireFromString("3.00")
	if err := s.SetBookRating(ctx, "book-1", &rating); err != nil {
		t.Fatalf("SetBookRating: %v", err)
	}
	if err := s.SetBookRating(ctx, "book-1", nil); err != nil {
		t.Fatalf("SetBookRating(nil): %v", err)
	}

	got, err := s.GetBook(ctx, "book-1")
	if err != nil {
		t.Fatalf("GetBook: %v", err)
	}
	if got.Rating != nil {
		t.Errorf("Rating: expected nil, got %s", got.Rating)
	}

	if err := s.SetBookRating(ctx, "missing", nil); !errors.Is(err, store.ErrBookNotFound) {
		t.Fatalf("expected ErrBookNotFound, got %v", err)
	}
}

// seedListing creates two owners and three books used by the listing tests:
//
//	book-a "Yarrow Valley" by Zed Quill, 55.01, owned by user-1 (Ann Reader)
//	book-b "Quiet Rivers" by Yana Brook, 12.00, owned by user-2 (Bo Keeper)
//	book-c "Middle March" by Ann Author, 30.00, ownerless
func seedListing(t *testing.T, s *Store) {
	t.Helper()
	ctx := context.Background()

	u1 := makeTestUser("user-1", "ann@example.com")
	u1.FirstName, u1.LastName = "Ann", "Reader"
	if err := s.CreateUser(ctx, u1); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	u2 := makeTestUser("user-2", "bo@example.com")
	u2.FirstName, u2.LastName = "Bo", "Keeper"
	if err := s.CreateUser(ctx, u2); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}

	books := []*domain.Book{
		{ID: "book-a", Title: "Yarrow Valley", Author: "Zed Quill", Price: decimal.RequireFromString("55.01"), OwnerID: "user-1"},
		{ID: "book-b", Title: "Quiet Rivers", Author: "Yana Brook", Price: decimal.RequireFromString("12.00"), OwnerID: "user-2"},
		{ID: "book-c", Title: "Middle March", Author: "Ann Author", Price: decimal.RequireFromString("30.00")},
	}
	now := time.Now()
	for _, b := range books {
		b.CreatedAt, b.UpdatedAt = now, now
		if err := s.CreateBook(ctx, b); err != nil {
			t.Fatalf("CreateBook(%s): %v", b.ID, err)
		}
	}
}

func listingIDs(listings []*store.BookListing) []string {
	ids := make([]string, len(listings))
	for i, l := range listings {
		ids[i] = l.ID
	}
	return ids
}

func TestListBooksDefaultOrder(t *testing.T) {
	s := newTestStore(t)
	seedListing(t, s)

	listings, err := s.ListBooks(context.Background(), store.ListBooksParams{})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}

	want := []string{"book-a", "book-b", "book-c"}
	got := listingIDs(listings)
	if len(got) != len(want) {
		t.Fatalf("got %d listings, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("order[%d]: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestListBooksPriceFilter(t *testing.T) {
	s := newTestStore(t)
	seedListing(t, s)

	price := decimal.RequireFromString("55.01")
	listings, err := s.ListBooks(context.Background(), store.ListBooksParams{Price: &price})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(listings) != 1 || listings[0].ID != "book-a" {
		t.Fatalf("expected only book-a, got %v", listingIDs(listings))
	}

	// Near-miss price matches nothing.
	miss := decimal.RequireFromString("55.00")
	listings, err = s.ListBooks(context.Background(), store.ListBooksParams{Price: &miss})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected no match, got %v", listingIDs(listings))
	}
}

func TestListBooksSearch(t *testing.T) {
	s := newTestStore(t)
	seedListing(t, s)

	// "Ya" hits "Yarrow Valley" by title and "Yana Brook" by author,
	// case-insensitively.
	listings, err := s.ListBooks(context.Background(), store.ListBooksParams{Search: "ya"})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	got := listingIDs(listings)
	if len(got) != 2 || got[0] != "book-a" || got[1] != "book-b" {
		t.Fatalf("expected [book-a book-b], got %v", got)
	}

	// LIKE wildcards in the term are literals, not wildcards.
	listings, err = s.ListBooks(context.Background(), store.ListBooksParams{Search: "%"})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("wildcard should match nothing, got %v", listingIDs(listings))
	}
}

func TestListBooksOrdering(t *testing.T) {
	s := newTestStore(t)
	seedListing(t, s)
	ctx := context.Background()

	cases := []struct {
		orderBy string
		want    []string
	}{
		{"price", []string{"book-b", "book-c", "book-a"}},
		{"-price", []string{"book-a", "book-c", "book-b"}},
		{"author", []string{"book-c", "book-b", "book-a"}},
		{"-author", []string{"book-a", "book-b", "book-c"}},
	}
	for _, tc := range cases {
		listings, err := s.ListBooks(ctx, store.ListBooksParams{OrderBy: tc.orderBy})
		if err != nil {
			t.Fatalf("ListBooks(%s): %v", tc.orderBy, err)
		}
		got := listingIDs(listings)
		for i := range tc.want {
			if got[i] != tc.want[i] {
				t.Errorf("%s order[%d]: got %q, want %q", tc.orderBy, i, got[i], tc.want[i])
			}
		}
	}

	if _, err := s.ListBooks(ctx, store.ListBooksParams{OrderBy: "title"}); err == nil {
		t.Error("expected error for unknown ordering key")
	}
}

func TestListBooksAnnotations(t *testing.T) {
	s := newTestStore(t)
	seedListing(t, s)
	ctx := context.Background()

	// Ann likes and reads book-a; Bo reads it without liking.
	relA := domain.NewBookRelationship("user-1", "book-a")
	relA.Like = true
	if err := s.UpsertRelationship(ctx, relA); err != nil {
		t.Fatalf("UpsertRelationship: %v", err)
	}
	relB := domain.NewBookRelationship("user-2", "book-a")
	relB.Bookmarks = true
	if err := s.UpsertRelationship(ctx, relB); err != nil {
		t.Fatalf("UpsertRelationship: %v", err)
	}

	listings, err := s.ListBooks(ctx, store.ListBooksParams{})
	if err != nil {
		t.Fatalf("ListBooks: %v", err)
	}
	byID := map[string]*store.BookListing{}
	for _, l := range listings {
		byID[l.ID] = l
	}

	a := byID["book-a"]
	if a.Likes != 1 {
		t.Errorf("book-a likes: got %d, want 1", a.Likes)
	}
	if a.OwnerName != "Ann Reader" {
		t.Errorf("book-a owner: got %q, want Ann Reader", a.OwnerName)
	}
	if len(a.Readers) != 2 {
		t.Fatalf("book-a readers: got %v, want 2 names", a.Readers)
	}

	c := byID["book-c"]
	if c.OwnerName != domain.AnonymousName {
		t.Errorf("book-c owner: got %q, want %q", c.OwnerName, domain.AnonymousName)
	}
	if c.Likes != 0 {
		t.Errorf("book-c likes: got %d, want 0", c.Likes)
	}
	if len(c.Readers) != 0 {
		t.Errorf("book-c readers: got %v, want none", c.Readers)
	}
}
