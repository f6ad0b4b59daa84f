package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	domainerrors "github.com/readshelfapp/readshelf-server/internal/errors"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

// RelationshipService maintains per-user book relationships and keeps
// each book's aggregate rating in sync with them.
type RelationshipService struct {
	store  store.Store
	logger *slog.Logger
}

// NewRelationshipService creates a new relationship service.
func NewRelationshipService(store store.Store, logger *slog.Logger) *RelationshipService {
	return &RelationshipService{store: store, logger: logger}
}

// RelationshipPatch is a partial update to a relationship. Nil fields
// are left unchanged. Rating is tri-state: RatingSet false leaves it
// alone, RatingSet true with nil Rating clears it.
type RelationshipPatch struct {
	Like      *bool
	Bookmarks *bool
	Rating    *int
	RatingSet bool
}

// Get returns the caller's relationship with a book. A user who has
// never touched the book gets the default zero state; the row itself is
// only created on the first patch.
func (s *RelationshipService) Get(ctx context.Context, userID, bookID string) (*domain.BookRelationship, error) {
	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	rel, err := s.store.GetRelationship(ctx, userID, bookID)
	if err != nil {
		if errors.Is(err, store.ErrRelationshipNotFound) {
			return domain.NewBookRelationship(userID, bookID), nil
		}
		return nil, fmt.Errorf("get relationship: %w", err)
	}
	return rel, nil
}

// Apply applies a partial update to the caller's relationship with a
// book, creating the relationship on first touch. The book's aggregate
// rating is recomputed when the relationship is new or its rating
// changed; a pure like/bookmark toggle leaves the aggregate untouched.
// A failed recompute fails the whole operation.
func (s *RelationshipService) Apply(ctx context.Context, userID, bookID string, patch RelationshipPatch) (*domain.BookRelationship, error) {
	if patch.RatingSet && patch.Rating != nil {
		if err := domain.ValidateRating(*patch.Rating); err != nil {
			return nil, err
		}
	}

	if _, err := s.store.GetBook(ctx, bookID); err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}

	created := false
	rel, err := s.store.GetRelationship(ctx, userID, bookID)
	if err != nil {
		if !errors.Is(err, store.ErrRelationshipNotFound) {
			return nil, fmt.Errorf("get relationship: %w", err)
		}
		rel = domain.NewBookRelationship(userID, bookID)
		created = true
	}
	prevRating := rel.Rating

	if patch.Like != nil {
		rel.Like = *patch.Like
	}
	if patch.Bookmarks != nil {
		rel.Bookmarks = *patch.Bookmarks
	}
	if patch.RatingSet {
		rel.Rating = patch.Rating
	}
	rel.UpdatedAt = time.Now().UTC()

	if err := s.store.UpsertRelationship(ctx, rel); err != nil {
		return nil, fmt.Errorf("upsert relationship: %w", err)
	}

	if created || !domain.RatingEqual(prevRating, rel.Rating) {
		if err := s.RecomputeRating(ctx, bookID); err != nil {
			return nil, err
		}
	}
	return rel, nil
}

// RecomputeRating recalculates a book's aggregate rating from all of
// its relationship ratings and writes it unconditionally, storing NULL
// when no ratings exist.
func (s *RelationshipService) RecomputeRating(ctx context.Context, bookID string) error {
	ratings, err := s.store.ListBookRatings(ctx, bookID)
	if err != nil {
		return fmt.Errorf("list ratings: %w", err)
	}

	if err := s.store.SetBookRating(ctx, bookID, domain.AverageRating(ratings)); err != nil {
		return fmt.Errorf("set book rating: %w", err)
	}
	return nil
}
