package domain

import (
	"time"

	"github.com/readshelfapp/readshelf-server/internal/errors"
)

// Rating bounds for an individual reader's rating.
const (
	MinRating = 1
	MaxRating = 5
)

// BookRelationship captures one user's state toward one book: whether
// they like it, bookmarked it, and how they rated it. At most one
// relationship exists per (user, book) pair; it is created lazily the
// first time the user touches the book and updated in place afterwards.
type BookRelationship struct {
	UserID    string    `json:"user_id"`
	BookID    string    `json:"book_id"`
	Like      bool      `json:"like"`
	Bookmarks bool      `json:"bookmarks"`
	Rating    *int      `json:"rating"` // nil means the user has not rated the book
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewBookRelationship creates a relationship with default (zero) state
// for the first interaction between a user and a book.
func NewBookRelationship(userID, bookID string) *BookRelationship {
	now := time.Now().UTC()
	return &BookRelationship{
		UserID:    userID,
		BookID:    bookID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ValidateRating checks an individual rating value against the allowed scale.
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return errors.Validationf("rating must be between %d and %d", MinRating, MaxRating)
	}
	return nil
}

// RatingEqual compares two nullable ratings.
func RatingEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
