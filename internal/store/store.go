// Package store defines the persistence interface for the Readshelf server.
package store

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/readshelfapp/readshelf-server/internal/domain"
)

// Ordering keys accepted by ListBooks. A leading '-' reverses direction.
const (
	OrderByPrice  = "price"
	OrderByAuthor = "author"
)

// ListBooksParams narrows and orders the book listing.
type ListBooksParams struct {
	// Price filters on exact decimal equality when set.
	Price *decimal.Decimal

	// Search matches a case-insensitive substring of title or author.
	Search string

	// OrderBy is "price" or "author", optionally prefixed with '-' for
	// descending. Empty means ascending by id.
	OrderBy string
}

// BookListing is a book annotated with the listing extras: the like
// count, the owner's display name and the names of every user holding a
// relationship to the book.
type BookListing struct {
	domain.Book

	Likes     int
	OwnerName string
	Readers   []string
}

// Store defines the interface for all persistence operations.
type Store interface {
	// Lifecycle
	Close() error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)

	// Auth sessions
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	DeleteExpiredSessions(ctx context.Context) (int, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	SetBookRating(ctx context.Context, bookID string, rating *decimal.Decimal) error
	ListBooks(ctx context.Context, params ListBooksParams) ([]*BookListing, error)

	// Relationships
	GetRelationship(ctx context.Context, userID, bookID string) (*domain.BookRelationship, error)
	UpsertRelationship(ctx context.Context, rel *domain.BookRelationship) error
	ListBookRatings(ctx context.Context, bookID string) ([]int, error)
}
