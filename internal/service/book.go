package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	domainerrors "github.com/readshelfapp/readshelf-server/internal/errors"
	"github.com/readshelfapp/readshelf-server/internal/id"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

// BookService handles the book catalog: CRUD with owner-or-staff write
// access and the annotated listing.
type BookService struct {
	store  store.Store
	logger *slog.Logger
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, logger *slog.Logger) *BookService {
	return &BookService{store: store, logger: logger}
}

// CreateBookRequest contains the data for a new book. Price travels as a
// decimal string so "19.99" stays exactly "19.99".
type CreateBookRequest struct {
	Title  string `json:"title" validate:"required,max=255"`
	Author string `json:"author" validate:"required,max=255"`
	Price  string `json:"price" validate:"required"`
}

// UpdateBookRequest is a partial update; nil fields are left unchanged.
type UpdateBookRequest struct {
	Title  *string `json:"title" validate:"omitempty,max=255"`
	Author *string `json:"author" validate:"omitempty,max=255"`
	Price  *string `json:"price"`
}

// ListBooksRequest narrows and orders the listing.
type ListBooksRequest struct {
	Price   string // exact decimal match when non-empty
	Search  string // case-insensitive substring on title or author
	OrderBy string // "price" or "author", optional "-" prefix
}

// allowedOrderings is the whitelist for the listing's ordering parameter.
var allowedOrderings = map[string]bool{
	"":                        true,
	store.OrderByPrice:        true,
	store.OrderByAuthor:       true,
	"-" + store.OrderByPrice:  true,
	"-" + store.OrderByAuthor: true,
}

// parsePrice parses and validates a price string from a request.
func parsePrice(raw string) (decimal.Decimal, error) {
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, domainerrors.Validation("price must be a decimal number")
	}
	if err := domain.ValidatePrice(price); err != nil {
		return decimal.Decimal{}, err
	}
	return domain.CanonicalPrice(price), nil
}

// Create stores a new book owned by the acting user.
func (s *BookService) Create(ctx context.Context, actor *domain.User, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	price, err := parsePrice(req.Price)
	if err != nil {
		return nil, err
	}

	bookID, err := id.Generate("book")
	if err != nil {
		return nil, fmt.Errorf("generate book ID: %w", err)
	}

	now := time.Now().UTC()
	book := &domain.Book{
		ID:        bookID,
		Title:     req.Title,
		Author:    req.Author,
		Price:     price,
		OwnerID:   actor.ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book created", "book_id", bookID, "owner_id", actor.ID)
	}
	return book, nil
}

// Get returns a book by ID. Reads are open to everyone.
func (s *BookService) Get(ctx context.Context, bookID string) (*domain.Book, error) {
	book, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		if errors.Is(err, store.ErrBookNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("get book: %w", err)
	}
	return book, nil
}

// List returns the annotated book listing. Reads are open to everyone.
func (s *BookService) List(ctx context.Context, req ListBooksRequest) ([]*store.BookListing, error) {
	if !allowedOrderings[req.OrderBy] {
		return nil, domainerrors.Validationf("ordering must be one of price, -price, author, -author")
	}

	params := store.ListBooksParams{
		Search:  req.Search,
		OrderBy: req.OrderBy,
	}
	if req.Price != "" {
		price, err := decimal.NewFromString(req.Price)
		if err != nil {
			return nil, domainerrors.Validation("price must be a decimal number")
		}
		canonical := domain.CanonicalPrice(price)
		params.Price = &canonical
	}

	listings, err := s.store.ListBooks(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return listings, nil
}

// Update applies a partial update to a book. Only the owner or staff may
// write; everyone else gets FORBIDDEN even though they can read the book.
func (s *BookService) Update(ctx context.Context, actor *domain.User, bookID string, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.Get(ctx, bookID)
	if err != nil {
		return nil, err
	}
	if !actor.CanModifyBook(book) {
		return nil, domainerrors.Forbidden("only the owner or staff may modify this book")
	}

	if req.Title != nil {
		book.Title = *req.Title
	}
	if req.Author != nil {
		book.Author = *req.Author
	}
	if req.Price != nil {
		price, err := parsePrice(*req.Price)
		if err != nil {
			return nil, err
		}
		book.Price = price
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("update book: %w", err)
	}
	return book, nil
}

// Delete removes a book. Owner-or-staff, like Update.
func (s *BookService) Delete(ctx context.Context, actor *domain.User, bookID string) error {
	book, err := s.Get(ctx, bookID)
	if err != nil {
		return err
	}
	if !actor.CanModifyBook(book) {
		return domainerrors.Forbidden("only the owner or staff may delete this book")
	}

	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return fmt.Errorf("delete book: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Book deleted", "book_id", bookID, "actor_id", actor.ID)
	}
	return nil
}
