package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/service"
	"github.com/readshelfapp/readshelf-server/internal/store"
)

func (s *Server) registerBookRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listBooks",
		Method:      http.MethodGet,
		Path:        "/api/v1/books",
		Summary:     "List books",
		Description: "Returns the annotated book listing, open to anonymous readers",
		Tags:        []string{"Books"},
	}, s.handleListBooks)

	huma.Register(s.api, huma.Operation{
		OperationID: "createBook",
		Method:      http.MethodPost,
		Path:        "/api/v1/books",
		Summary:     "Create book",
		Description: "Creates a book owned by the authenticated user",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "getBook",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}",
		Summary:     "Get book",
		Description: "Returns a book by ID, open to anonymous readers",
		Tags:        []string{"Books"},
	}, s.handleGetBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBook",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}",
		Summary:     "Update book",
		Description: "Partially updates a book; owner or staff only",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateBook)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteBook",
		Method:      http.MethodDelete,
		Path:        "/api/v1/books/{id}",
		Summary:     "Delete book",
		Description: "Deletes a book; owner or staff only",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteBook)
}

// === DTOs ===

// BookResponse contains book data in API responses. Price and rating are
// decimal strings so "19.99" stays exactly "19.99".
type BookResponse struct {
	ID        string    `json:"id" doc:"Book ID"`
	Title     string    `json:"title" doc:"Title"`
	Author    string    `json:"author" doc:"Author"`
	Price     string    `json:"price" doc:"Price, two fraction digits"`
	Rating    *string   `json:"rating" doc:"Derived mean of reader ratings, null when unrated"`
	OwnerID   string    `json:"owner_id,omitempty" doc:"Owning user ID, absent when ownerless"`
	CreatedAt time.Time `json:"created_at" doc:"Creation time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toBookResponse(b *domain.Book) BookResponse {
	resp := BookResponse{
		ID:        b.ID,
		Title:     b.Title,
		Author:    b.Author,
		Price:     b.Price.StringFixed(2),
		OwnerID:   b.OwnerID,
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
	if b.Rating != nil {
		rating := b.Rating.StringFixed(2)
		resp.Rating = &rating
	}
	return resp
}

// BookListingResponse is a book annotated with listing extras.
type BookListingResponse struct {
	BookResponse
	Likes     int      `json:"likes" doc:"Number of users who like this book"`
	OwnerName string   `json:"owner_name" doc:"Owner display name, \"Anonymous\" when ownerless"`
	Readers   []string `json:"readers" doc:"Names of users with a relationship to this book"`
}

func toBookListingResponse(l *store.BookListing) BookListingResponse {
	return BookListingResponse{
		BookResponse: toBookResponse(&l.Book),
		Likes:        l.Likes,
		OwnerName:    l.OwnerName,
		Readers:      l.Readers,
	}
}

// ListBooksInput contains the listing's query parameters.
type ListBooksInput struct {
	Price    string `query:"price" doc:"Exact price match, e.g. 55.01"`
	Search   string `query:"search" doc:"Case-insensitive substring of title or author"`
	Ordering string `query:"ordering" doc:"price, -price, author or -author"`
}

// ListBooksResponse contains the annotated listing.
type ListBooksResponse struct {
	Books []BookListingResponse `json:"books" doc:"Annotated book listing"`
}

// ListBooksOutput wraps the listing response for Huma.
type ListBooksOutput struct {
	Body ListBooksResponse
}

// CreateBookRequest is the request body for creating a book.
type CreateBookRequest struct {
	Title  string `json:"title" doc:"Title"`
	Author string `json:"author" doc:"Author"`
	Price  string `json:"price" doc:"Price as a decimal string, at most 999.99"`
}

// CreateBookInput wraps the create book request for Huma.
type CreateBookInput struct {
	Body CreateBookRequest
}

// BookOutput wraps a book response for Huma.
type BookOutput struct {
	Body BookResponse
}

// GetBookInput contains parameters for getting a book.
type GetBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// UpdateBookRequest is the request body for updating a book.
type UpdateBookRequest struct {
	Title  *string `json:"title,omitempty" doc:"Title"`
	Author *string `json:"author,omitempty" doc:"Author"`
	Price  *string `json:"price,omitempty" doc:"Price as a decimal string"`
}

// UpdateBookInput wraps the update book request for Huma.
type UpdateBookInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateBookRequest
}

// DeleteBookInput contains parameters for deleting a book.
type DeleteBookInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// DeleteBookOutput confirms a deletion.
type DeleteBookOutput struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// === Handlers ===

func (s *Server) handleListBooks(ctx context.Context, input *ListBooksInput) (*ListBooksOutput, error) {
	listings, err := s.services.Book.List(ctx, service.ListBooksRequest{
		Price:   input.Price,
		Search:  input.Search,
		OrderBy: input.Ordering,
	})
	if err != nil {
		return nil, err
	}

	resp := make([]BookListingResponse, len(listings))
	for i, l := range listings {
		resp[i] = toBookListingResponse(l)
	}
	return &ListBooksOutput{Body: ListBooksResponse{Books: resp}}, nil
}

func (s *Server) handleCreateBook(ctx context.Context, input *CreateBookInput) (*BookOutput, error) {
	actor, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Create(ctx, actor, service.CreateBookRequest{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Price:  input.Body.Price,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleGetBook(ctx context.Context, input *GetBookInput) (*BookOutput, error) {
	book, err := s.services.Book.Get(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleUpdateBook(ctx context.Context, input *UpdateBookInput) (*BookOutput, error) {
	actor, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	book, err := s.services.Book.Update(ctx, actor, input.ID, service.UpdateBookRequest{
		Title:  input.Body.Title,
		Author: input.Body.Author,
		Price:  input.Body.Price,
	})
	if err != nil {
		return nil, err
	}
	return &BookOutput{Body: toBookResponse(book)}, nil
}

func (s *Server) handleDeleteBook(ctx context.Context, input *DeleteBookInput) (*DeleteBookOutput, error) {
	actor, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.services.Book.Delete(ctx, actor, input.ID); err != nil {
		return nil, err
	}
	out := &DeleteBookOutput{}
	out.Body.Message = "book deleted"
	return out, nil
}
