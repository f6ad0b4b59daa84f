package api

import (
	"context"
	"encoding/json/v2"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/service"
)

func (s *Server) registerRelationshipRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getBookRelationship",
		Method:      http.MethodGet,
		Path:        "/api/v1/books/{id}/relationship",
		Summary:     "Get book relationship",
		Description: "Returns the caller's like/bookmark/rating state for a book",
		Tags:        []string{"Relationships"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetRelationship)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateBookRelationship",
		Method:      http.MethodPatch,
		Path:        "/api/v1/books/{id}/relationship",
		Summary:     "Update book relationship",
		Description: "Partially updates the caller's relationship with a book",
		Tags:        []string{"Relationships"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateRelationship)
}

// === DTOs ===

// OptionalInt distinguishes an absent JSON field from an explicit null.
// Sending "rating": null clears the rating; omitting it leaves it alone.
type OptionalInt struct {
	Set   bool
	Value *int
}

// UnmarshalJSON records that the field was present before decoding it.
func (o *OptionalInt) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

// Schema describes OptionalInt as a nullable integer for OpenAPI.
func (o OptionalInt) Schema(_ huma.Registry) *huma.Schema {
	return &huma.Schema{
		Type:     huma.TypeInteger,
		Nullable: true,
	}
}

// RelationshipResponse contains relationship data in API responses.
type RelationshipResponse struct {
	BookID    string    `json:"book_id" doc:"Book ID"`
	Like      bool      `json:"like" doc:"Whether the caller likes the book"`
	Bookmarks bool      `json:"bookmarks" doc:"Whether the caller bookmarked the book"`
	Rating    *int      `json:"rating" doc:"Caller's rating 1-5, null when unrated"`
	CreatedAt time.Time `json:"created_at" doc:"First interaction time"`
	UpdatedAt time.Time `json:"updated_at" doc:"Last update time"`
}

func toRelationshipResponse(rel *domain.BookRelationship) RelationshipResponse {
	return RelationshipResponse{
		BookID:    rel.BookID,
		Like:      rel.Like,
		Bookmarks: rel.Bookmarks,
		Rating:    rel.Rating,
		CreatedAt: rel.CreatedAt,
		UpdatedAt: rel.UpdatedAt,
	}
}

// GetRelationshipInput contains parameters for reading a relationship.
type GetRelationshipInput struct {
	ID string `path:"id" doc:"Book ID"`
}

// RelationshipOutput wraps a relationship response for Huma.
type RelationshipOutput struct {
	Body RelationshipResponse
}

// UpdateRelationshipRequest is the request body for a relationship
// patch. Omitted fields are left unchanged.
type UpdateRelationshipRequest struct {
	Like      *bool       `json:"like,omitempty" doc:"Like flag"`
	Bookmarks *bool       `json:"bookmarks,omitempty" doc:"Bookmark flag"`
	Rating    OptionalInt `json:"rating,omitempty" doc:"Rating 1-5, null to clear"`
}

// UpdateRelationshipInput wraps the relationship patch for Huma.
type UpdateRelationshipInput struct {
	ID   string `path:"id" doc:"Book ID"`
	Body UpdateRelationshipRequest
}

// === Handlers ===

func (s *Server) handleGetRelationship(ctx context.Context, input *GetRelationshipInput) (*RelationshipOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	rel, err := s.services.Relationship.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, err
	}
	return &RelationshipOutput{Body: toRelationshipResponse(rel)}, nil
}

func (s *Server) handleUpdateRelationship(ctx context.Context, input *UpdateRelationshipInput) (*RelationshipOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}

	rel, err := s.services.Relationship.Apply(ctx, user.ID, input.ID, service.RelationshipPatch{
		Like:      input.Body.Like,
		Bookmarks: input.Body.Bookmarks,
		Rating:    input.Body.Rating.Value,
		RatingSet: input.Body.Rating.Set,
	})
	if err != nil {
		return nil, err
	}
	return &RelationshipOutput{Body: toRelationshipResponse(rel)}, nil
}
