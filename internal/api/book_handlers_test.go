package api

import (
	"encoding/json/v2"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBookCRUD(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "owner@example.com")

	bookID := ts.createBook(t, token, "Yarrow Valley", "55.01")

	// Anonymous read succeeds.
	resp := ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusOK, resp.Code)

	var bookEnv testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnv))
	assert.Equal(t, "Yarrow Valley", bookEnv.Data.Title)
	assert.Equal(t, "55.01", bookEnv.Data.Price)
	assert.Nil(t, bookEnv.Data.Rating)

	// Owner patches the title only.
	resp = ts.api.Patch("/api/v1/books/"+bookID,
		"Authorization: Bearer "+token,
		map[string]any{"title": "Yarrow Valley, Revised"})
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &bookEnv))
	assert.Equal(t, "Yarrow Valley, Revised", bookEnv.Data.Title)
	assert.Equal(t, "55.01", bookEnv.Data.Price, "price untouched by partial patch")

	// Owner deletes.
	resp = ts.api.Delete("/api/v1/books/"+bookID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/books/" + bookID)
	require.Equal(t, http.StatusNotFound, resp.Code)
}

func TestBookCreate_RequiresAuth(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Post("/api/v1/books", map[string]any{
		"title":  "Anonymous Book",
		"author": "Nobody",
		"price":  "10.00",
	})
	require.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestBookWrite_ForbiddenForNonOwner(t *testing.T) {
	ts := setupTestServer(t)

	// First user is staff, so the owner comes second and the stranger third.
	staffToken := ts.registerUser(t, "staff@example.com")
	ownerToken := ts.registerUser(t, "owner@example.com")
	strangerToken := ts.registerUser(t, "stranger@example.com")

	bookID := ts.createBook(t, ownerToken, "Quiet Rivers", "12.00")

	// The stranger reads but cannot write.
	resp := ts.api.Get("/api/v1/books/"+bookID, "Authorization: Bearer "+strangerToken)
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Patch("/api/v1/books/"+bookID,
		"Authorization: Bearer "+strangerToken,
		map[string]any{"title": "Hijacked"})
	require.Equal(t, http.StatusForbidden, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "FORBIDDEN", envelope.Error.Code)

	resp = ts.api.Delete("/api/v1/books/"+bookID, "Authorization: Bearer "+strangerToken)
	require.Equal(t, http.StatusForbidden, resp.Code)

	// Staff can write someone else's book.
	resp = ts.api.Patch("/api/v1/books/"+bookID,
		"Authorization: Bearer "+staffToken,
		map[string]any{"title": "Staff Edit"})
	require.Equal(t, http.StatusOK, resp.Code)
}

func TestBookList_AnonymousWithFiltersAndAnnotations(t *testing.T) {
	ts := setupTestServer(t)
	ownerToken := ts.registerUser(t, "owner@example.com")

	aID := ts.createBook(t, ownerToken, "Yarrow Valley", "55.01")
	ts.createBook(t, ownerToken, "Quiet Rivers", "12.00")

	// The owner likes their own first book.
	resp := ts.api.Patch("/api/v1/books/"+aID+"/relationship",
		"Authorization: Bearer "+ownerToken,
		map[string]any{"like": true})
	require.Equal(t, http.StatusOK, resp.Code)

	// Anonymous listing with an exact price filter.
	resp = ts.api.Get("/api/v1/books?price=55.01")
	require.Equal(t, http.StatusOK, resp.Code)

	var listEnv testEnvelope[ListBooksResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnv))
	require.Len(t, listEnv.Data.Books, 1)
	got := listEnv.Data.Books[0]
	assert.Equal(t, aID, got.ID)
	assert.Equal(t, 1, got.Likes)
	assert.Equal(t, "Test Reader", got.OwnerName)
	assert.Equal(t, []string{"Test Reader"}, got.Readers)

	// Substring search matches title or author.
	resp = ts.api.Get("/api/v1/books?search=Ya")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnv))
	assert.Len(t, listEnv.Data.Books, 2)

	// Descending price ordering.
	resp = ts.api.Get("/api/v1/books?ordering=-price")
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &listEnv))
	require.Len(t, listEnv.Data.Books, 2)
	assert.Equal(t, aID, listEnv.Data.Books[0].ID)

	// Unknown ordering key is a validation error.
	resp = ts.api.Get("/api/v1/books?ordering=title")
	require.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestBookCreate_InvalidPrice(t *testing.T) {
	ts := setupTestServer(t)
	token := ts.registerUser(t, "owner@example.com")

	for _, price := range []string{"abc", "-1.00", "1000.00", "9.999"} {
		resp := ts.api.Post("/api/v1/books",
			"Authorization: Bearer "+token,
			map[string]any{
				"title":  "Bad Price",
				"author": "Ann Author",
				"price":  price,
			})
		require.Equal(t, http.StatusBadRequest, resp.Code, "price %q: %s", price, resp.Body.String())
	}
}
