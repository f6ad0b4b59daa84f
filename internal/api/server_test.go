package api

import (
	"encoding/hex"
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/readshelfapp/readshelf-server/internal/auth"
	"github.com/readshelfapp/readshelf-server/internal/service"
	"github.com/readshelfapp/readshelf-server/internal/store/sqlite"
)

// testEnvelope mirrors the response envelope for decoding in tests.
type testEnvelope[T any] struct {
	Success bool      `json:"success"`
	Data    T         `json:"data"`
	Error   *APIError `json:"error"`
}

// testServer wraps the API server for handler tests.
type testServer struct {
	*Server
	api humatest.TestAPI
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	st, err := sqlite.Open(filepath.Join(dir, "test.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	authKey, err := auth.LoadOrGenerateKey(dir)
	require.NoError(t, err)
	tokenService, err := auth.NewTokenService(
		hex.EncodeToString(authKey),
		15*time.Minute,
		30*24*time.Hour,
	)
	require.NoError(t, err)

	services := &Services{
		Auth:         service.NewAuthService(st, tokenService, logger),
		Book:         service.NewBookService(st, logger),
		Relationship: service.NewRelationshipService(st, logger),
	}

	srv := NewServer(st, services, logger)

	return &testServer{
		Server: srv,
		api:    humatest.Wrap(t, srv.api),
	}
}

// registerUser registers a user through the API and returns the access token.
func (ts *testServer) registerUser(t *testing.T, email string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":      email,
		"password":   "TestPassword123!",
		"first_name": "Test",
		"last_name":  "Reader",
	})
	require.Equal(t, http.StatusOK, resp.Code, "register failed: %s", resp.Body.String())

	var envelope testEnvelope[TokenPairResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken
}

// createBook creates a book through the API and returns its ID.
func (ts *testServer) createBook(t *testing.T, token, title, price string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/books",
		"Authorization: Bearer "+token,
		map[string]any{
			"title":  title,
			"author": "Ann Author",
			"price":  price,
		})
	require.Equal(t, http.StatusOK, resp.Code, "create book failed: %s", resp.Body.String())

	var envelope testEnvelope[BookResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	return envelope.Data.ID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/health")
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[HealthResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "healthy", envelope.Data.Status)
	assert.Equal(t, "healthy", envelope.Data.Components["database"].Status)
}

func TestEnvelope_ErrorShape(t *testing.T) {
	ts := setupTestServer(t)

	resp := ts.api.Get("/api/v1/books/missing")
	require.Equal(t, http.StatusNotFound, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	require.NotNil(t, envelope.Error)
	assert.Equal(t, "NOT_FOUND", envelope.Error.Code)
}
