package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/readshelfapp/readshelf-server/internal/errors"
)

type sampleRequest struct {
	Email  string `json:"email" validate:"required,email"`
	Title  string `json:"title,omitempty" validate:"required,max=10"`
	Rating int    `json:"rating" validate:"gte=1,lte=5"`
}

func TestValidate_OK(t *testing.T) {
	v := New()
	err := v.Validate(sampleRequest{Email: "a@example.com", Title: "worms", Rating: 3})
	assert.NoError(t, err)
}

func TestValidate_FieldDetails(t *testing.T) {
	v := New()
	err := v.Validate(sampleRequest{Email: "not-an-email", Rating: 9})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	details, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	// JSON tag names, with options stripped.
	assert.Equal(t, "must be a valid email address", details["email"])
	assert.Equal(t, "is required", details["title"])
	assert.Equal(t, "must be less than or equal to 5", details["rating"])
}
