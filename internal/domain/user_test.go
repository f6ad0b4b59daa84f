package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUserName(t *testing.T) {
	u := &User{Email: "x@example.com"}
	assert.Equal(t, "x@example.com", u.Name())

	u.FirstName = "Ada"
	assert.Equal(t, "Ada", u.Name())

	u.LastName = "Lovelace"
	assert.Equal(t, "Ada Lovelace", u.Name())

	u.DisplayName = "ada"
	assert.Equal(t, "ada", u.Name())
}

func TestCanModifyBook(t *testing.T) {
	owner := &User{ID: "user-owner"}
	staff := &User{ID: "user-staff", IsStaff: true}
	other := &User{ID: "user-other"}

	book := &Book{ID: "book-1", OwnerID: "user-owner"}

	assert.True(t, owner.CanModifyBook(book))
	assert.True(t, staff.CanModifyBook(book))
	assert.False(t, other.CanModifyBook(book))

	// Ownerless books are only writable by staff.
	orphan := &Book{ID: "book-2"}
	assert.False(t, owner.CanModifyBook(orphan))
	assert.True(t, staff.CanModifyBook(orphan))
}

func TestRatingEqual(t *testing.T) {
	three, alsoThree, four := 3, 3, 4

	assert.True(t, RatingEqual(nil, nil))
	assert.True(t, RatingEqual(&three, &alsoThree))
	assert.False(t, RatingEqual(&three, &four))
	assert.False(t, RatingEqual(&three, nil))
	assert.False(t, RatingEqual(nil, &four))
}
