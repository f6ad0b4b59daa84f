package domain

import "time"

// AnonymousName is the display placeholder for books whose owner account
// has been deleted.
const AnonymousName = "Anonymous"

// User represents an authenticated account in the system.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // stored hashed, never serialized
	FirstName    string    `json:"first_name"`
	LastName     string    `json:"last_name"`
	DisplayName  string    `json:"display_name"`
	IsStaff      bool      `json:"is_staff"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	LastLoginAt  time.Time `json:"last_login_at"`
}

// FullName composes the user's full name from first and last names.
func (u *User) FullName() string {
	switch {
	case u.FirstName == "" && u.LastName == "":
		return ""
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// Name returns the best available name to display for the user.
// Prefers DisplayName, falls back to the full name, then email.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	if full := u.FullName(); full != "" {
		return full
	}
	return u.Email
}

// CanModifyBook reports whether the user may update or delete the book.
// Ownership or the staff flag grants write access; reads are open to all.
func (u *User) CanModifyBook(b *Book) bool {
	return u.IsStaff || (b.HasOwner() && b.OwnerID == u.ID)
}

// Session represents an issued refresh token. Access tokens are
// stateless; refresh tokens are opaque and stored hashed.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"-"`
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
}

// IsExpired reports whether the session's refresh token has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
