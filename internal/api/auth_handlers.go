package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/readshelfapp/readshelf-server/internal/domain"
	"github.com/readshelfapp/readshelf-server/internal/service"
)

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register",
		Description: "Creates a new user account and returns a token pair",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Login",
		Description: "Authenticates a user and returns a token pair",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refreshTokens",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Rotates a refresh token and returns a new token pair",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Logout",
		Description: "Revokes the session holding the given refresh token",
		Tags:        []string{"Auth"},
	}, s.handleLogout)
}

func (s *Server) registerUserRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "getCurrentUser",
		Method:      http.MethodGet,
		Path:        "/api/v1/users/me",
		Summary:     "Get current user",
		Description: "Returns the authenticated user's profile",
		Tags:        []string{"Users"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetCurrentUser)
}

// === DTOs ===

// UserResponse contains user data in API responses.
type UserResponse struct {
	ID          string    `json:"id" doc:"User ID"`
	Email       string    `json:"email" doc:"Email address"`
	FirstName   string    `json:"first_name" doc:"First name"`
	LastName    string    `json:"last_name" doc:"Last name"`
	DisplayName string    `json:"display_name,omitempty" doc:"Optional display name"`
	IsStaff     bool      `json:"is_staff" doc:"Whether the user may modify any book"`
	CreatedAt   time.Time `json:"created_at" doc:"Account creation time"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		ID:          u.ID,
		Email:       u.Email,
		FirstName:   u.FirstName,
		LastName:    u.LastName,
		DisplayName: u.DisplayName,
		IsStaff:     u.IsStaff,
		CreatedAt:   u.CreatedAt,
	}
}

// TokenPairResponse contains the user and a fresh token pair.
type TokenPairResponse struct {
	User         UserResponse `json:"user" doc:"Authenticated user"`
	AccessToken  string       `json:"access_token" doc:"PASETO access token"`
	RefreshToken string       `json:"refresh_token" doc:"Opaque refresh token"`
	ExpiresIn    int64        `json:"expires_in" doc:"Access token lifetime in seconds"`
}

func toTokenPairResponse(resp *service.AuthResponse) TokenPairResponse {
	return TokenPairResponse{
		User:         toUserResponse(resp.User),
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
	}
}

// RegisterRequest is the request body for registration.
type RegisterRequest struct {
	Email     string `json:"email" doc:"Email address"`
	Password  string `json:"password" doc:"Password (min 8 characters)"`
	FirstName string `json:"first_name" doc:"First name"`
	LastName  string `json:"last_name" doc:"Last name"`
}

// RegisterInput wraps the register request for Huma.
type RegisterInput struct {
	Body RegisterRequest
}

// TokenPairOutput wraps a token pair response for Huma.
type TokenPairOutput struct {
	Body TokenPairResponse
}

// LoginRequest is the request body for login.
type LoginRequest struct {
	Email    string `json:"email" doc:"Email address"`
	Password string `json:"password" doc:"Password"`
}

// LoginInput wraps the login request for Huma.
type LoginInput struct {
	Body LoginRequest
}

// RefreshRequest is the request body for token refresh and logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
}

// RefreshInput wraps the refresh request for Huma.
type RefreshInput struct {
	Body RefreshRequest
}

// LogoutOutput confirms a logout.
type LogoutOutput struct {
	Body struct {
		Message string `json:"message" doc:"Confirmation message"`
	}
}

// UserOutput wraps a user response for Huma.
type UserOutput struct {
	Body UserResponse
}

// === Handlers ===

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*TokenPairOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		FirstName: input.Body.FirstName,
		LastName:  input.Body.LastName,
	})
	if err != nil {
		return nil, err
	}
	return &TokenPairOutput{Body: toTokenPairResponse(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*TokenPairOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:    input.Body.Email,
		Password: input.Body.Password,
	})
	if err != nil {
		return nil, err
	}
	return &TokenPairOutput{Body: toTokenPairResponse(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*TokenPairOutput, error) {
	resp, err := s.services.Auth.Refresh(ctx, input.Body.RefreshToken)
	if err != nil {
		return nil, err
	}
	return &TokenPairOutput{Body: toTokenPairResponse(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *RefreshInput) (*LogoutOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, err
	}
	out := &LogoutOutput{}
	out.Body.Message = "logged out"
	return out, nil
}

func (s *Server) handleGetCurrentUser(ctx context.Context, _ *struct{}) (*UserOutput, error) {
	user, err := RequireUser(ctx)
	if err != nil {
		return nil, err
	}
	return &UserOutput{Body: toUserResponse(user)}, nil
}
