// Package usecase contains the application-specific business rules.
// It orchestrates the domain layer to perform tasks.
package usecase

import (
	"context"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// RegisterInput defines the data required to register a new user. The avatar
// is uploaded by an external collaborator; only its URL arrives here.
type RegisterInput struct {
	Username  string
	Email     string
	FullName  string
	Password  string
	AvatarURL string
}

// LoginInput defines the data required for a user to log in.
// Identifier matches either a username or an email address.
type LoginInput struct {
	Identifier string
	Password   string
}

// RefreshInput carries the refresh token presented by the client.
type RefreshInput struct {
	RefreshToken string
}

// ChangePasswordInput defines the data required to change a password.
type ChangePasswordInput struct {
	UserID      uuid.UUID
	OldPassword string
	NewPassword string
}

// --- Output DTOs ---

// AuthOutput returns the authenticated user together with a fresh token pair.
type AuthOutput struct {
	User         *entity.User
	AccessToken  string
	RefreshToken string
}

// TokenOutput returns a fresh token pair without user data.
type TokenOutput struct {
	AccessToken  string
	RefreshToken string
}

// AuthUsecase defines the interface for session-lifecycle business operations.
// This is the contract that the delivery layer (e.g., HTTP handlers) will depend on.
type AuthUsecase interface {
	Register(ctx context.Context, input *RegisterInput) (*entity.User, error)
	Login(ctx context.Context, input *LoginInput) (*AuthOutput, error)
	Refresh(ctx context.Context, input *RefreshInput) (*TokenOutput, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	ChangePassword(ctx context.Context, input *ChangePasswordInput) error
}
