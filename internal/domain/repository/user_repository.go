// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers and the infrastructure layer.
package repository

import (
	"context"
	"errors"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// Domain-specific errors for user persistence.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrUserDuplicate is returned when the username or email is already taken.
	ErrUserDuplicate = errors.New("username or email already exists")
	// ErrProductAlreadySaved is returned when saving a product that is already in saved content.
	ErrProductAlreadySaved = errors.New("product already in saved content")
	// ErrProductNotSaved is returned when removing a product that is not in saved content.
	ErrProductNotSaved = errors.New("product not in saved content")
)

// UserRepository defines the standard operations for user persistence.
// Lookups return the public entity.User; secret material is only reachable
// through FindCredentials and stays inside the auth subsystem.
type UserRepository interface {
	// Create persists a new user together with its password hash.
	// The hash is computed exactly once by the caller; the repository never rehashes.
	Create(ctx context.Context, user *entity.User, passwordHash string) error

	// FindByID retrieves a single user by their unique ID.
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)

	// FindByUsernameOrEmail retrieves the user matching either identifier.
	FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error)

	// FindCredentials retrieves the secret material for a user.
	FindCredentials(ctx context.Context, userID uuid.UUID) (*entity.Credentials, error)

	// UpdatePasswordHash replaces the stored password hash.
	UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error

	// UpdateAccount replaces the mutable account fields and returns the updated user.
	UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*entity.User, error)

	// UpdateAvatar replaces the avatar URL and returns the updated user.
	UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*entity.User, error)

	// AddSavedProduct adds a product to the user's saved content.
	AddSavedProduct(ctx context.Context, userID, productID uuid.UUID) error

	// RemoveSavedProduct removes a product from the user's saved content.
	RemoveSavedProduct(ctx context.Context, userID, productID uuid.UUID) error

	// ListSavedProductIDs returns the ids of the user's saved products, newest first.
	ListSavedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error)
}
