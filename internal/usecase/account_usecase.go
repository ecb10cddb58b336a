package usecase

import (
	"context"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// UpdateAccountInput defines the mutable account fields.
type UpdateAccountInput struct {
	UserID   uuid.UUID
	FullName string
	Email    string
}

// UpdateAvatarInput carries the already-uploaded avatar URL.
type UpdateAvatarInput struct {
	UserID    uuid.UUID
	AvatarURL string
}

// SavedProductInput identifies a product in the user's saved content.
type SavedProductInput struct {
	UserID    uuid.UUID
	ProductID uuid.UUID
}

// AccountUsecase defines the interface for account and saved-content operations.
type AccountUsecase interface {
	CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error)
	UpdateAccount(ctx context.Context, input *UpdateAccountInput) (*entity.User, error)
	UpdateAvatar(ctx context.Context, input *UpdateAvatarInput) (*entity.User, error)
	SaveProduct(ctx context.Context, input *SavedProductInput) error
	RemoveSavedProduct(ctx context.Context, input *SavedProductInput) error
	SavedProducts(ctx context.Context, userID uuid.UUID) ([]*entity.Product, error)
}
