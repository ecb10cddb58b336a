package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// accountService implements the AccountUsecase interface.
type accountService struct {
	userRepo    repository.UserRepository
	productRepo repository.ProductRepository
	logger      *slog.Logger
}

// AccountServiceParams holds dependencies for accountService, injected by Fx.
type AccountServiceParams struct {
	fx.In

	UserRepo    repository.UserRepository
	ProductRepo repository.ProductRepository
	Logger      *slog.Logger
}

// NewAccountService is the constructor for accountService.
func NewAccountService(params AccountServiceParams) usecase.AccountUsecase {
	return &accountService{
		userRepo:    params.UserRepo,
		productRepo: params.ProductRepo,
		logger:      params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *accountService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CurrentUser returns the public profile of the given user.
func (srv *accountService) CurrentUser(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := srv.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return nil, errors.Wrap(err, "failed to load current user")
	}

	return user, nil
}

// UpdateAccount changes the mutable account details and returns the updated profile.
func (srv *accountService) UpdateAccount(ctx context.Context, input *usecase.UpdateAccountInput) (*entity.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))

	srv.log(ctx).Info("Updating account details", slog.Any("userID", input.UserID))

	user, err := srv.userRepo.UpdateAccount(ctx, input.UserID, input.FullName, email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrUserNotFound):
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		case errors.Is(err, repository.ErrUserDuplicate):
			return nil, errors.Wrap(domainerrors.ErrUserAlreadyExists, "email already in use")
		default:
			return nil, errors.Wrap(err, "failed to update account details")
		}
	}

	return user, nil
}

// UpdateAvatar stores the externally uploaded avatar URL on the profile.
func (srv *accountService) UpdateAvatar(ctx context.Context, input *usecase.UpdateAvatarInput) (*entity.User, error) {
	srv.log(ctx).Info("Updating avatar", slog.Any("userID", input.UserID))

	user, err := srv.userRepo.UpdateAvatar(ctx, input.UserID, input.AvatarURL)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return nil, errors.Wrap(err, "failed to update avatar")
	}

	return user, nil
}

// SaveProduct adds a product to the user's saved content. Saving a product
// twice is reported to the caller rather than silently ignored.
func (srv *accountService) SaveProduct(ctx context.Context, input *usecase.SavedProductInput) error {
	exists, err := srv.productRepo.Exists(ctx, input.ProductID)
	if err != nil {
		return errors.Wrap(err, "failed to check product existence")
	}
	if !exists {
		return errors.Wrap(domainerrors.ErrNotFound, "product not found")
	}

	if err := srv.userRepo.AddSavedProduct(ctx, input.UserID, input.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductAlreadySaved) {
			return errors.Wrap(domainerrors.ErrProductAlreadySaved, "product already in saved content")
		}

		return errors.Wrap(err, "failed to save product")
	}

	srv.log(ctx).Debug("Product saved", slog.Any("userID", input.UserID), slog.Any("productID", input.ProductID))

	return nil
}

// RemoveSavedProduct removes a product from the user's saved content.
func (srv *accountService) RemoveSavedProduct(ctx context.Context, input *usecase.SavedProductInput) error {
	if err := srv.userRepo.RemoveSavedProduct(ctx, input.UserID, input.ProductID); err != nil {
		if errors.Is(err, repository.ErrProductNotSaved) {
			return errors.Wrap(domainerrors.ErrProductNotSaved, "product not in saved content")
		}

		return errors.Wrap(err, "failed to remove saved product")
	}

	srv.log(ctx).Debug("Product removed from saved content", slog.Any("userID", input.UserID), slog.Any("productID", input.ProductID))

	return nil
}

// SavedProducts returns the user's saved products, newest first, each
// hydrated with its seller summary. Products deleted since they were saved
// are skipped.
func (srv *accountService) SavedProducts(ctx context.Context, userID uuid.UUID) ([]*entity.Product, error) {
	ids, err := srv.userRepo.ListSavedProductIDs(ctx, userID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to list saved product ids")
	}

	products, err := srv.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load saved products")
	}

	return products, nil
}
