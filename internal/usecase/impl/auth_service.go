// Package impl contains the implementation of the application's business logic.
package impl

import (
	"context"
	"log/slog"
	"strings"

	deliverycontext "bazaar/internal/delivery/context"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// authService implements the AuthUsecase interface.
type authService struct {
	txManager    repository.TransactionManager
	userRepo     repository.UserRepository
	sessionRepo  repository.SessionRepository
	hasher       service.PasswordHasher
	tokenService service.TokenService
	logger       *slog.Logger
}

// AuthServiceParams holds dependencies for authService, injected by Fx.
type AuthServiceParams struct {
	fx.In

	TxManager    repository.TransactionManager
	UserRepo     repository.UserRepository
	SessionRepo  repository.SessionRepository
	Hasher       service.PasswordHasher
	TokenService service.TokenService
	Logger       *slog.Logger
}

// NewAuthService is the constructor for authService. It receives all dependencies as interfaces.
func NewAuthService(params AuthServiceParams) usecase.AuthUsecase {
	return &authService{
		txManager:    params.TxManager,
		userRepo:     params.UserRepo,
		sessionRepo:  params.SessionRepo,
		hasher:       params.Hasher,
		tokenService: params.TokenService,
		logger:       params.Logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *authService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// Register orchestrates the registration process. The duplicate check and
// the user creation share one transaction, so a failed registration leaves
// no partial account behind. The new account starts without a session; the
// client logs in afterwards.
func (srv *authService) Register(ctx context.Context, input *usecase.RegisterInput) (*entity.User, error) {
	username := strings.ToLower(strings.TrimSpace(input.Username))
	email := strings.ToLower(strings.TrimSpace(input.Email))
	fullName := strings.TrimSpace(input.FullName)

	// Length tags alone accept whitespace-only values, so blankness is
	// decided here, after trimming.
	if username == "" || email == "" || fullName == "" || strings.TrimSpace(input.Password) == "" {
		return nil, errors.Wrap(domainerrors.ErrValidationFailed, "registration fields must not be blank")
	}

	srv.log(ctx).Info("Starting registration", slog.String("username", username))

	// Hash the password outside the transaction (bcrypt is CPU-bound).
	passwordHash, err := srv.hasher.Hash(input.Password)
	if err != nil {
		srv.log(ctx).Error("Failed to hash password during registration", slog.Any("error", err))

		return nil, errors.Wrap(err, "failed to hash password during registration")
	}

	var registeredUser *entity.User

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		userRepo := repoFactory.UserRepo()

		// Reject the registration when either identifier is taken.
		_, findErr := userRepo.FindByUsernameOrEmail(ctx, username, email)
		if findErr == nil {
			return errors.Wrap(domainerrors.ErrUserAlreadyExists, "username or email already registered")
		}
		if !errors.Is(findErr, repository.ErrUserNotFound) {
			return errors.Wrap(findErr, "failed to check for existing user")
		}

		newUser := &entity.User{
			Username:  username,
			Email:     email,
			FullName:  fullName,
			AvatarURL: input.AvatarURL,
		}
		if createErr := userRepo.Create(ctx, newUser, passwordHash); createErr != nil {
			if errors.Is(createErr, repository.ErrUserDuplicate) {
				return errors.Wrap(domainerrors.ErrUserAlreadyExists, "username or email already registered")
			}

			return errors.Wrap(createErr, "failed to create user during registration")
		}

		registeredUser = newUser

		return nil
	})
	if err != nil {
		srv.log(ctx).Warn("Registration failed", slog.String("username", username), slog.Any("error", err))

		return nil, err
	}

	srv.log(ctx).Debug("Registration completed", slog.Any("userID", registeredUser.ID))

	return registeredUser, nil
}

// Login orchestrates the login process. The identifier matches either a
// username or an email address.
func (srv *authService) Login(ctx context.Context, input *usecase.LoginInput) (*usecase.AuthOutput, error) {
	identifier := strings.ToLower(strings.TrimSpace(input.Identifier))

	srv.log(ctx).Debug("Starting login", slog.String("identifier", identifier))

	user, err := srv.userRepo.FindByUsernameOrEmail(ctx, identifier, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			srv.log(ctx).Warn("Login failed, unknown identifier", slog.String("identifier", identifier))

			return nil, errors.Wrap(domainerrors.ErrUserNotFound, "no account matches the given identifier")
		}

		return nil, errors.Wrap(err, "failed to find user during login")
	}

	creds, err := srv.userRepo.FindCredentials(ctx, user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load credentials during login")
	}

	// Check password outside transaction (bcrypt is CPU-bound).
	if !srv.hasher.Check(input.Password, creds.PasswordHash) {
		srv.log(ctx).Warn("Login failed, password mismatch", slog.Any("userID", user.ID))

		return nil, errors.Wrap(domainerrors.ErrInvalidCredentials, "login failed")
	}

	pair, err := srv.tokenService.Issue(user.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens during login")
	}

	// A fresh login replaces whatever session existed before.
	if err := srv.sessionRepo.Persist(ctx, user.ID, srv.tokenService.HashToken(pair.RefreshToken)); err != nil {
		return nil, errors.Wrap(err, "failed to persist session during login")
	}

	srv.log(ctx).Debug("User logged in successfully", slog.Any("userID", user.ID))

	return &usecase.AuthOutput{
		User:         user,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair. The stored
// session is rotated with a single conditional write, so a token can be
// redeemed at most once: replayed or superseded tokens observe a mismatch.
func (srv *authService) Refresh(ctx context.Context, input *usecase.RefreshInput) (*usecase.TokenOutput, error) {
	srv.log(ctx).Debug("Attempting to refresh session")

	claims, err := srv.tokenService.Verify(input.RefreshToken, service.TokenKindRefresh)
	if err != nil {
		if errors.Is(err, service.ErrTokenExpired) {
			return nil, errors.Wrap(domainerrors.ErrTokenExpired, "refresh token expired")
		}

		return nil, errors.Wrap(domainerrors.ErrTokenInvalid, "refresh token invalid")
	}

	pair, err := srv.tokenService.Issue(claims.UserID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to issue tokens during refresh")
	}

	presentedHash := srv.tokenService.HashToken(input.RefreshToken)
	newHash := srv.tokenService.HashToken(pair.RefreshToken)

	if err := srv.sessionRepo.Rotate(ctx, claims.UserID, presentedHash, newHash); err != nil {
		if errors.Is(err, repository.ErrSessionMismatch) {
			srv.log(ctx).Warn("Refresh rejected, token does not match stored session", slog.Any("userID", claims.UserID))

			return nil, errors.Wrap(domainerrors.ErrSessionMismatch, "refresh token does not match active session")
		}

		return nil, errors.Wrap(err, "failed to rotate session")
	}

	srv.log(ctx).Debug("Session refreshed", slog.Any("userID", claims.UserID))

	return &usecase.TokenOutput{
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	}, nil
}

// Logout invalidates the user's session. Logging out twice is not an error.
func (srv *authService) Logout(ctx context.Context, userID uuid.UUID) error {
	srv.log(ctx).Info("Attempting to log out", slog.Any("userID", userID))

	if err := srv.sessionRepo.Invalidate(ctx, userID); err != nil {
		srv.log(ctx).Error("Failed to invalidate session", slog.Any("userID", userID), slog.Any("error", err))

		return errors.Wrap(err, "failed to invalidate session")
	}

	return nil
}

// ChangePassword verifies the old password, stores the new hash and
// invalidates the current session so every device has to log in again.
func (srv *authService) ChangePassword(ctx context.Context, input *usecase.ChangePasswordInput) error {
	srv.log(ctx).Info("Attempting to change password", slog.Any("userID", input.UserID))

	creds, err := srv.userRepo.FindCredentials(ctx, input.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return errors.Wrap(domainerrors.ErrUserNotFound, "user not found")
		}

		return errors.Wrap(err, "failed to load credentials for password change")
	}

	// Both bcrypt operations run outside the transaction (CPU-bound).
	if !srv.hasher.Check(input.OldPassword, creds.PasswordHash) {
		srv.log(ctx).Warn("Password change rejected, old password mismatch", slog.Any("userID", input.UserID))

		return errors.Wrap(domainerrors.ErrInvalidCredentials, "old password is incorrect")
	}

	newHash, err := srv.hasher.Hash(input.NewPassword)
	if err != nil {
		return errors.Wrap(err, "failed to hash new password")
	}

	err = srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if updateErr := repoFactory.UserRepo().UpdatePasswordHash(ctx, input.UserID, newHash); updateErr != nil {
			return errors.Wrap(updateErr, "failed to update password hash")
		}

		// Force re-authentication everywhere after a password change.
		if invalidateErr := repoFactory.SessionRepo().Invalidate(ctx, input.UserID); invalidateErr != nil {
			return errors.Wrap(invalidateErr, "failed to invalidate session after password change")
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to execute password change transaction", slog.Any("userID", input.UserID), slog.Any("error", err))

		return err
	}

	srv.log(ctx).Info("Password changed", slog.Any("userID", input.UserID))

	return nil
}
