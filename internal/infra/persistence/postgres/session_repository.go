package postgres

import (
	"context"

	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// sessionRepository implements the repository.SessionRepository interface.
// The session state is the refresh_token_hash column on the users table; the
// rotation path relies on a single conditional UPDATE so the database
// serializes concurrent rotations per user.
type sessionRepository struct {
	db *gorm.DB
}

// NewSessionRepository is the constructor for sessionRepository.
func NewSessionRepository(db *gorm.DB) repository.SessionRepository {
	return &sessionRepository{db: db}
}

// Persist unconditionally overwrites the user's current refresh token hash.
func (repo *sessionRepository) Persist(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", tokenHash)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to persist session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// Rotate replaces the stored hash with newHash only if the stored value still
// equals presentedHash. The compare-and-replace is one conditional UPDATE, so
// of two concurrent rotations starting from the same token exactly one
// affects a row; the other observes zero rows and reports a mismatch.
func (repo *sessionRepository) Rotate(ctx context.Context, userID uuid.UUID, presentedHash, newHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ? AND refresh_token_hash = ?", userID, presentedHash).
		Update("refresh_token_hash", newHash)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to rotate session")
	}
	if result.RowsAffected == 0 {
		return repository.ErrSessionMismatch
	}

	return nil
}

// Invalidate unsets the current refresh token hash. Zero affected rows means
// the session was already empty or the user is gone; both are fine, logout
// is idempotent.
func (repo *sessionRepository) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("refresh_token_hash", nil).Error; err != nil {
		return errors.Wrap(err, "failed to invalidate session")
	}

	return nil
}
