// Package postgres contains the concrete implementation of the persistence layer using GORM and PostgreSQL.
package postgres

import (
	"context"

	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// userRepository implements the repository.UserRepository interface using GORM.
type userRepository struct {
	db *gorm.DB
}

// NewUserRepository is the constructor for userRepository.
// It returns the repository as a repository.UserRepository interface, adhering to dependency inversion.
func NewUserRepository(db *gorm.DB) repository.UserRepository {
	return &userRepository{db: db}
}

// Create persists a new user together with its already-hashed password.
func (repo *userRepository) Create(ctx context.Context, user *entity.User, passwordHash string) error {
	userM := fromUserDomain(user)
	userM.PasswordHash = passwordHash

	if err := repo.db.WithContext(ctx).Create(userM).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrUserDuplicate
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.NewDatabaseExecuteError(err, "missing required user information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create user")
	}

	// Propagate the generated ID and timestamps back to the entity.
	user.ID = userM.ID
	user.CreatedAt = userM.CreatedAt
	user.UpdatedAt = userM.UpdatedAt

	return nil
}

// FindByID retrieves a single user by their unique ID.
func (repo *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("id = ?", id).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by id")
	}

	return toUserDomain(&userM), nil
}

// FindByUsernameOrEmail retrieves the user matching either identifier.
func (repo *userRepository) FindByUsernameOrEmail(ctx context.Context, username, email string) (*entity.User, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Where("username = ? OR email = ?", username, email).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find user by username or email")
	}

	return toUserDomain(&userM), nil
}

// FindCredentials retrieves the secret material for a user.
func (repo *userRepository) FindCredentials(ctx context.Context, userID uuid.UUID) (*entity.Credentials, error) {
	var userM model.UserModel
	if err := repo.db.WithContext(ctx).
		Select("id", "password_hash", "refresh_token_hash").
		Where("id = ?", userID).
		First(&userM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrUserNotFound
		}

		return nil, errors.Wrap(err, "failed to find credentials")
	}

	creds := &entity.Credentials{
		UserID:       userM.ID,
		PasswordHash: userM.PasswordHash,
	}
	if userM.RefreshTokenHash != nil {
		creds.RefreshTokenHash = *userM.RefreshTokenHash
	}

	return creds, nil
}

// UpdatePasswordHash replaces the stored password hash. The hash is computed
// by the caller exactly once per password change; no other update path
// touches this column.
func (repo *userRepository) UpdatePasswordHash(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("password_hash", passwordHash)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update password hash")
	}
	if result.RowsAffected == 0 {
		return repository.ErrUserNotFound
	}

	return nil
}

// UpdateAccount replaces the mutable account fields and returns the updated user.
func (repo *userRepository) UpdateAccount(ctx context.Context, userID uuid.UUID, fullName, email string) (*entity.User, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Updates(map[string]any{"full_name": fullName, "email": email})
	if result.Error != nil {
		if isUniqueConstraintViolation(result.Error) {
			return nil, repository.ErrUserDuplicate
		}

		return nil, errors.Wrap(result.Error, "failed to update account details")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrUserNotFound
	}

	return repo.FindByID(ctx, userID)
}

// UpdateAvatar replaces the avatar URL and returns the updated user.
func (repo *userRepository) UpdateAvatar(ctx context.Context, userID uuid.UUID, avatarURL string) (*entity.User, error) {
	result := repo.db.WithContext(ctx).
		Model(&model.UserModel{}).
		Where("id = ?", userID).
		Update("avatar_url", avatarURL)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to update avatar")
	}
	if result.RowsAffected == 0 {
		return nil, repository.ErrUserNotFound
	}

	return repo.FindByID(ctx, userID)
}

// AddSavedProduct adds a product to the user's saved content.
func (repo *userRepository) AddSavedProduct(ctx context.Context, userID, productID uuid.UUID) error {
	saved := &model.SavedProductModel{UserID: userID, ProductID: productID}
	if err := repo.db.WithContext(ctx).Create(saved).Error; err != nil {
		if isUniqueConstraintViolation(err) {
			return repository.ErrProductAlreadySaved
		}
		if isForeignKeyConstraintViolation(err) {
			return repository.ErrUserNotFound
		}

		return errors.Wrap(err, "failed to save product")
	}

	return nil
}

// RemoveSavedProduct removes a product from the user's saved content.
func (repo *userRepository) RemoveSavedProduct(ctx context.Context, userID, productID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND product_id = ?", userID, productID).
		Delete(&model.SavedProductModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to remove saved product")
	}
	if result.RowsAffected == 0 {
		return repository.ErrProductNotSaved
	}

	return nil
}

// ListSavedProductIDs returns the ids of the user's saved products, newest first.
func (repo *userRepository) ListSavedProductIDs(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	var saved []model.SavedProductModel
	if err := repo.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&saved).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list saved products")
	}

	ids := make([]uuid.UUID, 0, len(saved))
	for _, s := range saved {
		ids = append(ids, s.ProductID)
	}

	return ids, nil
}

// --- Mapper Functions ---
// These helpers convert between domain entities and persistence models.
// The mapping back to the domain never exposes PasswordHash or RefreshTokenHash.

// toUserDomain converts a GORM UserModel to a domain User entity.
func toUserDomain(data *model.UserModel) *entity.User {
	if data == nil {
		return nil
	}

	return &entity.User{
		ID:        data.ID,
		Username:  data.Username,
		Email:     data.Email,
		FullName:  data.FullName,
		AvatarURL: data.AvatarURL,
		CreatedAt: data.CreatedAt,
		UpdatedAt: data.UpdatedAt,
	}
}

// fromUserDomain converts a domain User entity to a GORM UserModel for persistence.
func fromUserDomain(data *entity.User) *model.UserModel {
	if data == nil {
		return nil
	}

	return &model.UserModel{
		ID:        data.ID,
		Username:  data.Username,
		Email:     data.Email,
		FullName:  data.FullName,
		AvatarURL: data.AvatarURL,
	}
}
