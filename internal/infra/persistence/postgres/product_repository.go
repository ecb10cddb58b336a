package postgres

import (
	"context"

	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"
	"bazaar/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// productRepository implements the read-only repository.ProductRepository interface.
type productRepository struct {
	db *gorm.DB
}

// NewProductRepository is the constructor for productRepository.
func NewProductRepository(db *gorm.DB) repository.ProductRepository {
	return &productRepository{db: db}
}

// FindByIDs retrieves product summaries with their seller, preserving the
// order of ids. Unknown ids are skipped.
func (repo *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	if len(ids) == 0 {
		return []*entity.Product{}, nil
	}

	var productModels []model.ProductModel
	if err := repo.db.WithContext(ctx).
		Preload("Seller").
		Where("id IN ?", ids).
		Find(&productModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find products by ids")
	}

	byID := make(map[uuid.UUID]*entity.Product, len(productModels))
	for i := range productModels {
		byID[productModels[i].ID] = toProductDomain(&productModels[i])
	}

	products := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := byID[id]; ok {
			products = append(products, p)
		}
	}

	return products, nil
}

// Exists reports whether a product id refers to a known listing.
func (repo *productRepository) Exists(ctx context.Context, id uuid.UUID) (bool, error) {
	var count int64
	if err := repo.db.WithContext(ctx).
		Model(&model.ProductModel{}).
		Where("id = ?", id).
		Count(&count).Error; err != nil {
		return false, errors.Wrap(err, "failed to check product existence")
	}

	return count > 0, nil
}

// toProductDomain converts a GORM ProductModel to a domain Product entity.
func toProductDomain(data *model.ProductModel) *entity.Product {
	if data == nil {
		return nil
	}

	product := &entity.Product{
		ID:          data.ID,
		Title:       data.Title,
		Description: data.Description,
		Price:       data.Price,
		Images:      data.Images,
		IsSold:      data.IsSold,
		CreatedAt:   data.CreatedAt,
	}
	if data.Seller != nil {
		product.Seller = &entity.Seller{
			ID:        data.Seller.ID,
			Username:  data.Seller.Username,
			FullName:  data.Seller.FullName,
			AvatarURL: data.Seller.AvatarURL,
		}
	}

	return product
}
