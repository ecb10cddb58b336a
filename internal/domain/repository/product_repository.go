package repository

import (
	"context"

	"bazaar/internal/domain/entity"

	"github.com/google/uuid"
)

// ProductRepository exposes the read side of product listings needed to
// hydrate saved-content responses. Listing management is owned by a separate
// service and is not part of this contract.
type ProductRepository interface {
	// FindByIDs retrieves product summaries with their seller, preserving the
	// order of ids. Unknown ids are skipped.
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]*entity.Product, error)

	// Exists reports whether a product id refers to a known listing.
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
}
