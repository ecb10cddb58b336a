package entity

import (
	"time"

	"github.com/google/uuid"
)

// Product is the marketplace listing referenced by a user's saved content.
// Listing management itself lives outside this service; the entity carries the
// summary fields needed to hydrate a saved-products response.
type Product struct {
	ID          uuid.UUID
	Title       string
	Description string
	Price       float64
	Images      []string
	Seller      *Seller   // Seller summary, nil when the seller account is gone.
	IsSold      bool
	CreatedAt   time.Time
}

// Seller is the public summary of the user offering a product.
type Seller struct {
	ID        uuid.UUID
	Username  string
	FullName  string
	AvatarURL string
}
