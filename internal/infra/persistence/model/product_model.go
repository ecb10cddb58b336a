package model

import (
	"time"

	"github.com/google/uuid"
)

// ProductModel mirrors the 'products' table owned by the listing service.
// This service only reads it to hydrate saved-content responses.
type ProductModel struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Title       string    `gorm:"type:varchar(255);not null"`
	Description string    `gorm:"type:text;not null"`
	Price       float64   `gorm:"type:numeric(12,2);not null"`
	Images      []string  `gorm:"serializer:json;type:jsonb"`
	SellerID    uuid.UUID `gorm:"type:uuid;not null"`
	IsSold      bool      `gorm:"not null;default:false"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Seller *UserModel `gorm:"foreignKey:SellerID"`
}

// TableName explicitly sets the table name for GORM.
func (ProductModel) TableName() string {
	return "products"
}
