// Package model contains the GORM persistence models mirroring the database schema.
package model

import (
	"time"

	"github.com/google/uuid"
)

// UserModel mirrors the 'users' table. PostgreSQL generates UUIDs via uuid_generate_v7().
// PasswordHash and RefreshTokenHash never leave the persistence/auth layers;
// RefreshTokenHash is NULL while the user has no active session.
type UserModel struct {
	ID               uuid.UUID `gorm:"type:uuid;primary_key;default:uuid_generate_v7()"`
	Username         string    `gorm:"type:varchar(100);unique;not null"`
	Email            string    `gorm:"type:varchar(255);unique;not null"`
	FullName         string    `gorm:"type:varchar(100);not null"`
	AvatarURL        string    `gorm:"type:varchar(512);not null"`
	PasswordHash     string    `gorm:"type:varchar(255);not null"`
	RefreshTokenHash *string   `gorm:"type:varchar(64)"`
	CreatedAt        time.Time
	UpdatedAt        time.Time

	SavedProducts []SavedProductModel `gorm:"foreignKey:UserID"`
}

// TableName explicitly sets the table name for GORM.
func (UserModel) TableName() string {
	return "users"
}

// SavedProductModel mirrors the 'saved_products' join table. The composite
// primary key makes a duplicate save a unique-constraint violation.
type SavedProductModel struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	ProductID uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}

// TableName explicitly sets the table name for GORM.
func (SavedProductModel) TableName() string {
	return "saved_products"
}
