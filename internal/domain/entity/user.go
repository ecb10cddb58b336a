// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
)

// User is the public identity record of a marketplace account. It carries
// everything a caller outside the auth subsystem is allowed to see; the
// password hash and the current refresh token hash live in Credentials and
// never leave the subsystem.
type User struct {
	ID        uuid.UUID // The Global Unique Identifier for the user.
	Username  string    // Unique handle, stored lowercase.
	Email     string    // Unique contact email, usable as a login identifier.
	FullName  string    // The user's display name.
	AvatarURL string    // URL of the externally hosted avatar image.
	CreatedAt time.Time // Timestamp of when this account was created.
	UpdatedAt time.Time // Timestamp of the last modification to this account.
}

// Credentials holds the secret material of an account. A user has exactly one
// credentials record; RefreshTokenHash is empty while no session is active.
type Credentials struct {
	UserID           uuid.UUID // Links the credentials to the User they belong to.
	PasswordHash     string    // bcrypt hash of the password, never the plaintext.
	RefreshTokenHash string    // SHA-256 hash of the single currently valid refresh token.
}
