package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenKind distinguishes the two credentials the service signs. Each kind is
// signed with its own secret so a leak of one cannot mint the other.
type TokenKind string

const (
	// TokenKindAccess is the short-lived credential presented on every protected request.
	TokenKindAccess TokenKind = "access"
	// TokenKindRefresh is the long-lived credential exchanged for a new pair.
	TokenKindRefresh TokenKind = "refresh"
)

// Verification failures are distinguishable because callers react differently:
// an expired refresh token forces re-login, an invalid one is treated as tampering.
var (
	// ErrTokenInvalid is returned for malformed tokens, bad signatures and kind mismatches.
	ErrTokenInvalid = errors.New("token is invalid")
	// ErrTokenExpired is returned when the signature is valid but the TTL has passed.
	ErrTokenExpired = errors.New("token has expired")
)

// Claims defines the custom claims carried by both token kinds.
type Claims struct {
	UserID uuid.UUID `json:"uid"`
	Kind   TokenKind `json:"kind"`
	jwt.RegisteredClaims
}

// TokenPair is the transient result of issuing tokens. It is returned to the
// client and never persisted; the store keeps only a hash of the refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// TokenService defines the interface for issuing and verifying signed tokens.
type TokenService interface {
	// Issue creates a new access/refresh pair for the given user.
	Issue(userID uuid.UUID) (*TokenPair, error)

	// Verify checks a token string against the secret for the given kind and
	// returns its claims. Fails with ErrTokenExpired or ErrTokenInvalid.
	Verify(tokenString string, kind TokenKind) (*Claims, error)

	// HashToken derives the durable fingerprint stored for a refresh token.
	HashToken(token string) string

	// AccessTTL returns the configured access token lifetime.
	AccessTTL() time.Duration

	// RefreshTTL returns the configured refresh token lifetime.
	RefreshTTL() time.Duration
}
