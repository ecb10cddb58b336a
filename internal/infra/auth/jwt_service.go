package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"bazaar/config"
	"bazaar/internal/domain/service"
	"bazaar/internal/errors"
)

const (
	defaultAccessTTL  = 15 * time.Minute
	defaultRefreshTTL = 7 * 24 * time.Hour
)

// jwtService is a concrete implementation of the TokenService interface using the JWT standard.
// Access and refresh tokens are signed with distinct secrets and distinct TTLs
// so a leak of one secret cannot be used to mint the other kind.
type jwtService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessTTL     time.Duration
	refreshTTL    time.Duration
}

// NewJWTService is the constructor for jwtService. Secrets and TTLs come from
// explicit configuration, never from ambient process state.
func NewJWTService(cfg *config.Config) (service.TokenService, error) {
	if cfg.SecretKey.Access == "" || cfg.SecretKey.Refresh == "" {
		return nil, errors.New("jwt secrets must be provided")
	}
	if cfg.SecretKey.Access == cfg.SecretKey.Refresh {
		return nil, errors.New("access and refresh secrets must differ")
	}

	accessTTL := cfg.Token.AccessTTL
	if accessTTL == 0 {
		accessTTL = defaultAccessTTL
	}
	refreshTTL := cfg.Token.RefreshTTL
	if refreshTTL == 0 {
		refreshTTL = defaultRefreshTTL
	}

	return &jwtService{
		accessSecret:  []byte(cfg.SecretKey.Access),
		refreshSecret: []byte(cfg.SecretKey.Refresh),
		accessTTL:     accessTTL,
		refreshTTL:    refreshTTL,
	}, nil
}

// Issue creates a new access/refresh pair for the given user.
func (s *jwtService) Issue(userID uuid.UUID) (*service.TokenPair, error) {
	accessToken, err := s.sign(userID, service.TokenKindAccess, s.accessTTL, s.accessSecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign access token")
	}

	refreshToken, err := s.sign(userID, service.TokenKindRefresh, s.refreshTTL, s.refreshSecret)
	if err != nil {
		return nil, errors.Wrap(err, "failed to sign refresh token")
	}

	return &service.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// Verify checks a token string against the secret for the given kind.
func (s *jwtService) Verify(tokenString string, kind service.TokenKind) (*service.Claims, error) {
	secret := s.accessSecret
	if kind == service.TokenKindRefresh {
		secret = s.refreshSecret
	}

	claims := new(service.Claims)
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, service.ErrTokenExpired
		}

		return nil, service.ErrTokenInvalid
	}
	if !token.Valid || claims.Kind != kind || claims.UserID == uuid.Nil {
		return nil, service.ErrTokenInvalid
	}

	return claims, nil
}

// HashToken derives the SHA-256 fingerprint stored for a refresh token.
// The raw token never touches the database.
func (s *jwtService) HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))

	return hex.EncodeToString(sum[:])
}

// AccessTTL returns the configured access token lifetime.
func (s *jwtService) AccessTTL() time.Duration {
	return s.accessTTL
}

// RefreshTTL returns the configured refresh token lifetime.
func (s *jwtService) RefreshTTL() time.Duration {
	return s.refreshTTL
}

func (s *jwtService) sign(userID uuid.UUID, kind service.TokenKind, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := &service.Claims{
		UserID: userID,
		Kind:   kind,
		RegisteredClaims: jwt.RegisteredClaims{
			// The jti makes every issued token unique even when two are minted
			// within the same second, so rotation always produces a new pair.
			ID:        uuid.NewString(),
			Subject:   userID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
}
