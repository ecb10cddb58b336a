package middleware

import (
	"strings"

	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

const (
	// AccessTokenCookie is the cookie carrying the access token.
	AccessTokenCookie = "accessToken"

	// ContextKeyUserID is the echo.Context key holding the caller's uuid.UUID.
	ContextKeyUserID = "userID"

	// ContextKeyCurrentUser is the echo.Context key holding the resolved *entity.User.
	ContextKeyCurrentUser = "currentUser"
)

// AuthMiddleware resolves the caller identity from the access token before
// any protected handler runs. It never mutates session state.
type AuthMiddleware struct {
	tokenSvc service.TokenService
	userRepo repository.UserRepository
}

// NewAuthMiddleware is the constructor for AuthMiddleware.
func NewAuthMiddleware(tokenSvc service.TokenService, userRepo repository.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{tokenSvc: tokenSvc, userRepo: userRepo}
}

// Authenticate validates the access token from the cookie or the
// Authorization header and attaches the resolved identity to the context.
// The 401 reasons stay distinguishable: missing token, invalid token,
// expired token, and a token whose user no longer exists.
func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		tokenString := extractAccessToken(c)
		if tokenString == "" {
			return errors.Wrap(domainerrors.ErrMissingToken, "no access token in cookie or Authorization header")
		}

		claims, err := m.tokenSvc.Verify(tokenString, service.TokenKindAccess)
		if err != nil {
			if errors.Is(err, service.ErrTokenExpired) {
				return errors.Wrap(domainerrors.ErrTokenExpired, "access token expired")
			}

			return errors.Wrap(domainerrors.ErrTokenInvalid, "access token invalid")
		}

		// The lookup excludes credential material, so handlers only ever see
		// the public profile.
		user, err := m.userRepo.FindByID(c.Request().Context(), claims.UserID)
		if err != nil {
			if errors.Is(err, repository.ErrUserNotFound) {
				return errors.Wrap(domainerrors.ErrTokenInvalid, "user for access token no longer exists")
			}

			return errors.Wrap(err, "failed to resolve user for access token")
		}

		c.Set(ContextKeyUserID, user.ID)
		c.Set(ContextKeyCurrentUser, user)

		return next(c)
	}
}

// extractAccessToken prefers the cookie and falls back to a Bearer header.
func extractAccessToken(c echo.Context) string {
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return ""
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenString == authHeader {
		return ""
	}

	return tokenString
}
