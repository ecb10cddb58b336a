package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

const refreshTokenCookie = "refreshToken"
const accessTokenCookie = "accessToken"

// setAuthCookies stores both tokens as httpOnly, secure cookies. The cookie
// lifetimes follow the token TTLs, so an expired cookie and an expired token
// go away together.
func (h *UserHandler) setAuthCookies(c echo.Context, accessToken, refreshToken string) {
	c.SetCookie(&http.Cookie{
		Name:     accessTokenCookie,
		Value:    accessToken,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.AccessTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
	c.SetCookie(&http.Cookie{
		Name:     refreshTokenCookie,
		Value:    refreshToken,
		Path:     "/",
		MaxAge:   int(h.tokenSvc.RefreshTTL().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteStrictMode,
	})
}

// clearAuthCookies removes both cookies regardless of their current state.
func (h *UserHandler) clearAuthCookies(c echo.Context) {
	for _, name := range []string{accessTokenCookie, refreshTokenCookie} {
		c.SetCookie(&http.Cookie{
			Name:     name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   true,
			SameSite: http.SameSiteStrictMode,
		})
	}
}
