// Package router contains routing and server setup for the HTTP delivery.
package router

import (
	"bazaar/internal/delivery/http/middleware"
	"bazaar/internal/delivery/http/router/handler"

	"github.com/labstack/echo/v4"
	"go.uber.org/fx"
)

type RouterParams struct {
	fx.In

	UserHandler         *handler.UserHandler
	AuthMiddleware      *middleware.AuthMiddleware
	RequestIDMiddleware *middleware.RequestIDMiddleware
	LoggerMiddleware    *middleware.LoggerMiddleware
}

// router holds all the handlers that need to be registered.
type router struct {
	userHandler         *handler.UserHandler
	authMiddleware      *middleware.AuthMiddleware
	requestIDMiddleware *middleware.RequestIDMiddleware
	loggerMiddleware    *middleware.LoggerMiddleware
}

// NewRouter is the constructor for the Router.
// Fx will inject the required handlers here.
func NewRouter(params RouterParams) *router {
	return &router{
		userHandler:         params.UserHandler,
		authMiddleware:      params.AuthMiddleware,
		requestIDMiddleware: params.RequestIDMiddleware,
		loggerMiddleware:    params.LoggerMiddleware,
	}
}

// RegisterRoutes sets up all the API routes for the application.
func (r *router) RegisterRoutes(e *echo.Echo) {
	e.Use(r.requestIDMiddleware.Process)
	e.Use(r.loggerMiddleware.Handle)

	// Health check endpoint
	e.GET("/health", handler.HealthCheck)

	users := e.Group("/users")
	{
		// Public session endpoints
		users.POST("/register", r.userHandler.Register)
		users.POST("/login", r.userHandler.Login)
		users.POST("/refresh-token", r.userHandler.Refresh)

		// Endpoints that require a resolved identity
		authed := users.Group("")
		authed.Use(r.authMiddleware.Authenticate)
		{
			authed.POST("/logout", r.userHandler.Logout)
			authed.POST("/change-password", r.userHandler.ChangePassword)
			authed.GET("/current-user", r.userHandler.CurrentUser)
			authed.PATCH("/update-account", r.userHandler.UpdateAccount)
			authed.PATCH("/avatar", r.userHandler.UpdateAvatar)
			authed.POST("/save-product-to-saved-content", r.userHandler.SaveProduct)
			authed.DELETE("/remove-product", r.userHandler.RemoveProduct)
			authed.GET("/saved-products", r.userHandler.SavedProducts)
		}
	}
}
