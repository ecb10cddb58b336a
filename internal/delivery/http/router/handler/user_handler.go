// Package handler contains the HTTP handlers for the application.
package handler

import (
	"log/slog"
	"net/http"
	"time"

	"bazaar/internal/delivery/http/middleware"
	"bazaar/internal/delivery/http/response"
	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/service"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// UserHandler holds dependencies for the /users endpoints.
type UserHandler struct {
	authUC    usecase.AuthUsecase
	accountUC usecase.AccountUsecase
	tokenSvc  service.TokenService
	logger    *slog.Logger
}

// NewUserHandler is the constructor for UserHandler, injected by Fx.
func NewUserHandler(authUC usecase.AuthUsecase, accountUC usecase.AccountUsecase, tokenSvc service.TokenService, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		authUC:    authUC,
		accountUC: accountUC,
		tokenSvc:  tokenSvc,
		logger:    logger,
	}
}

// --- Request DTOs ---

type registerRequest struct {
	Username string `json:"username" validate:"required,min=3,max=30"`
	Email    string `json:"email" validate:"required,email"`
	FullName string `json:"fullName" validate:"required"`
	Password string `json:"password" validate:"required,min=8"`
	Avatar   string `json:"avatar" validate:"required,url"`
}

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password" validate:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword     string `json:"oldPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required"`
}

type updateAccountRequest struct {
	FullName string `json:"fullName" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
}

type updateAvatarRequest struct {
	Avatar string `json:"avatar" validate:"required,url"`
}

type savedProductRequest struct {
	ProductID string `json:"productId" validate:"required,uuid"`
}

// --- Response DTOs ---

type userResponse struct {
	ID        uuid.UUID `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	FullName  string    `json:"fullName"`
	Avatar    string    `json:"avatar,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type loginResponse struct {
	User         *userResponse `json:"user"`
	AccessToken  string        `json:"accessToken"`
	RefreshToken string        `json:"refreshToken"`
}

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type sellerResponse struct {
	ID       uuid.UUID `json:"id"`
	Username string    `json:"username"`
	FullName string    `json:"fullName"`
	Avatar   string    `json:"avatar,omitempty"`
}

type productResponse struct {
	ID          uuid.UUID       `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Price       float64         `json:"price"`
	Images      []string        `json:"images"`
	Seller      *sellerResponse `json:"seller,omitempty"`
	IsSold      bool            `json:"isSold"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func toUserResponse(user *entity.User) *userResponse {
	return &userResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		FullName:  user.FullName,
		Avatar:    user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func toProductResponse(product *entity.Product) *productResponse {
	resp := &productResponse{
		ID:          product.ID,
		Title:       product.Title,
		Description: product.Description,
		Price:       product.Price,
		Images:      product.Images,
		IsSold:      product.IsSold,
		CreatedAt:   product.CreatedAt,
	}
	if product.Seller != nil {
		resp.Seller = &sellerResponse{
			ID:       product.Seller.ID,
			Username: product.Seller.Username,
			FullName: product.Seller.FullName,
			Avatar:   product.Seller.AvatarURL,
		}
	}

	return resp
}

// --- Handlers ---

// Register handles the account registration request.
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid registration input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.authUC.Register(c.Request().Context(), &usecase.RegisterInput{
		Username:  req.Username,
		Email:     req.Email,
		FullName:  req.FullName,
		Password:  req.Password,
		AvatarURL: req.Avatar,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toUserResponse(user), "User registered successfully")
}

// Login handles the login request and sets the auth cookies.
func (h *UserHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid login input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	identifier := req.Username
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		return errors.Wrap(domainerrors.ErrValidationFailed, "username or email is required")
	}

	output, err := h.authUC.Login(c.Request().Context(), &usecase.LoginInput{
		Identifier: identifier,
		Password:   req.Password,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, loginResponse{
		User:         toUserResponse(output.User),
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Login successful")
}

// Logout invalidates the session and clears both cookies unconditionally.
func (h *UserHandler) Logout(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	// The cookies die first, so they are gone even when the store write fails.
	h.clearAuthCookies(c)

	if err := h.authUC.Logout(c.Request().Context(), userID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Logout successful")
}

// Refresh exchanges the presented refresh token for a new pair and sets the
// new cookies. The token comes from the cookie or, failing that, the body.
func (h *UserHandler) Refresh(c echo.Context) error {
	refreshToken := ""
	if cookie, err := c.Cookie(refreshTokenCookie); err == nil && cookie.Value != "" {
		refreshToken = cookie.Value
	}
	if refreshToken == "" {
		var req refreshRequest
		if err := c.Bind(&req); err == nil {
			refreshToken = req.RefreshToken
		}
	}
	if refreshToken == "" {
		return errors.Wrap(domainerrors.ErrMissingToken, "no refresh token in cookie or body")
	}

	output, err := h.authUC.Refresh(c.Request().Context(), &usecase.RefreshInput{RefreshToken: refreshToken})
	if err != nil {
		return errors.WithStack(err)
	}

	h.setAuthCookies(c, output.AccessToken, output.RefreshToken)

	return response.Success(c, http.StatusOK, tokenResponse{
		AccessToken:  output.AccessToken,
		RefreshToken: output.RefreshToken,
	}, "Token refreshed successfully")
}

// ChangePassword verifies the old password and replaces it. The session is
// invalidated as part of the change, so the cookies are cleared as well.
func (h *UserHandler) ChangePassword(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req changePasswordRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid change password input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}
	if req.NewPassword != req.ConfirmPassword {
		return errors.Wrap(domainerrors.ErrValidationFailed, "new password and confirmation do not match")
	}

	if err := h.authUC.ChangePassword(c.Request().Context(), &usecase.ChangePasswordInput{
		UserID:      userID,
		OldPassword: req.OldPassword,
		NewPassword: req.NewPassword,
	}); err != nil {
		return errors.WithStack(err)
	}

	h.clearAuthCookies(c)

	return response.Success(c, http.StatusOK, nil, "Password changed successfully")
}

// CurrentUser returns the profile resolved by the auth middleware.
func (h *UserHandler) CurrentUser(c echo.Context) error {
	user, ok := c.Get(middleware.ContextKeyCurrentUser).(*entity.User)
	if !ok {
		return errors.Wrap(domainerrors.ErrTokenInvalid, "no resolved user on context")
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "Current user retrieved successfully")
}

// UpdateAccount changes the mutable account details.
func (h *UserHandler) UpdateAccount(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateAccountRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid account update input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.accountUC.UpdateAccount(c.Request().Context(), &usecase.UpdateAccountInput{
		UserID:   userID,
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "Account updated successfully")
}

// UpdateAvatar stores the externally uploaded avatar URL.
func (h *UserHandler) UpdateAvatar(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req updateAvatarRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid avatar input")
	}
	if err := c.Validate(&req); err != nil {
		return errors.WithStack(err)
	}

	user, err := h.accountUC.UpdateAvatar(c.Request().Context(), &usecase.UpdateAvatarInput{
		UserID:    userID,
		AvatarURL: req.Avatar,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toUserResponse(user), "Avatar updated successfully")
}

// SaveProduct adds a product to the caller's saved content.
func (h *UserHandler) SaveProduct(c echo.Context) error {
	userID, productID, err := h.bindSavedProduct(c)
	if err != nil {
		return err
	}

	if err := h.accountUC.SaveProduct(c.Request().Context(), &usecase.SavedProductInput{
		UserID:    userID,
		ProductID: productID,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Product saved successfully")
}

// RemoveProduct removes a product from the caller's saved content.
func (h *UserHandler) RemoveProduct(c echo.Context) error {
	userID, productID, err := h.bindSavedProduct(c)
	if err != nil {
		return err
	}

	if err := h.accountUC.RemoveSavedProduct(c.Request().Context(), &usecase.SavedProductInput{
		UserID:    userID,
		ProductID: productID,
	}); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Product removed successfully")
}

// SavedProducts returns the caller's saved products, newest first.
func (h *UserHandler) SavedProducts(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	products, err := h.accountUC.SavedProducts(c.Request().Context(), userID)
	if err != nil {
		return errors.WithStack(err)
	}

	items := make([]*productResponse, 0, len(products))
	for _, p := range products {
		items = append(items, toProductResponse(p))
	}

	return response.Success(c, http.StatusOK, items, "Saved products retrieved successfully")
}

func (h *UserHandler) bindSavedProduct(c echo.Context) (uuid.UUID, uuid.UUID, error) {
	userID, err := currentUserID(c)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}

	var req savedProductRequest
	if err := c.Bind(&req); err != nil {
		return uuid.Nil, uuid.Nil, errors.Wrap(domainerrors.ErrValidationFailed, "invalid saved product input")
	}
	if err := c.Validate(&req); err != nil {
		return uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.Wrap(domainerrors.ErrValidationFailed, "product id is not a valid uuid")
	}

	return userID, productID, nil
}

// currentUserID reads the caller identity placed on the context by the auth middleware.
func currentUserID(c echo.Context) (uuid.UUID, error) {
	userID, ok := c.Get(middleware.ContextKeyUserID).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.Wrap(domainerrors.ErrTokenInvalid, "no resolved user id on context")
	}

	return userID, nil
}

// HealthCheck is a simple handler to check if the service is up.
func HealthCheck(c echo.Context) error {
	return response.Success(c, http.StatusOK, map[string]string{"status": "ok"}, "Service is healthy")
}
