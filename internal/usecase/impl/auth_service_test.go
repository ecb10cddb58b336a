package impl

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"bazaar/internal/delivery/http/middleware"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/domain/repository"
	"bazaar/internal/domain/service"
	"bazaar/internal/infra/auth"
	"bazaar/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// authServiceFixtures holds all test dependencies for auth service tests.
type authServiceFixtures struct {
	service     usecase.AuthUsecase
	userRepo    *fakeUserRepo
	sessionRepo *fakeSessionRepo
	hasher      service.PasswordHasher
	tokenSvc    service.TokenService
}

func createTestAuthService(t *testing.T) authServiceFixtures {
	t.Helper()

	cfg := newTestConfig()
	userRepo := newFakeUserRepo()
	sessionRepo := newFakeSessionRepo()
	hasher := auth.NewBcryptHasher(cfg)
	tokenSvc, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	svc := NewAuthService(AuthServiceParams{
		TxManager:    &fakeTxManager{factory: &fakeRepoFactory{userRepo: userRepo, sessionRepo: sessionRepo}},
		UserRepo:     userRepo,
		SessionRepo:  sessionRepo,
		Hasher:       hasher,
		TokenService: tokenSvc,
		Logger:       newDiscardLogger(),
	})

	return authServiceFixtures{
		service:     svc,
		userRepo:    userRepo,
		sessionRepo: sessionRepo,
		hasher:      hasher,
		tokenSvc:    tokenSvc,
	}
}

func registerAlice(t *testing.T, fx authServiceFixtures) *usecase.AuthOutput {
	t.Helper()

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username:  "Alice",
		Email:     "alice@example.com",
		FullName:  "Alice Smith",
		Password:  "p@ssword1",
		AvatarURL: "https://cdn.example.com/alice.png",
	})
	require.NoError(t, err)

	output, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "alice",
		Password:   "p@ssword1",
	})
	require.NoError(t, err)

	return output
}

func TestAuthService_Register_NeverStoresPlaintext(t *testing.T) {
	fx := createTestAuthService(t)

	user, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username:  "Alice",
		Email:     "Alice@Example.com",
		FullName:  "Alice Smith",
		Password:  "p@ssword1",
		AvatarURL: "https://cdn.example.com/alice.png",
	})
	require.NoError(t, err)

	// Identifiers are normalized to lowercase.
	assert.Equal(t, "alice", user.Username)
	assert.Equal(t, "alice@example.com", user.Email)

	creds, err := fx.userRepo.FindCredentials(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotEqual(t, "p@ssword1", creds.PasswordHash)
	assert.True(t, fx.hasher.Check("p@ssword1", creds.PasswordHash))
	assert.False(t, fx.hasher.Check("p@ssword2", creds.PasswordHash))
}

func TestAuthService_Register_DuplicateConflicts(t *testing.T) {
	fx := createTestAuthService(t)
	registerAlice(t, fx)

	_, err := fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username:  "alice",
		Email:     "other@example.com",
		FullName:  "Other Alice",
		Password:  "different1",
		AvatarURL: "https://cdn.example.com/other.png",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)

	_, err = fx.service.Register(context.Background(), &usecase.RegisterInput{
		Username:  "alice2",
		Email:     "alice@example.com",
		FullName:  "Second Alice",
		Password:  "different1",
		AvatarURL: "https://cdn.example.com/second.png",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAuthService_Register_RejectsBlankFields(t *testing.T) {
	fx := createTestAuthService(t)

	valid := usecase.RegisterInput{
		Username:  "blank",
		Email:     "blank@example.com",
		FullName:  "Blank User",
		Password:  "p@ssword1",
		AvatarURL: "https://cdn.example.com/blank.png",
	}

	cases := map[string]func(*usecase.RegisterInput){
		"whitespace username":  func(in *usecase.RegisterInput) { in.Username = "   " },
		"whitespace email":     func(in *usecase.RegisterInput) { in.Email = " \t " },
		"whitespace full name": func(in *usecase.RegisterInput) { in.FullName = "  " },
		"whitespace password":  func(in *usecase.RegisterInput) { in.Password = "        " },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			input := valid
			mutate(&input)

			_, err := fx.service.Register(context.Background(), &input)
			assert.ErrorIs(t, err, domainerrors.ErrValidationFailed)
		})
	}

	// None of the rejected inputs left an account behind.
	_, err := fx.userRepo.FindByUsernameOrEmail(context.Background(), "", "blank@example.com")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}

func TestAuthService_Login_UnknownUser(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "nobody",
		Password:   "whatever1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	fx := createTestAuthService(t)
	registerAlice(t, fx)

	_, err := fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "alice",
		Password:   "wrong-password",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)
}

func TestAuthService_Login_PersistsSession(t *testing.T) {
	fx := createTestAuthService(t)
	output := registerAlice(t, fx)

	claims, err := fx.tokenSvc.Verify(output.RefreshToken, service.TokenKindRefresh)
	require.NoError(t, err)

	stored, ok := fx.sessionRepo.current(claims.UserID)
	require.True(t, ok)
	assert.Equal(t, fx.tokenSvc.HashToken(output.RefreshToken), stored)

	// Access token verifies with the access kind only.
	_, err = fx.tokenSvc.Verify(output.AccessToken, service.TokenKindAccess)
	assert.NoError(t, err)
	_, err = fx.tokenSvc.Verify(output.AccessToken, service.TokenKindRefresh)
	assert.ErrorIs(t, err, service.ErrTokenInvalid)
}

func TestAuthService_Refresh_RotatesPair(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	rotated, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, login.AccessToken, rotated.AccessToken)
	assert.NotEqual(t, login.RefreshToken, rotated.RefreshToken)

	// The stale token was rotated away; replaying it must fail even though
	// its signature and expiry are still valid.
	_, err = fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionMismatch)

	// The fresh token still works.
	_, err = fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: rotated.RefreshToken,
	})
	assert.NoError(t, err)
}

func TestAuthService_Refresh_MalformedToken(t *testing.T) {
	fx := createTestAuthService(t)

	_, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: "not-a-jwt",
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestAuthService_Refresh_RejectsAccessToken(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	// An access token is signed with the other secret and kind; it must not
	// pass as a refresh token.
	_, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.AccessToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrTokenInvalid)
}

func TestAuthService_Refresh_ConcurrentExactlyOneWins(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	const attempts = 2
	results := make([]error, attempts)
	var wg sync.WaitGroup
	wg.Add(attempts)
	for i := range attempts {
		go func() {
			defer wg.Done()
			_, results[i] = fx.service.Refresh(context.Background(), &usecase.RefreshInput{
				RefreshToken: login.RefreshToken,
			})
		}()
	}
	wg.Wait()

	var wins, mismatches int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errors.Is(err, domainerrors.ErrSessionMismatch):
			mismatches++
		default:
			t.Fatalf("unexpected refresh error: %v", err)
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, mismatches)
}

func TestAuthService_Logout_Idempotent(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	claims, err := fx.tokenSvc.Verify(login.RefreshToken, service.TokenKindRefresh)
	require.NoError(t, err)

	require.NoError(t, fx.service.Logout(context.Background(), claims.UserID))
	require.NoError(t, fx.service.Logout(context.Background(), claims.UserID))

	// The refresh token survives cryptographically but the session is gone.
	_, err = fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionMismatch)
}

func TestAuthService_Logout_AccessTokenStaysValidUntilTTL(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	require.NoError(t, fx.service.Logout(context.Background(), login.User.ID))

	// Logout only drops the stored refresh hash. The gate checks signature,
	// kind and the user record, so the already-issued access token keeps
	// opening protected endpoints until its TTL runs out.
	e := echo.New()
	authMW := middleware.NewAuthMiddleware(fx.tokenSvc, fx.userRepo)
	e.GET("/protected", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, authMW.Authenticate)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set(echo.HeaderAuthorization, "Bearer "+login.AccessToken)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	// The refresh path is dead from the same moment.
	_, err := fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionMismatch)
}

func TestAuthService_ChangePassword_WrongOldLeavesHashUnchanged(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	before, err := fx.userRepo.FindCredentials(context.Background(), login.User.ID)
	require.NoError(t, err)

	err = fx.service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:      login.User.ID,
		OldPassword: "wrong-password",
		NewPassword: "brand-new-1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	after, err := fx.userRepo.FindCredentials(context.Background(), login.User.ID)
	require.NoError(t, err)
	assert.Equal(t, before.PasswordHash, after.PasswordHash)
}

func TestAuthService_ChangePassword_InvalidatesSession(t *testing.T) {
	fx := createTestAuthService(t)
	login := registerAlice(t, fx)

	err := fx.service.ChangePassword(context.Background(), &usecase.ChangePasswordInput{
		UserID:      login.User.ID,
		OldPassword: "p@ssword1",
		NewPassword: "brand-new-1",
	})
	require.NoError(t, err)

	// Old password no longer works, the new one does.
	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "alice",
		Password:   "p@ssword1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrInvalidCredentials)

	// The pre-change refresh token is dead.
	_, err = fx.service.Refresh(context.Background(), &usecase.RefreshInput{
		RefreshToken: login.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrSessionMismatch)

	_, err = fx.service.Login(context.Background(), &usecase.LoginInput{
		Identifier: "alice",
		Password:   "brand-new-1",
	})
	assert.NoError(t, err)
}

var _ repository.UserRepository = (*fakeUserRepo)(nil)
var _ repository.SessionRepository = (*fakeSessionRepo)(nil)
var _ repository.ProductRepository = (*fakeProductRepo)(nil)
var _ repository.TransactionManager = (*fakeTxManager)(nil)
