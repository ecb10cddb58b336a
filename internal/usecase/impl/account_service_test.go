package impl

import (
	"context"
	"testing"

	"bazaar/internal/domain/entity"
	domainerrors "bazaar/internal/domain/errors"
	"bazaar/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type accountServiceFixtures struct {
	service     usecase.AccountUsecase
	userRepo    *fakeUserRepo
	productRepo *fakeProductRepo
	userID      uuid.UUID
}

func createTestAccountService(t *testing.T, products ...*entity.Product) accountServiceFixtures {
	t.Helper()

	userRepo := newFakeUserRepo()
	productRepo := newFakeProductRepo(products...)

	user := &entity.User{
		Username: "bob",
		Email:    "bob@example.com",
		FullName: "Bob Jones",
	}
	require.NoError(t, userRepo.Create(context.Background(), user, "irrelevant-hash"))

	svc := NewAccountService(AccountServiceParams{
		UserRepo:    userRepo,
		ProductRepo: productRepo,
		Logger:      newDiscardLogger(),
	})

	return accountServiceFixtures{
		service:     svc,
		userRepo:    userRepo,
		productRepo: productRepo,
		userID:      user.ID,
	}
}

func newTestProduct(title string) *entity.Product {
	return &entity.Product{
		ID:    uuid.New(),
		Title: title,
		Price: 42,
		Seller: &entity.Seller{
			ID:       uuid.New(),
			Username: "seller",
			FullName: "Sally Seller",
		},
	}
}

func TestAccountService_CurrentUser(t *testing.T) {
	fx := createTestAccountService(t)

	user, err := fx.service.CurrentUser(context.Background(), fx.userID)
	require.NoError(t, err)
	assert.Equal(t, "bob", user.Username)

	_, err = fx.service.CurrentUser(context.Background(), uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrUserNotFound)
}

func TestAccountService_UpdateAccount(t *testing.T) {
	fx := createTestAccountService(t)

	user, err := fx.service.UpdateAccount(context.Background(), &usecase.UpdateAccountInput{
		UserID:   fx.userID,
		FullName: "Robert Jones",
		Email:    "Robert@Example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, "Robert Jones", user.FullName)
	assert.Equal(t, "robert@example.com", user.Email)
}

func TestAccountService_UpdateAccount_DuplicateEmail(t *testing.T) {
	fx := createTestAccountService(t)

	other := &entity.User{Username: "carol", Email: "carol@example.com", FullName: "Carol"}
	require.NoError(t, fx.userRepo.Create(context.Background(), other, "irrelevant-hash"))

	_, err := fx.service.UpdateAccount(context.Background(), &usecase.UpdateAccountInput{
		UserID:   fx.userID,
		FullName: "Bob Jones",
		Email:    "carol@example.com",
	})
	assert.ErrorIs(t, err, domainerrors.ErrUserAlreadyExists)
}

func TestAccountService_UpdateAvatar(t *testing.T) {
	fx := createTestAccountService(t)

	user, err := fx.service.UpdateAvatar(context.Background(), &usecase.UpdateAvatarInput{
		UserID:    fx.userID,
		AvatarURL: "https://cdn.example.com/bob.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/bob.png", user.AvatarURL)
}

func TestAccountService_SaveProduct(t *testing.T) {
	product := newTestProduct("Bike")
	fx := createTestAccountService(t, product)

	input := &usecase.SavedProductInput{UserID: fx.userID, ProductID: product.ID}
	require.NoError(t, fx.service.SaveProduct(context.Background(), input))

	// Saving twice is reported, not ignored.
	err := fx.service.SaveProduct(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrProductAlreadySaved)
}

func TestAccountService_SaveProduct_UnknownProduct(t *testing.T) {
	fx := createTestAccountService(t)

	err := fx.service.SaveProduct(context.Background(), &usecase.SavedProductInput{
		UserID:    fx.userID,
		ProductID: uuid.New(),
	})
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestAccountService_RemoveSavedProduct(t *testing.T) {
	product := newTestProduct("Bike")
	fx := createTestAccountService(t, product)

	input := &usecase.SavedProductInput{UserID: fx.userID, ProductID: product.ID}
	require.NoError(t, fx.service.SaveProduct(context.Background(), input))
	require.NoError(t, fx.service.RemoveSavedProduct(context.Background(), input))

	err := fx.service.RemoveSavedProduct(context.Background(), input)
	assert.ErrorIs(t, err, domainerrors.ErrProductNotSaved)
}

func TestAccountService_SavedProducts_NewestFirstWithSeller(t *testing.T) {
	first := newTestProduct("Bike")
	second := newTestProduct("Lamp")
	fx := createTestAccountService(t, first, second)

	require.NoError(t, fx.service.SaveProduct(context.Background(), &usecase.SavedProductInput{
		UserID: fx.userID, ProductID: first.ID,
	}))
	require.NoError(t, fx.service.SaveProduct(context.Background(), &usecase.SavedProductInput{
		UserID: fx.userID, ProductID: second.ID,
	}))

	products, err := fx.service.SavedProducts(context.Background(), fx.userID)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Lamp", products[0].Title)
	assert.Equal(t, "Bike", products[1].Title)
	require.NotNil(t, products[0].Seller)
	assert.Equal(t, "seller", products[0].Seller.Username)
}

func TestAccountService_SavedProducts_SkipsDeletedListings(t *testing.T) {
	product := newTestProduct("Bike")
	fx := createTestAccountService(t, product)

	require.NoError(t, fx.service.SaveProduct(context.Background(), &usecase.SavedProductInput{
		UserID: fx.userID, ProductID: product.ID,
	}))

	// The listing disappears after it was saved.
	delete(fx.productRepo.products, product.ID)

	products, err := fx.service.SavedProducts(context.Background(), fx.userID)
	require.NoError(t, err)
	assert.Empty(t, products)
}
