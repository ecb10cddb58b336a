package impl

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"bazaar/config"
	"bazaar/internal/domain/entity"
	"bazaar/internal/domain/repository"

	"github.com/google/uuid"
)

func newDiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestConfig() *config.Config {
	cfg := &config.Config{
		Auth: &config.AuthConfig{BcryptCost: 4},
	}
	cfg.SecretKey.Access = "test-access-secret"
	cfg.SecretKey.Refresh = "test-refresh-secret"

	return cfg
}

// fakeUserRepo is an in-memory repository.UserRepository with the same
// not-found and duplicate semantics as the postgres implementation.
type fakeUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*entity.User
	creds map[uuid.UUID]*entity.Credentials
	saved map[uuid.UUID][]uuid.UUID
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{
		users: make(map[uuid.UUID]*entity.User),
		creds: make(map[uuid.UUID]*entity.Credentials),
		saved: make(map[uuid.UUID][]uuid.UUID),
	}
}

func (r *fakeUserRepo) Create(_ context.Context, user *entity.User, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return repository.ErrUserDuplicate
		}
	}

	user.ID = uuid.New()
	copied := *user
	r.users[user.ID] = &copied
	r.creds[user.ID] = &entity.Credentials{UserID: user.ID, PasswordHash: passwordHash}

	return nil
}

func (r *fakeUserRepo) FindByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, user := range r.users {
		if user.Username == username || user.Email == email {
			copied := *user

			return &copied, nil
		}
	}

	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) FindCredentials(_ context.Context, userID uuid.UUID) (*entity.Credentials, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds, ok := r.creds[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	copied := *creds

	return &copied, nil
}

func (r *fakeUserRepo) UpdatePasswordHash(_ context.Context, userID uuid.UUID, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	creds, ok := r.creds[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	creds.PasswordHash = passwordHash

	return nil
}

func (r *fakeUserRepo) UpdateAccount(_ context.Context, userID uuid.UUID, fullName, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	for id, other := range r.users {
		if id != userID && other.Email == email {
			return nil, repository.ErrUserDuplicate
		}
	}
	user.FullName = fullName
	user.Email = email
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) UpdateAvatar(_ context.Context, userID uuid.UUID, avatarURL string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[userID]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	user.AvatarURL = avatarURL
	copied := *user

	return &copied, nil
}

func (r *fakeUserRepo) AddSavedProduct(_ context.Context, userID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, id := range r.saved[userID] {
		if id == productID {
			return repository.ErrProductAlreadySaved
		}
	}
	// Prepend so listing comes back newest first.
	r.saved[userID] = append([]uuid.UUID{productID}, r.saved[userID]...)

	return nil
}

func (r *fakeUserRepo) RemoveSavedProduct(_ context.Context, userID, productID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ids := r.saved[userID]
	for i, id := range ids {
		if id == productID {
			r.saved[userID] = append(ids[:i:i], ids[i+1:]...)

			return nil
		}
	}

	return repository.ErrProductNotSaved
}

func (r *fakeUserRepo) ListSavedProductIDs(_ context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]uuid.UUID(nil), r.saved[userID]...), nil
}

// fakeSessionRepo implements the compare-and-replace contract in memory. The
// mutex stands in for the conditional UPDATE: the compare and the write are
// one critical section, exactly like the single-statement form at the store.
type fakeSessionRepo struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]string
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[uuid.UUID]string)}
}

func (r *fakeSessionRepo) Persist(_ context.Context, userID uuid.UUID, tokenHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.sessions[userID] = tokenHash

	return nil
}

func (r *fakeSessionRepo) Rotate(_ context.Context, userID uuid.UUID, presentedHash, newHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sessions[userID] != presentedHash {
		return repository.ErrSessionMismatch
	}
	r.sessions[userID] = newHash

	return nil
}

func (r *fakeSessionRepo) Invalidate(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.sessions, userID)

	return nil
}

func (r *fakeSessionRepo) current(userID uuid.UUID) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	hash, ok := r.sessions[userID]

	return hash, ok
}

// fakeProductRepo serves a fixed catalogue of products.
type fakeProductRepo struct {
	products map[uuid.UUID]*entity.Product
}

func newFakeProductRepo(products ...*entity.Product) *fakeProductRepo {
	repo := &fakeProductRepo{products: make(map[uuid.UUID]*entity.Product)}
	for _, p := range products {
		repo.products[p.ID] = p
	}

	return repo
}

func (r *fakeProductRepo) FindByIDs(_ context.Context, ids []uuid.UUID) ([]*entity.Product, error) {
	result := make([]*entity.Product, 0, len(ids))
	for _, id := range ids {
		if p, ok := r.products[id]; ok {
			result = append(result, p)
		}
	}

	return result, nil
}

func (r *fakeProductRepo) Exists(_ context.Context, id uuid.UUID) (bool, error) {
	_, ok := r.products[id]

	return ok, nil
}

// fakeTxManager runs the unit of work directly against the shared fakes.
type fakeTxManager struct {
	factory repository.RepositoryFactory
}

func (m *fakeTxManager) Execute(_ context.Context, fn func(repoFactory repository.RepositoryFactory) error) error {
	return fn(m.factory)
}

type fakeRepoFactory struct {
	userRepo    repository.UserRepository
	sessionRepo repository.SessionRepository
}

func (f *fakeRepoFactory) UserRepo() repository.UserRepository       { return f.userRepo }
func (f *fakeRepoFactory) SessionRepo() repository.SessionRepository { return f.sessionRepo }
