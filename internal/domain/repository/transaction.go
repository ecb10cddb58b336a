package repository

import "context"

// RepositoryFactory hands out repository instances bound to one transaction.
type RepositoryFactory interface {
	UserRepo() UserRepository
	SessionRepo() SessionRepository
}

// TransactionManager runs a unit of work inside a single database transaction.
// Multi-step credential flows (registration, password change) go through it so
// their reads and writes commit or roll back together.
type TransactionManager interface {
	Execute(ctx context.Context, fn func(repoFactory RepositoryFactory) error) error
}
