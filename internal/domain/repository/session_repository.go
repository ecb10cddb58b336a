package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrSessionMismatch is returned when the presented refresh token is valid
// cryptographically but is not the one on file, e.g. because it was already
// rotated away by a concurrent request or a replay.
var ErrSessionMismatch = errors.New("refresh token does not match the current session")

// SessionRepository persists the single active session per user: the hash of
// the one refresh token currently accepted for that user.
type SessionRepository interface {
	// Persist unconditionally overwrites the user's current refresh token hash.
	// Used at login.
	Persist(ctx context.Context, userID uuid.UUID, tokenHash string) error

	// Rotate atomically replaces the stored hash with newHash, but only if the
	// stored value equals presentedHash. The compare-and-replace is a single
	// conditional write at the store, so two concurrent rotations from the same
	// starting token cannot both succeed; the loser gets ErrSessionMismatch.
	Rotate(ctx context.Context, userID uuid.UUID, presentedHash, newHash string) error

	// Invalidate unsets the current refresh token hash. Used at logout.
	// Invalidating an already-empty session is a no-op, not an error.
	Invalidate(ctx context.Context, userID uuid.UUID) error
}
