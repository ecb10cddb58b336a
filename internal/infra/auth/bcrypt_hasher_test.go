package auth

import (
	"testing"

	"bazaar/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHasher() *bcryptHasher {
	cfg := &config.Config{Auth: &config.AuthConfig{BcryptCost: 4}}

	return NewBcryptHasher(cfg).(*bcryptHasher)
}

func TestBcryptHasher_HashAndCheck(t *testing.T) {
	hasher := newTestHasher()

	hash, err := hasher.Hash("p@ssword1")
	require.NoError(t, err)
	assert.NotEqual(t, "p@ssword1", hash)
	assert.NotContains(t, hash, "p@ssword1")

	assert.True(t, hasher.Check("p@ssword1", hash))
	assert.False(t, hasher.Check("p@ssword2", hash))
	assert.False(t, hasher.Check("", hash))
}

func TestBcryptHasher_SaltedHashesDiffer(t *testing.T) {
	hasher := newTestHasher()

	first, err := hasher.Hash("p@ssword1")
	require.NoError(t, err)
	second, err := hasher.Hash("p@ssword1")
	require.NoError(t, err)

	// bcrypt salts per call, so equal inputs produce distinct hashes.
	assert.NotEqual(t, first, second)
	assert.True(t, hasher.Check("p@ssword1", second))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	hasher := NewBcryptHasher(&config.Config{}).(*bcryptHasher)
	assert.Equal(t, 10, hasher.cost) // bcrypt.DefaultCost
}
