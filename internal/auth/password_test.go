package auth

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

func TestBcryptHasher_RoundTrip(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	for _, pw := range []string{"Secret123", "p", "пароль-с-юникодом", strings.Repeat("x", 72)} {
		hash, err := h.Hash(pw)
		require.NoError(t, err)
		assert.NotEqual(t, pw, hash)
		assert.True(t, h.Verify(pw, hash), "password %q must verify against its own hash", pw)
		assert.False(t, h.Verify(pw+"!", hash))
	}
}

func TestBcryptHasher_SaltedOutput(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	a, err := h.Hash("Secret123")
	require.NoError(t, err)
	b, err := h.Hash("Secret123")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.True(t, h.Verify("Secret123", a))
	assert.True(t, h.Verify("Secret123", b))
}

func TestBcryptHasher_DefaultCost(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(0)

	hash, err := h.Hash("x")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hash))
	require.NoError(t, err)
	assert.Equal(t, 10, cost)
}

func TestBcryptHasher_TooLong(t *testing.T) {
	t.Parallel()
	h := NewBcryptHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	require.ErrorIs(t, err, domainauth.ErrInvalidInput)
}

func TestBcryptHasher_GarbageHash(t *testing.T) {
	t.Parallel()
	assert.False(t, NewBcryptHasher(bcrypt.MinCost).Verify("x", "not-a-hash"))
}
