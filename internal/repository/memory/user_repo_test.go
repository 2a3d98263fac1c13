package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NordCoder/go-auth/internal/domain/user"
)

func TestUserRepo_CreateAndFind(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	u := &user.User{Email: " A@X.com ", PasswordHash: "h"}
	require.NoError(t, r.Create(ctx, u))
	assert.NotEmpty(t, u.ID)
	assert.Equal(t, "a@x.com", u.Email)

	got, err := r.GetByEmail(ctx, "a@x.COM")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
	assert.Equal(t, "h", got.PasswordHash)
}

func TestUserRepo_Duplicate(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	r := NewUserRepo()

	require.NoError(t, r.Create(ctx, &user.User{Email: "a@x.com", PasswordHash: "h1"}))
	err := r.Create(ctx, &user.User{Email: "A@x.com", PasswordHash: "h2"})
	require.ErrorIs(t, err, user.ErrDuplicateEmail)
}

func TestUserRepo_NotFound(t *testing.T) {
	t.Parallel()
	_, err := NewUserRepo().GetByEmail(context.Background(), "nobody@x.com")
	require.ErrorIs(t, err, user.ErrNotFound)
}
