package auth

import (
	"encoding/base64"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newIssuer(t *testing.T, clock *fakeClock) *TokenIssuer {
	t.Helper()
	iss, err := NewTokenIssuer(TokenConfig{
		Secret:    []byte("test-secret"),
		AccessTTL: time.Hour,
		Now:       clock.Now,
	})
	require.NoError(t, err)
	return iss
}

func TestTokenIssuer_IssueAndVerify(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, clock)

	tok, err := iss.IssueAccessToken("user-1")
	require.NoError(t, err)

	sub, err := iss.VerifyAccessToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-1", sub)
}

func TestTokenIssuer_ExpiryBoundary(t *testing.T) {
	t.Parallel()
	issuedAt := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issuedAt}
	iss := newIssuer(t, clock)

	tok, err := iss.IssueAccessToken("user-1")
	require.NoError(t, err)
	expiresAt := issuedAt.Add(time.Hour)

	clock.t = expiresAt.Add(-time.Second)
	_, err = iss.VerifyAccessToken(tok)
	require.NoError(t, err, "one second before expiry must verify")

	clock.t = expiresAt
	_, err = iss.VerifyAccessToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid, "exactly at expiry must fail")

	clock.t = expiresAt.Add(time.Minute)
	_, err = iss.VerifyAccessToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_SubjectIgnoringExpiry(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
	iss := newIssuer(t, clock)

	tok, err := iss.IssueAccessToken("user-7")
	require.NoError(t, err)

	clock.t = clock.t.Add(48 * time.Hour)
	_, err = iss.VerifyAccessToken(tok)
	require.Error(t, err)

	sub, err := iss.SubjectIgnoringExpiry(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-7", sub)
}

func TestTokenIssuer_WrongSecret(t *testing.T) {
	t.Parallel()
	clock := &fakeClock{t: time.Now().UTC()}
	iss := newIssuer(t, clock)

	other, err := NewTokenIssuer(TokenConfig{Secret: []byte("other"), AccessTTL: time.Hour, Now: clock.Now})
	require.NoError(t, err)
	tok, err := other.IssueAccessToken("user-1")
	require.NoError(t, err)

	_, err = iss.VerifyAccessToken(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
	_, err = iss.SubjectIgnoringExpiry(tok)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestTokenIssuer_Malformed(t *testing.T) {
	t.Parallel()
	iss := newIssuer(t, &fakeClock{t: time.Now().UTC()})

	for _, tok := range []string{"", "garbage", "not.a.jwt", "a.b"} {
		_, err := iss.VerifyAccessToken(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
		_, err = iss.SubjectIgnoringExpiry(tok)
		assert.ErrorIs(t, err, ErrTokenInvalid, "token %q", tok)
	}
}

func TestTokenIssuer_TokensDifferWithinSameSecond(t *testing.T) {
	t.Parallel()
	iss := newIssuer(t, &fakeClock{t: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)})

	a, err := iss.IssueAccessToken("user-1")
	require.NoError(t, err)
	b, err := iss.IssueAccessToken("user-1")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestTokenIssuer_RefreshTokenEntropy(t *testing.T) {
	t.Parallel()
	iss := newIssuer(t, &fakeClock{t: time.Now().UTC()})

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		tok, err := iss.IssueRefreshToken()
		require.NoError(t, err)
		raw, err := base64.RawURLEncoding.DecodeString(tok)
		require.NoError(t, err)
		require.Len(t, raw, 32)
		_, dup := seen[tok]
		require.False(t, dup)
		seen[tok] = struct{}{}
	}
}

func TestNewTokenIssuer_Validation(t *testing.T) {
	t.Parallel()
	_, err := NewTokenIssuer(TokenConfig{AccessTTL: time.Hour})
	require.Error(t, err)
	_, err = NewTokenIssuer(TokenConfig{Secret: []byte("s")})
	require.Error(t, err)
}
