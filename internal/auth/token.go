package auth

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var ErrTokenInvalid = errors.New("invalid token")

const refreshTokenBytes = 32

type Claims struct {
	jwt.RegisteredClaims
}

type TokenConfig struct {
	Secret    []byte
	AccessTTL time.Duration
	Now       func() time.Time
}

// TokenIssuer signs HS256 access tokens and mints opaque refresh tokens.
// Verification is pure computation and never touches a store.
type TokenIssuer struct {
	secret    []byte
	accessTTL time.Duration
	now       func() time.Time
}

func NewTokenIssuer(cfg TokenConfig) (*TokenIssuer, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token issuer: empty signing secret")
	}
	if cfg.AccessTTL <= 0 {
		return nil, errors.New("token issuer: access ttl must be positive")
	}
	if cfg.Now == nil {
		cfg.Now = func() time.Time { return time.Now().UTC() }
	}
	return &TokenIssuer{secret: cfg.Secret, accessTTL: cfg.AccessTTL, now: cfg.Now}, nil
}

func (i *TokenIssuer) IssueAccessToken(userID string) (string, error) {
	if userID == "" {
		return "", errors.New("issue access token: empty user id")
	}
	now := i.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.accessTTL)),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign access token: %w", err)
	}
	return signed, nil
}

// VerifyAccessToken checks the signature and that now < exp, and returns the subject.
func (i *TokenIssuer) VerifyAccessToken(token string) (string, error) {
	return i.parse(token,
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
}

// SubjectIgnoringExpiry checks only the signature and extracts the subject. Refresh relies on it
// because its whole point is to renew an access token that has already expired.
func (i *TokenIssuer) SubjectIgnoringExpiry(token string) (string, error) {
	return i.parse(token, jwt.WithoutClaimsValidation())
}

func (i *TokenIssuer) parse(token string, opts ...jwt.ParserOption) (string, error) {
	if token == "" {
		return "", ErrTokenInvalid
	}
	opts = append(opts, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(_ *jwt.Token) (any, error) {
		return i.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !parsed.Valid || claims.Subject == "" {
		return "", ErrTokenInvalid
	}
	return claims.Subject, nil
}

// IssueRefreshToken returns 256 bits of randomness, base64url encoded. It carries no claims.
func (i *TokenIssuer) IssueRefreshToken() (string, error) {
	return GenerateRawToken(refreshTokenBytes)
}

func GenerateRawToken(nBytes int) (string, error) {
	b := make([]byte, nBytes)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("read random: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
