package auth

import (
	"context"
	"time"
)

// SessionStore keeps at most one refresh token per user. Put overwrites, Get returns
// ErrSessionNotFound when nothing (or only an expired token) is stored, Delete is idempotent.
// A store that cannot answer in time returns an error wrapping ErrStore.
type SessionStore interface {
	Put(ctx context.Context, userID, refreshToken string, ttl time.Duration) error
	Get(ctx context.Context, userID string) (string, error)
	Delete(ctx context.Context, userID string) error
}
