package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

var _ domainauth.SessionStore = (*SessionStore)(nil)

type entry struct {
	token     string
	expiresAt time.Time
}

type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]entry
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return NewSessionStoreWithClock(func() time.Time { return time.Now().UTC() })
}

func NewSessionStoreWithClock(now func() time.Time) *SessionStore {
	return &SessionStore{sessions: make(map[string]entry), now: now}
}

func (s *SessionStore) Put(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return storeErr("session put", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = entry{token: refreshToken, expiresAt: s.now().Add(ttl)}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", storeErr("session get", err)
	}
	s.mu.RLock()
	e, ok := s.sessions[userID]
	s.mu.RUnlock()

	if !ok || !s.now().Before(e.expiresAt) {
		return "", domainauth.ErrSessionNotFound
	}
	return e.token, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return storeErr("session delete", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainauth.ErrStore, op, err)
}
