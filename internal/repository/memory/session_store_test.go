package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

func TestSessionStore_PutOverwrites(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	require.NoError(t, s.Put(ctx, "u1", "first", time.Hour))
	require.NoError(t, s.Put(ctx, "u1", "second", time.Hour))

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "second", got)
}

func TestSessionStore_Expiry(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s := NewSessionStoreWithClock(func() time.Time { return now })

	require.NoError(t, s.Put(ctx, "u1", "tok", time.Minute))

	now = now.Add(59 * time.Second)
	_, err := s.Get(ctx, "u1")
	require.NoError(t, err)

	now = now.Add(time.Second)
	_, err = s.Get(ctx, "u1")
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_DeleteIdempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	require.NoError(t, s.Delete(ctx, "missing"))
	require.NoError(t, s.Put(ctx, "u1", "tok", time.Hour))
	require.NoError(t, s.Delete(ctx, "u1"))
	require.NoError(t, s.Delete(ctx, "u1"))

	_, err := s.Get(ctx, "u1")
	require.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_CancelledContextIsStoreError(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSessionStore()

	_, err := s.Get(ctx, "u1")
	require.ErrorIs(t, err, domainauth.ErrStore)
	require.NotErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestSessionStore_ConcurrentLastWriterWins(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := NewSessionStore()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, "u1", "tok", time.Hour)
			_, _ = s.Get(ctx, "u1")
		}()
	}
	wg.Wait()

	got, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "tok", got)
}
