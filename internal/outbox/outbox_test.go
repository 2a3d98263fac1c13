package outbox

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/NordCoder/go-auth/internal/domain/event"
	"github.com/NordCoder/go-auth/internal/domain/outbox"
	"github.com/NordCoder/go-auth/internal/obs/retry"
)

type memRepo struct {
	mu      sync.Mutex
	pending []outbox.Message
	done    []string
	pickErr error
}

func (r *memRepo) Enqueue(_ context.Context, m outbox.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = append(r.pending, m)
	return nil
}

func (r *memRepo) PickBatch(_ context.Context, batch int, _ time.Duration) ([]outbox.Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pickErr != nil {
		return nil, r.pickErr
	}
	n := min(batch, len(r.pending))
	out := append([]outbox.Message(nil), r.pending[:n]...)
	r.pending = r.pending[n:]
	return out, nil
}

func (r *memRepo) MarkSuccess(_ context.Context, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done = append(r.done, keys...)
	return nil
}

type capture struct {
	mu   sync.Mutex
	got  []event.AuthEvent
	fail int
}

func (c *capture) PublishRaw(_ context.Context, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		return errors.New("broker unavailable")
	}
	var ev event.AuthEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return err
	}
	c.got = append(c.got, ev)
	return nil
}

func fastPolicy(attempts int) retry.Policy {
	return retry.Policy{
		Name:     "test_publish",
		Attempts: attempts,
		Backoff:  retry.ExpoJitter{Base: time.Millisecond, Max: 2 * time.Millisecond},
	}
}

func TestSink_EnqueuesTypedEvents(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	s := NewSink(repo)
	ctx := context.Background()

	require.NoError(t, s.UserRegistered(ctx, "u-1", "a@b.c"))
	require.NoError(t, s.SessionStarted(ctx, "u-1"))

	require.Len(t, repo.pending, 2)
	assert.Equal(t, outbox.KindUserRegistered, repo.pending[0].Kind)
	assert.Equal(t, outbox.KindSessionStarted, repo.pending[1].Kind)
	assert.NotEqual(t, repo.pending[0].IdempotencyKey, repo.pending[1].IdempotencyKey)

	var ev event.AuthEvent
	require.NoError(t, json.Unmarshal(repo.pending[0].Data, &ev))
	assert.Equal(t, "user.registered", ev.Type)
	assert.Equal(t, "u-1", ev.UserID)
	assert.Equal(t, "a@b.c", ev.Email)
}

func TestRunner_TickPublishesAndMarksSuccess(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	sink := NewSink(repo)
	ctx := context.Background()
	require.NoError(t, sink.UserRegistered(ctx, "u-1", "a@b.c"))
	require.NoError(t, sink.SessionStarted(ctx, "u-1"))

	pub := &capture{fail: 1}
	r := NewOutboxRunner(zap.NewNop(), repo, MakeGlobalOutboxHandler(pub, fastPolicy(3)), RunnerConfig{BatchSize: 10})

	assert.Equal(t, 2, r.tick(ctx))
	assert.Len(t, repo.done, 2)
	require.Len(t, pub.got, 2)
	assert.Equal(t, "session.started", pub.got[1].Type)
}

func TestRunner_FailedMessageStaysPending(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	require.NoError(t, NewSink(repo).SessionStarted(context.Background(), "u-1"))

	pub := &capture{fail: 10}
	r := NewOutboxRunner(nil, repo, MakeGlobalOutboxHandler(pub, fastPolicy(2)), RunnerConfig{})

	assert.Equal(t, 0, r.tick(context.Background()))
	assert.Empty(t, repo.done)
}

func TestRunner_UnknownKindIsSkipped(t *testing.T) {
	t.Parallel()
	repo := &memRepo{pending: []outbox.Message{{IdempotencyKey: "k", Kind: outbox.Kind(99), Data: []byte(`{}`)}}}
	r := NewOutboxRunner(nil, repo, MakeGlobalOutboxHandler(&capture{}, fastPolicy(1)), RunnerConfig{})

	assert.Equal(t, 0, r.tick(context.Background()))
	assert.Empty(t, repo.done)
}

func TestRunner_PickErrorIsSurvivable(t *testing.T) {
	t.Parallel()
	repo := &memRepo{pickErr: errors.New("db down")}
	r := NewOutboxRunner(nil, repo, MakeGlobalOutboxHandler(&capture{}, fastPolicy(1)), RunnerConfig{})

	assert.Equal(t, 0, r.tick(context.Background()))
}

func TestRunner_RunStopsOnCancel(t *testing.T) {
	t.Parallel()
	repo := &memRepo{}
	require.NoError(t, NewSink(repo).SessionStarted(context.Background(), "u-1"))
	pub := &capture{}
	r := NewOutboxRunner(nil, repo, MakeGlobalOutboxHandler(pub, fastPolicy(1)),
		RunnerConfig{Workers: 2, WaitTime: 5 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		repo.mu.Lock()
		defer repo.mu.Unlock()
		return len(repo.done) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("runner did not stop")
	}
}
