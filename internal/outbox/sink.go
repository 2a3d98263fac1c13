package outbox

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/NordCoder/go-auth/internal/domain/event"
	"github.com/NordCoder/go-auth/internal/domain/outbox"
)

var _ event.Sink = (*Sink)(nil)

// Sink writes auth events into the outbox table. Called inside a transaction it joins it,
// so the event commits or rolls back together with the state change.
type Sink struct {
	repo outbox.Repository
	now  func() time.Time
}

func NewSink(repo outbox.Repository) *Sink {
	return &Sink{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

func (s *Sink) UserRegistered(ctx context.Context, userID, email string) error {
	return s.enqueue(ctx, outbox.KindUserRegistered, event.AuthEvent{
		Type: outbox.KindUserRegistered.String(), UserID: userID, Email: email, At: s.now(),
	})
}

func (s *Sink) SessionStarted(ctx context.Context, userID string) error {
	return s.enqueue(ctx, outbox.KindSessionStarted, event.AuthEvent{
		Type: outbox.KindSessionStarted.String(), UserID: userID, At: s.now(),
	})
}

func (s *Sink) enqueue(ctx context.Context, kind outbox.Kind, ev event.AuthEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}

	carrier := propagation.MapCarrier{}
	otel.GetTextMapPropagator().Inject(ctx, carrier)

	return s.repo.Enqueue(ctx, outbox.Message{
		IdempotencyKey: uuid.NewString(),
		Kind:           kind,
		Data:           data,
		Status:         outbox.StatusCreated,
		Traceparent:    carrier.Get("traceparent"),
		Tracestate:     carrier.Get("tracestate"),
		Baggage:        carrier.Get("baggage"),
	})
}
