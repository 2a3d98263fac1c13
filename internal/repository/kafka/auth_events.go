package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/NordCoder/go-auth/internal/domain/event"
)

type jsonPublisher interface {
	Publish(ctx context.Context, key, value []byte) error
}

// AuthEventsKafka publishes auth events keyed by user id, so all events of one user land
// on the same partition in order.
type AuthEventsKafka struct {
	p jsonPublisher
}

func NewAuthEventsKafka(p jsonPublisher) *AuthEventsKafka { return &AuthEventsKafka{p: p} }

// PublishRaw forwards an already encoded event, validating that it is one.
func (a *AuthEventsKafka) PublishRaw(ctx context.Context, data []byte) error {
	var ev event.AuthEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return fmt.Errorf("decode auth event: %w", err)
	}
	if ev.UserID == "" {
		return fmt.Errorf("auth event %q without user id", ev.Type)
	}
	return a.p.Publish(ctx, []byte(ev.UserID), data)
}
