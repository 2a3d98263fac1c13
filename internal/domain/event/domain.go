package event

import (
	"context"
	"time"
)

// AuthEvent is the payload published for every auth-relevant state change.
type AuthEvent struct {
	Type   string    `json:"type"`
	UserID string    `json:"user_id"`
	Email  string    `json:"email,omitempty"`
	At     time.Time `json:"at"`
}

// Sink records auth events. Implementations must be safe for concurrent use.
type Sink interface {
	UserRegistered(ctx context.Context, userID, email string) error
	SessionStarted(ctx context.Context, userID string) error
}

type Nop struct{}

func (Nop) UserRegistered(context.Context, string, string) error { return nil }
func (Nop) SessionStarted(context.Context, string) error         { return nil }
