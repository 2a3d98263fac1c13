package user

import "context"

// Repo is the durable credential store. Create fails with ErrDuplicateEmail when the
// email is already taken; GetByEmail returns ErrNotFound for unknown emails.
type Repo interface {
	Create(ctx context.Context, u *User) error
	GetByEmail(ctx context.Context, email string) (*User, error)
}
