package memory

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/NordCoder/go-auth/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

// UserRepo is a process-local credential store. It does not survive a restart and is meant
// for tests and single-node development (storage.backend=memory).
type UserRepo struct {
	mu      sync.RWMutex
	byEmail map[string]user.User
}

func NewUserRepo() *UserRepo {
	return &UserRepo{byEmail: make(map[string]user.User)}
}

func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	if err := ctx.Err(); err != nil {
		return storeErr("user insert", err)
	}
	email := user.NormalizeEmail(u.Email)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byEmail[email]; ok {
		return user.ErrDuplicateEmail
	}
	u.ID = uuid.NewString()
	u.Email = email
	u.CreatedAt = time.Now().UTC()
	r.byEmail[email] = *u
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, storeErr("user by email", err)
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, user.ErrNotFound
	}
	return &u, nil
}
