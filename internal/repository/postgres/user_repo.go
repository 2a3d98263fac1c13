package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/NordCoder/go-auth/internal/domain/user"
)

var _ user.Repo = (*UserRepo)(nil)

type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo { return &UserRepo{db: db} }

const (
	qUserInsert = `
INSERT INTO users (email, password_hash)
VALUES ($1, $2)
RETURNING id::text, created_at;`

	qUserByEmail = `
SELECT id::text, email, password_hash, created_at
FROM users
WHERE email = $1;`
)

// Create relies on the UNIQUE(email) constraint: a concurrent duplicate loses with 23505.
func (r *UserRepo) Create(ctx context.Context, u *user.User) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	u.Email = user.NormalizeEmail(u.Email)
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qUserInsert, u.Email, u.PasswordHash).
		Scan(&u.ID, &u.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return user.ErrDuplicateEmail
		}
		return storeErr("user insert", err)
	}
	return nil
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*user.User, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var u user.User
	err := r.db.execQueryer(ctx).QueryRow(ctx, qUserByEmail, user.NormalizeEmail(email)).
		Scan(&u.ID, &u.Email, &u.PasswordHash, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, storeErr("user by email", err)
	}
	return &u, nil
}
