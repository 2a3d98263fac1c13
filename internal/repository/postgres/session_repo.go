package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

var _ domainauth.SessionStore = (*SessionRepo)(nil)

// SessionRepo keeps one row per user; expiry is enforced by the read predicate so a stale
// row is indistinguishable from a missing one.
type SessionRepo struct {
	db  *DB
	now func() time.Time
}

func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db, now: func() time.Time { return time.Now().UTC() }}
}

const (
	qSessionUpsert = `
INSERT INTO sessions (user_id, refresh_token, expires_at)
VALUES ($1, $2, $3)
ON CONFLICT (user_id) DO UPDATE
SET refresh_token = EXCLUDED.refresh_token,
    expires_at    = EXCLUDED.expires_at,
    updated_at    = NOW();`

	qSessionGet = `
SELECT refresh_token
FROM sessions
WHERE user_id = $1 AND expires_at > NOW();`

	qSessionDelete = `
DELETE FROM sessions WHERE user_id = $1;`

	qSessionPurge = `
DELETE FROM sessions WHERE expires_at <= NOW();`
)

func (r *SessionRepo) Put(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSessionUpsert, userID, refreshToken, r.now().Add(ttl)); err != nil {
		return storeErr("session put", err)
	}
	return nil
}

func (r *SessionRepo) Get(ctx context.Context, userID string) (string, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	var token string
	if err := r.db.execQueryer(ctx).QueryRow(ctx, qSessionGet, userID).Scan(&token); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domainauth.ErrSessionNotFound
		}
		return "", storeErr("session get", err)
	}
	return token, nil
}

func (r *SessionRepo) Delete(ctx context.Context, userID string) error {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	if _, err := r.db.execQueryer(ctx).Exec(ctx, qSessionDelete, userID); err != nil {
		return storeErr("session delete", err)
	}
	return nil
}

// PurgeExpired removes rows whose TTL has lapsed. Reads already ignore them; this only reclaims space.
func (r *SessionRepo) PurgeExpired(ctx context.Context) (int64, error) {
	ctx, cancel := r.db.withTimeout(ctx)
	defer cancel()

	tag, err := r.db.Pool.Exec(ctx, qSessionPurge)
	if err != nil {
		return 0, storeErr("session purge", err)
	}
	return tag.RowsAffected(), nil
}
