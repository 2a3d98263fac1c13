package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
)

var _ domainauth.SessionStore = (*SessionStore)(nil)

const keyPrefix = "refresh:"

type Config struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

func NewClient(ctx context.Context, cfg Config) (*goredis.Client, error) {
	c := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	pctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := c.Ping(pctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return c, nil
}

// SessionStore maps refresh:<userID> to the user's single refresh token. Redis enforces the TTL.
type SessionStore struct {
	c         goredis.Cmdable
	opTimeout time.Duration
}

func NewSessionStore(c goredis.Cmdable, opTimeout time.Duration) *SessionStore {
	return &SessionStore{c: c, opTimeout: opTimeout}
}

func (s *SessionStore) Put(ctx context.Context, userID, refreshToken string, ttl time.Duration) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.c.Set(ctx, keyPrefix+userID, refreshToken, ttl).Err(); err != nil {
		return storeErr("session put", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, userID string) (string, error) {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	token, err := s.c.Get(ctx, keyPrefix+userID).Result()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return "", domainauth.ErrSessionNotFound
		}
		return "", storeErr("session get", err)
	}
	return token, nil
}

func (s *SessionStore) Delete(ctx context.Context, userID string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	if err := s.c.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return storeErr("session delete", err)
	}
	return nil
}

func (s *SessionStore) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.opTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.opTimeout)
}

func storeErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domainauth.ErrStore, op, err)
}
