package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	domainauth "github.com/NordCoder/go-auth/internal/domain/auth"
	"github.com/NordCoder/go-auth/internal/domain/event"
	"github.com/NordCoder/go-auth/internal/domain/user"
	"github.com/NordCoder/go-auth/internal/obs"
	"github.com/NordCoder/go-auth/internal/outbox"
	"github.com/NordCoder/go-auth/internal/repository/memory"
	pg "github.com/NordCoder/go-auth/internal/repository/postgres"
	redisstore "github.com/NordCoder/go-auth/internal/repository/redis"
	"github.com/NordCoder/go-auth/internal/services/api-gateway/auth"
)

const sessionPurgeEvery = 10 * time.Minute

type stores struct {
	users    user.Repo
	sessions domainauth.SessionStore
	tx       auth.Transactor
	events   event.Sink

	checks  []obs.HealthCheck
	closers []func()
}

func (s *stores) health(ctx context.Context) error {
	hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	for _, check := range s.checks {
		if err := check(hctx); err != nil {
			return err
		}
	}
	return nil
}

func (s *stores) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

func initStores(ctx context.Context, cfg *config.Config, db *pg.DB, logger *zap.Logger) (*stores, error) {
	s := &stores{events: event.Nop{}, tx: memory.Transactor{}}

	switch cfg.Storage.Backend {
	case config.StoragePostgres:
		s.users = pg.NewUserRepo(db)
		s.tx = pg.NewTransactor(db, logger)
		s.checks = append(s.checks, db.Ping)
	case config.StorageMemory:
		logger.Warn("credential store is in memory; users are lost on restart")
		s.users = memory.NewUserRepo()
	}

	switch cfg.Session.Backend {
	case config.SessionRedis:
		rc, err := redisstore.NewClient(ctx, cfg.Redis)
		if err != nil {
			return nil, fmt.Errorf("redis connect: %w", err)
		}
		s.closers = append(s.closers, func() { _ = rc.Close() })
		s.checks = append(s.checks, func(ctx context.Context) error { return rc.Ping(ctx).Err() })
		s.sessions = redisstore.NewSessionStore(rc, cfg.Session.OpTimeout)
	case config.SessionPostgres:
		repo := pg.NewSessionRepo(db)
		s.sessions = repo
		purgeCtx, cancel := context.WithCancel(ctx)
		s.closers = append(s.closers, cancel)
		go purgeSessions(purgeCtx, repo, logger)
	case config.SessionMemory:
		s.sessions = memory.NewSessionStore()
	}

	if cfg.Events.Enable {
		s.events = outbox.NewSink(pg.NewOutboxRepo(db))
	}
	return s, nil
}

func purgeSessions(ctx context.Context, repo *pg.SessionRepo, logger *zap.Logger) {
	t := time.NewTicker(sessionPurgeEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := repo.PurgeExpired(ctx)
			if err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn("purge expired sessions", zap.Error(err))
				continue
			}
			if n > 0 {
				logger.Debug("purged expired sessions", zap.Int64("rows", n))
			}
		}
	}
}
