package main

import (
	"context"

	"go.uber.org/zap"

	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	pg "github.com/NordCoder/go-auth/internal/repository/postgres"
)

// initDB returns nil when no configured backend needs postgres.
func initDB(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*pg.DB, error) {
	if !cfg.NeedsPostgres() {
		logger.Info("postgres not required by configured backends")
		return nil, nil
	}
	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		return nil, err
	}
	logger.Info("postgres connected", zap.Int32("max_conns", cfg.DB.MaxConns))
	return db, nil
}
