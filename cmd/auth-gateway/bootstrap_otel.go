package main

import (
	"context"

	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	"github.com/NordCoder/go-auth/internal/obs"
)

func initOTel(ctx context.Context, cfg *config.Config) (func(context.Context) error, error) {
	closer, err := obs.SetupOTel(ctx, cfg.OTEL.AsOTELConfig())
	if err != nil {
		return nil, err
	}
	return closer.Shutdown, nil
}
