package main

import (
	"go.uber.org/zap"

	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	"github.com/NordCoder/go-auth/internal/obs"
)

func initLogger(cfg *config.Config) (*zap.Logger, error) {
	return obs.NewLogger(cfg.LoggerConfig())
}
