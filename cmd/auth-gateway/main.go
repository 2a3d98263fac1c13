package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	config "github.com/NordCoder/go-auth/internal/config/auth-gateway"
	"github.com/NordCoder/go-auth/internal/obs"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	flag.Parse()

	rootCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()
	logger.Info("starting auth-gateway",
		zap.String("storage", cfg.Storage.Backend),
		zap.String("sessions", cfg.Session.Backend),
		zap.Bool("events", cfg.Events.Enable),
	)

	otelShutdown, err := initOTel(rootCtx, cfg)
	if err != nil {
		logger.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelShutdown(context.Background()) }()

	db, err := initDB(rootCtx, cfg, logger)
	if err != nil {
		logger.Fatal("db connect", zap.Error(err))
	}
	if db != nil {
		defer db.Close()
	}

	st, err := initStores(rootCtx, cfg, db, logger)
	if err != nil {
		logger.Fatal("stores", zap.Error(err))
	}
	defer st.close()

	httpSrv, err := buildHTTPServer(cfg, logger, st)
	if err != nil {
		logger.Fatal("build http", zap.Error(err))
	}
	metricsSrv := obs.BootstrapMetricsServer(cfg.Server.MetricsAddr, st.health, logger)

	httpErrCh := make(chan error, 1)
	go func() { httpErrCh <- serveHTTP(httpSrv, logger) }()

	select {
	case <-rootCtx.Done():
		logger.Info("shutdown signal")
	case err := <-httpErrCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http serve", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.GracefulTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shCtx); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	_ = metricsSrv.Shutdown(shCtx)
	logger.Info("bye")
}
