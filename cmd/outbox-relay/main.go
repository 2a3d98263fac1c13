package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	config "github.com/NordCoder/go-auth/internal/config/outbox-relay"
	"github.com/NordCoder/go-auth/internal/obs"
	"github.com/NordCoder/go-auth/internal/obs/retry"
	"github.com/NordCoder/go-auth/internal/outbox"
	kafkarepo "github.com/NordCoder/go-auth/internal/repository/kafka"
	pg "github.com/NordCoder/go-auth/internal/repository/postgres"
)

func main() {
	cfgPath := flag.String("config", os.Getenv("CONFIG_PATH"), "path to yaml config")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		log.Fatal(err)
	}

	l, err := obs.NewLogger(cfg.LoggerConfig())
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = l.Sync() }()
	l.Info("starting outbox-relay",
		zap.Strings("brokers", cfg.Kafka.Brokers),
		zap.String("topic", cfg.Kafka.Topic),
		zap.Int("workers", cfg.Outbox.Workers),
	)

	otelCloser, err := obs.SetupOTel(ctx, cfg.OTELConfig())
	if err != nil {
		l.Fatal("otel init", zap.Error(err))
	}
	defer func() { _ = otelCloser.Shutdown(context.Background()) }()

	db, err := pg.NewDB(ctx, cfg.DB)
	if err != nil {
		l.Fatal("db connect", zap.Error(err))
	}
	defer db.Close()

	ensureCtx, cancelEnsure := context.WithTimeout(ctx, cfg.Kafka.EnsureTimeout)
	err = kafkarepo.EnsureTopic(ensureCtx, cfg.Kafka.Brokers, kafkarepo.TopicSpec{
		Name:              cfg.Kafka.Topic,
		NumPartitions:     cfg.Kafka.Partitions,
		ReplicationFactor: cfg.Kafka.ReplicationFactor,
		MaxWait:           cfg.Kafka.EnsureTimeout,
	}, l)
	cancelEnsure()
	if err != nil {
		l.Fatal("ensure topic", zap.Error(err))
	}

	producer := kafkarepo.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.Topic).WithLogger(l)
	defer func() { _ = producer.Close() }()

	ms := obs.BootstrapMetricsServer(cfg.MetricsAddr, func(ctx context.Context) error {
		hctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
		defer cancel()
		return db.Ping(hctx)
	}, l)

	dispatch := outbox.MakeGlobalOutboxHandler(
		kafkarepo.NewAuthEventsKafka(producer),
		retry.DefaultKafkaPolicy(l),
	)
	runner := outbox.NewOutboxRunner(l, pg.NewOutboxRepo(db), dispatch, cfg.Outbox)

	errCh := make(chan error, 1)
	go func() { errCh <- runner.Run(ctx) }()
	l.Info("outbox-relay started")

	select {
	case <-ctx.Done():
	case err = <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			l.Error("runner error", zap.Error(err))
		}
	}

	shCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	_ = ms.Shutdown(shCtx)
	l.Info("bye")
}
