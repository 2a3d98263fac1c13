package outbox_relay_config

import (
	"time"

	"github.com/NordCoder/go-auth/internal/obs"
	"github.com/NordCoder/go-auth/internal/outbox"
	pginfra "github.com/NordCoder/go-auth/internal/repository/postgres"
)

type KafkaCfg struct {
	Brokers           []string      `mapstructure:"brokers"`
	Topic             string        `mapstructure:"topic"`
	Partitions        int           `mapstructure:"partitions"`
	ReplicationFactor int           `mapstructure:"replication_factor"`
	EnsureTimeout     time.Duration `mapstructure:"ensure_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

type Config struct {
	DB          pginfra.Config      `mapstructure:"db"`
	Kafka       KafkaCfg            `mapstructure:"kafka"`
	Outbox      outbox.RunnerConfig `mapstructure:"outbox"`
	OTEL        OTEL                `mapstructure:"otel"`
	MetricsAddr string              `mapstructure:"metrics_addr"`
	LogLevel    string              `mapstructure:"log_level"`
	LogPretty   bool                `mapstructure:"log_pretty"`
}

func (c *Config) LoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{Level: c.LogLevel, Pretty: c.LogPretty, App: "go-auth/outbox-relay"}
}

func (c *Config) OTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      c.OTEL.Enable,
		Endpoint:    c.OTEL.OTLPEndpoint,
		ServiceName: c.OTEL.ServiceName,
		SampleRatio: c.OTEL.SampleRatio,
	}
}
