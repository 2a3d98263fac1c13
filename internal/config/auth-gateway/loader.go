package auth_gateway_config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const (
	ErrNoSecret     = ErrConfig("auth.jwt_secret is required")
	ErrNoDSN        = ErrConfig("db.dsn is required for the configured backends")
	ErrEventsMemory = ErrConfig("events.enable needs storage.backend=postgres")
)

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	v.SetDefault("app.name", "go-auth/auth-gateway")
	v.SetDefault("app.env", "dev")
	v.SetDefault("app.version", "")

	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.metrics_addr", ":9100")
	v.SetDefault("server.read_timeout", "5s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.idle_timeout", "60s")
	v.SetDefault("server.graceful_timeout", "15s")
	v.SetDefault("server.request_timeout", "3s")

	v.SetDefault("db.dsn", "")
	v.SetDefault("db.max_conns", 20)
	v.SetDefault("db.min_conns", 2)
	v.SetDefault("db.max_conn_lifetime", "30m")
	v.SetDefault("db.max_conn_idle_time", "10m")
	v.SetDefault("db.health_check_period", "30s")
	v.SetDefault("db.query_timeout", "2s")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.dial_timeout", "2s")
	v.SetDefault("redis.read_timeout", "1s")
	v.SetDefault("redis.write_timeout", "1s")

	v.SetDefault("session.backend", SessionRedis)
	v.SetDefault("session.op_timeout", "1s")
	v.SetDefault("storage.backend", StoragePostgres)

	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.access_ttl", "1h")
	v.SetDefault("auth.refresh_ttl", "168h")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.rotate_refresh", false)
	v.SetDefault("auth.cookie_name", "refreshToken")
	v.SetDefault("auth.cookie_path", "/")
	v.SetDefault("auth.cookie_domain", "")
	v.SetDefault("auth.cookie_secure", true)

	v.SetDefault("cors.allowed_origin", "https://go-auth.pages.dev")
	v.SetDefault("events.enable", false)

	v.SetDefault("otel.enable", false)
	v.SetDefault("otel.service_name", "auth-gateway")
	v.SetDefault("otel.sample_ratio", 1.0)
	v.SetDefault("otel.otlp_endpoint", "localhost:4317")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Auth.JWTSecret == "" {
		errs = append(errs, ErrNoSecret)
	}
	if c.Auth.AccessTTL <= 0 || c.Auth.RefreshTTL <= 0 {
		errs = append(errs, ErrConfig("auth ttls must be positive"))
	}
	switch c.Storage.Backend {
	case StoragePostgres, StorageMemory:
	default:
		errs = append(errs, ErrConfig(fmt.Sprintf("unknown storage.backend %q", c.Storage.Backend)))
	}
	switch c.Session.Backend {
	case SessionRedis, SessionPostgres, SessionMemory:
	default:
		errs = append(errs, ErrConfig(fmt.Sprintf("unknown session.backend %q", c.Session.Backend)))
	}
	if c.Events.Enable && c.Storage.Backend != StoragePostgres {
		errs = append(errs, ErrEventsMemory)
	}
	if c.NeedsPostgres() && c.DB.DSN == "" {
		errs = append(errs, ErrNoDSN)
	}
	return errors.Join(errs...)
}
