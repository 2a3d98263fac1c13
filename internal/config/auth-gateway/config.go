package auth_gateway_config

import (
	"time"

	"github.com/NordCoder/go-auth/internal/obs"
	"github.com/NordCoder/go-auth/internal/outbox"
	pg "github.com/NordCoder/go-auth/internal/repository/postgres"
	redisstore "github.com/NordCoder/go-auth/internal/repository/redis"
)

const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"

	SessionRedis    = "redis"
	SessionPostgres = "postgres"
	SessionMemory   = "memory"
)

type App struct {
	Name    string `mapstructure:"name"`
	Env     string `mapstructure:"env"`
	Version string `mapstructure:"version"`
}

type Server struct {
	HTTPAddr        string        `mapstructure:"http_addr"`
	MetricsAddr     string        `mapstructure:"metrics_addr"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	GracefulTimeout time.Duration `mapstructure:"graceful_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout"`
}

type OTEL struct {
	Enable       bool    `mapstructure:"enable"`
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	ServiceName  string  `mapstructure:"service_name"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
}

func (oc *OTEL) AsOTELConfig() *obs.OTELConfig {
	return &obs.OTELConfig{
		Enable:      oc.Enable,
		Endpoint:    oc.OTLPEndpoint,
		ServiceName: oc.ServiceName,
		SampleRatio: oc.SampleRatio,
	}
}

type Log struct {
	Level  string `mapstructure:"level"`
	Pretty bool   `mapstructure:"pretty"`
}

func (c *Config) LoggerConfig() *obs.LogConfig {
	return &obs.LogConfig{
		Level:  c.Log.Level,
		Pretty: c.Log.Pretty,
		App:    c.App.Name,
		Env:    c.App.Env,
		Ver:    c.App.Version,
	}
}

type Auth struct {
	JWTSecret     string        `mapstructure:"jwt_secret"`
	AccessTTL     time.Duration `mapstructure:"access_ttl"`
	RefreshTTL    time.Duration `mapstructure:"refresh_ttl"`
	BcryptCost    int           `mapstructure:"bcrypt_cost"`
	RotateRefresh bool          `mapstructure:"rotate_refresh"`
	CookieName    string        `mapstructure:"cookie_name"`
	CookieDomain  string        `mapstructure:"cookie_domain"`
	CookiePath    string        `mapstructure:"cookie_path"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
}

type Session struct {
	Backend   string        `mapstructure:"backend"`
	OpTimeout time.Duration `mapstructure:"op_timeout"`
}

type Storage struct {
	Backend string `mapstructure:"backend"`
}

type CORS struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
}

type Events struct {
	Enable bool `mapstructure:"enable"`
}

type Config struct {
	App     App                 `mapstructure:"app"`
	Server  Server              `mapstructure:"server"`
	DB      pg.Config           `mapstructure:"db"`
	Redis   redisstore.Config   `mapstructure:"redis"`
	Session Session             `mapstructure:"session"`
	Storage Storage             `mapstructure:"storage"`
	OTEL    OTEL                `mapstructure:"otel"`
	Log     Log                 `mapstructure:"log"`
	Auth    Auth                `mapstructure:"auth"`
	CORS    CORS                `mapstructure:"cors"`
	Events  Events              `mapstructure:"events"`
	Outbox  outbox.RunnerConfig `mapstructure:"outbox"`
}

// NeedsPostgres reports whether any configured component talks to postgres.
func (c *Config) NeedsPostgres() bool {
	return c.Storage.Backend == StoragePostgres || c.Session.Backend == SessionPostgres || c.Events.Enable
}

type ErrConfig string

func (e ErrConfig) Error() string { return string(e) }
