package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sethvargo/go-envconfig"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	SessionStoreMemory = "memory"
	SessionStoreRedis  = "redis"

	MQBackendNone     = "none"
	MQBackendRabbitMQ = "rabbitmq"
	MQBackendPubSub   = "pubsub"
)

type Config struct {
	Env        string `env:"ENV, default=production"`
	ServerPort int    `env:"SERVER_PORT, default=9000"`

	Log      LogConfig
	Database DatabaseConfig
	Session  SessionConfig
	Redis    RedisConfig
	CORS     CORSConfig
	MQ       MQConfig
}

type LogConfig struct {
	Level  string `env:"LOG_LEVEL, default=info"`
	Pretty bool   `env:"LOG_PRETTY, default=false"`
}

type DatabaseConfig struct {
	Driver   string `env:"DB_DRIVER, default=sqlite"`
	Path     string `env:"DB_PATH, default=data.db"`
	Host     string `env:"DB_HOST, default=localhost"`
	Port     int    `env:"DB_PORT, default=5432"`
	User     string `env:"DB_USER, default=backend"`
	Password string `env:"DB_PASSWORD, default=password"`
	DBName   string `env:"DB_NAME, default=backend_db"`
	UseSSL   bool   `env:"DB_SSL, default=false"`
}

type SessionConfig struct {
	Secret string        `env:"JWT_SECRET"`
	TTL    time.Duration `env:"SESSION_TTL, default=24h"`
	Store  string        `env:"SESSION_STORE, default=memory"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB, default=0"`
}

type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS, default=*"`
}

type MQConfig struct {
	Backend  string `env:"MQ_BACKEND, default=none"`
	Channel  string `env:"ACCOUNT_EVENTS_CHANNEL, default=accounts"`
	RabbitMQ RabbitMQConfig
	PubSub   PubSubConfig
}

type RabbitMQConfig struct {
	URL             string `env:"RABBITMQ_URL"`
	QueueDurable    bool   `env:"RABBITMQ_QUEUE_DURABLE, default=true"`
	QueueAutoDelete bool   `env:"RABBITMQ_QUEUE_AUTO_DELETE, default=false"`
}

type PubSubConfig struct {
	ProjectID       string `env:"PUBSUB_PROJECT_ID"`
	CredentialsFile string `env:"PUBSUB_CREDENTIALS_FILE"`
}

// LoadConfig reads the environment, loading a local .env file first in dev.
func LoadConfig(ctx context.Context) (Config, error) {
	if os.Getenv("ENV") == "dev" {
		_ = godotenv.Load()
	}

	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// Validate reports settings the server cannot start with.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Session.Secret) == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.Session.TTL <= 0 {
		return errors.New("SESSION_TTL must be positive")
	}
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	switch c.Session.Store {
	case SessionStoreMemory, SessionStoreRedis:
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", c.Session.Store)
	}
	switch c.MQ.Backend {
	case MQBackendNone, MQBackendRabbitMQ, MQBackendPubSub:
	default:
		return fmt.Errorf("unsupported MQ_BACKEND %q", c.MQ.Backend)
	}
	return nil
}

// PostgresURL builds a lib/pq connection URL.
func (d DatabaseConfig) PostgresURL() string {
	sslmode := "disable"
	if d.UseSSL {
		sslmode = "require"
	}

	u := &url.URL{
		Scheme: "postgres",
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		User:   url.UserPassword(d.User, d.Password),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", sslmode)
	u.RawQuery = q.Encode()
	return u.String()
}

// SQLiteDSN builds a modernc.org/sqlite DSN for the configured file.
func (d DatabaseConfig) SQLiteDSN() string {
	return "file:" + d.Path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
}

// MigrateURL returns the golang-migrate database URL for the configured driver.
func (d DatabaseConfig) MigrateURL() string {
	if d.Driver == DriverPostgres {
		return d.PostgresURL()
	}
	return "sqlite://" + d.Path
}
