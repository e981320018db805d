// Package config loads service configuration from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config aggregates application configuration values.
type Config struct {
	HTTP     HTTP
	Database Database
	Redis    Redis
	Kafka    Kafka
	Auth     Auth
	Log      Log
}

// HTTP governs HTTP server behaviour.
type HTTP struct {
	Port            string        `env:"PORT"                  envDefault:"8080"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"15s"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"15s"`
	IdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// Database holds PostgreSQL connection settings.
type Database struct {
	Host            string        `env:"DB_HOST"              envDefault:"localhost"`
	Port            string        `env:"DB_PORT"              envDefault:"5432"`
	User            string        `env:"DB_USER"              envDefault:"postgres"`
	Password        string        `env:"DB_PASSWORD"          envDefault:"postgres"`
	Name            string        `env:"DB_NAME"              envDefault:"registration"`
	SSLMode         string        `env:"DB_SSLMODE"           envDefault:"disable"`
	MaxConns        int32         `env:"DB_MAX_CONNS"         envDefault:"20"`
	MinConns        int32         `env:"DB_MIN_CONNS"         envDefault:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" envDefault:"30m"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE"     envDefault:"5m"`
	ConnectAttempts int           `env:"DB_CONNECT_ATTEMPTS"  envDefault:"5"`
}

// DSN builds a libpq-compatible connection string.
func (c Database) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Redis configures the age rule cache. An empty address disables it.
type Redis struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB"       envDefault:"0"`
	RuleTTL  time.Duration `env:"REDIS_RULE_TTL" envDefault:"5m"`
}

// Kafka configures the outbox relay. No brokers disables it.
type Kafka struct {
	Brokers      []string      `env:"KAFKA_BROKERS"       envSeparator:","`
	Topic        string        `env:"KAFKA_TOPIC"         envDefault:"registration.events"`
	PollInterval time.Duration `env:"OUTBOX_POLL_INTERVAL" envDefault:"2s"`
	BatchSize    int           `env:"OUTBOX_BATCH_SIZE"    envDefault:"100"`
}

// Auth configures bearer token verification.
type Auth struct {
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
}

// Log controls structured logging.
type Log struct {
	Level  string `env:"LOG_LEVEL"  envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads configuration from the environment, applying defaults.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Kafka.BatchSize <= 0 {
		return Config{}, fmt.Errorf("OUTBOX_BATCH_SIZE must be positive, got %d", cfg.Kafka.BatchSize)
	}
	return cfg, nil
}
