package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config captures everything the server needs from the environment so main
// stays lean. Parsing is struct-tag driven; defaults suit local development
// and must be overridden in production.
type Config struct {
	Addr          string `env:"CUSTODIA_ADDR" envDefault:":8080"`
	JWTSigningKey string `env:"JWT_SIGNING_KEY" envDefault:"dev-secret-key-change-in-production"`
	JWTIssuer     string `env:"JWT_ISSUER" envDefault:"custodia"`

	Postgres PostgresConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Sweep    SweepConfig
}

// PostgresConfig configures the primary store. An empty URL selects the
// in-memory stores, which keeps local runs and unit tests free of containers.
type PostgresConfig struct {
	URL          string        `env:"POSTGRES_URL"`
	MaxOpenConns int           `env:"POSTGRES_MAX_OPEN_CONNS" envDefault:"25"`
	MaxIdleConns int           `env:"POSTGRES_MAX_IDLE_CONNS" envDefault:"5"`
	ConnLifetime time.Duration `env:"POSTGRES_CONN_LIFETIME" envDefault:"30m"`
}

// RedisConfig configures the statistics snapshot cache. An empty URL disables
// caching; reads fall through to the aggregator.
type RedisConfig struct {
	URL          string        `env:"REDIS_URL"`
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`
	SummaryTTL   time.Duration `env:"REDIS_SUMMARY_TTL" envDefault:"1m"`
}

// KafkaConfig configures the audit outbox publisher. Empty brokers disable
// publishing; outbox rows accumulate until a publisher drains them.
type KafkaConfig struct {
	Brokers      []string      `env:"KAFKA_BROKERS" envSeparator:","`
	AuditTopic   string        `env:"KAFKA_AUDIT_TOPIC" envDefault:"custodia.audit"`
	PollInterval time.Duration `env:"KAFKA_OUTBOX_POLL_INTERVAL" envDefault:"2s"`
}

// SweepConfig configures the delinquency reconciliation sweep.
type SweepConfig struct {
	Interval    time.Duration `env:"SWEEP_INTERVAL" envDefault:"24h"`
	Parallelism int           `env:"SWEEP_PARALLELISM" envDefault:"8"`
}

// Load builds a Config from environment variables.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse config from env: %w", err)
	}
	return cfg, nil
}
