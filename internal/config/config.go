// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package config loads and validates the MovieMatch configuration.
//
// Configuration is layered with koanf v2: built-in defaults, then an optional
// YAML file, then environment variables (highest priority). Every knob the
// orchestrator, broker, workers and stores expose is declared here so wiring
// stays in one place.
package config

import (
	"fmt"
	"time"
)

// Config is the root configuration for all MovieMatch services.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Database DatabaseConfig `koanf:"database"`
	Cache    CacheConfig    `koanf:"cache"`
	Broker   BrokerConfig   `koanf:"broker"`
	JobStore JobStoreConfig `koanf:"jobstore"`
	Auth     AuthConfig     `koanf:"auth"`
	Worker   WorkerConfig   `koanf:"worker"`
	Logging  LoggingConfig  `koanf:"logging"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Host    string        `koanf:"host"`
	Port    int           `koanf:"port"`
	Timeout time.Duration `koanf:"timeout"`

	// CORSOrigins lists allowed browser origins. Default: any.
	CORSOrigins []string `koanf:"cors_origins"`

	// Rate limiting applied to the recommendation endpoints.
	RateLimitReqs     int           `koanf:"rate_limit_reqs"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
}

// DatabaseConfig configures the DuckDB persistence store.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" keeps everything in-process,
	// which the tests rely on.
	Path      string `koanf:"path"`
	MaxMemory string `koanf:"max_memory"`
	Threads   int    `koanf:"threads"` // 0 = runtime.NumCPU()

	// SeedSampleData loads a small demo catalog at startup when the movies
	// table is empty.
	SeedSampleData bool `koanf:"seed_sample_data"`
}

// CacheConfig configures the result cache.
type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend string `koanf:"backend"`

	// TTL is how long a computed recommendation response stays cached.
	TTL time.Duration `koanf:"ttl"`

	// Redis connection settings, used when Backend is "redis".
	RedisAddr     string `koanf:"redis_addr"`
	RedisPassword string `koanf:"redis_password"`
	RedisDB       int    `koanf:"redis_db"`
}

// BrokerConfig configures the job queue broker.
type BrokerConfig struct {
	// Backend selects the broker: "gochannel" (in-process) or "nats"
	// (durable JetStream).
	Backend string `koanf:"backend"`

	NATS NATSConfig `koanf:"nats"`
}

// NATSConfig configures the JetStream broker backend.
type NATSConfig struct {
	URL string `koanf:"url"`

	// EmbeddedServer runs a nats-server inside this process for
	// single-node deployments.
	EmbeddedServer bool   `koanf:"embedded_server"`
	StoreDir       string `koanf:"store_dir"`

	StreamName  string `koanf:"stream_name"`
	DurableName string `koanf:"durable_name"`
	QueueGroup  string `koanf:"queue_group"`

	// SubscribersCount is the number of concurrent consumers per topic.
	SubscribersCount int `koanf:"subscribers_count"`

	MaxReconnects   int           `koanf:"max_reconnects"`
	ReconnectWait   time.Duration `koanf:"reconnect_wait"`
	AckWaitTimeout  time.Duration `koanf:"ack_wait_timeout"`
	ConnectTimeout  time.Duration `koanf:"connect_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// JobStoreConfig configures the job status store.
type JobStoreConfig struct {
	// Backend selects the store: "memory" or "badger".
	Backend string `koanf:"backend"`

	// Path is the badger directory, used when Backend is "badger".
	Path string `koanf:"path"`

	// StatusTTL bounds how long a terminal job status stays observable
	// before it expires from the store.
	StatusTTL time.Duration `koanf:"status_ttl"`
}

// AuthConfig configures JWT issuance and password login.
type AuthConfig struct {
	// JWTSecret signs access and refresh tokens. Required; minimum 32
	// characters.
	JWTSecret string `koanf:"jwt_secret"`

	AccessTokenTTL  time.Duration `koanf:"access_token_ttl"`
	RefreshTokenTTL time.Duration `koanf:"refresh_token_ttl"`

	// AutoCreateUsers registers unknown emails on first login instead of
	// rejecting them. Convenient for demos, off for production.
	AutoCreateUsers bool `koanf:"auto_create_users"`
}

// WorkerConfig configures the per-mode worker pools.
type WorkerConfig struct {
	// RetryAttempts is the fixed attempt budget for one job's
	// scoring+fallback sequence.
	RetryAttempts int `koanf:"retry_attempts"`

	// RetryBackoff is the base backoff between attempts; it doubles after
	// each failed attempt.
	RetryBackoff time.Duration `koanf:"retry_backoff"`

	// Concurrency is the number of execution contexts per mode queue.
	Concurrency int `koanf:"concurrency"`

	// BreakerFailureThreshold is the consecutive-failure count that trips
	// the store circuit breaker.
	BreakerFailureThreshold uint32 `koanf:"breaker_failure_threshold"`

	// BreakerOpenTimeout is how long the breaker stays open before probing.
	BreakerOpenTimeout time.Duration `koanf:"breaker_open_timeout"`
}

// LoggingConfig configures the zerolog sink.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Validate checks invariants that cannot be expressed as defaults.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("cache.backend %q must be memory or redis", c.Cache.Backend)
	}
	switch c.Broker.Backend {
	case "gochannel", "nats":
	default:
		return fmt.Errorf("broker.backend %q must be gochannel or nats", c.Broker.Backend)
	}
	switch c.JobStore.Backend {
	case "memory", "badger":
	default:
		return fmt.Errorf("jobstore.backend %q must be memory or badger", c.JobStore.Backend)
	}
	if c.JobStore.Backend == "badger" && c.JobStore.Path == "" {
		return fmt.Errorf("jobstore.path is required for the badger backend")
	}
	if c.Worker.RetryAttempts < 1 {
		return fmt.Errorf("worker.retry_attempts must be at least 1")
	}
	if c.Worker.Concurrency < 1 {
		return fmt.Errorf("worker.concurrency must be at least 1")
	}
	return nil
}
