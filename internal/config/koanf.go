// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order
// of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/moviematch/config.yaml",
	"/etc/moviematch/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// envPrefix namespaces the environment variables read by Load.
const envPrefix = "MOVIEMATCH_"

// defaultConfig returns a Config with all sensible default values.
// Defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8080,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
		},
		Database: DatabaseConfig{
			Path:           "/data/moviematch.duckdb",
			MaxMemory:      "1GB",
			Threads:        0, // 0 = use runtime.NumCPU()
			SeedSampleData: false,
		},
		Cache: CacheConfig{
			Backend:   "memory",
			TTL:       5 * time.Minute,
			RedisAddr: "localhost:6379",
			RedisDB:   0,
		},
		Broker: BrokerConfig{
			Backend: "gochannel",
			NATS: NATSConfig{
				URL:              "nats://127.0.0.1:4222",
				EmbeddedServer:   true,
				StoreDir:         "/data/nats/jetstream",
				StreamName:       "RECOMMENDATION_JOBS",
				DurableName:      "recommendation-worker",
				QueueGroup:       "workers",
				SubscribersCount: 2,
				MaxReconnects:    10,
				ReconnectWait:    2 * time.Second,
				AckWaitTimeout:   30 * time.Second,
				ConnectTimeout:   10 * time.Second,
				ShutdownTimeout:  10 * time.Second,
			},
		},
		JobStore: JobStoreConfig{
			Backend:   "memory",
			Path:      "/data/jobs",
			StatusTTL: time.Hour,
		},
		Auth: AuthConfig{
			JWTSecret:       "",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			AutoCreateUsers: true,
		},
		Worker: WorkerConfig{
			RetryAttempts:           3,
			RetryBackoff:            200 * time.Millisecond,
			Concurrency:             2,
			BreakerFailureThreshold: 5,
			BreakerOpenTimeout:      15 * time.Second,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// Load builds the configuration from layered sources:
//  1. Defaults: built-in sensible defaults
//  2. Config file: optional YAML file (if one exists)
//  3. Environment variables: MOVIEMATCH_* overrides any setting
//
// Precedence: ENV > file > defaults.
func Load() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	// Layer 2: optional config file
	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables (highest priority)
	// MOVIEMATCH_BROKER_NATS_URL -> broker.nats.url
	envProvider := env.Provider(envPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches for a config file in the default paths.
// Returns the first file found, or empty string if none.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists config paths parsed as comma-separated slices when
// they arrive via environment variables.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

// processSliceFields converts comma-separated env strings to slices for known
// slice fields. YAML-provided slices pass through untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		strVal, ok := val.(string)
		if !ok || strVal == "" {
			continue
		}
		parts := strings.Split(strVal, ",")
		trimmed := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				trimmed = append(trimmed, p)
			}
		}
		if len(trimmed) > 0 {
			if err := k.Set(path, trimmed); err != nil {
				return fmt.Errorf("set %s: %w", path, err)
			}
		}
	}
	return nil
}

// envTransformFunc maps environment variable names to koanf config paths.
//
// Examples:
//   - MOVIEMATCH_SERVER_PORT        -> server.port
//   - MOVIEMATCH_AUTH_JWT_SECRET    -> auth.jwt_secret
//   - MOVIEMATCH_BROKER_NATS_URL    -> broker.nats.url
//   - MOVIEMATCH_CACHE_REDIS_ADDR   -> cache.redis_addr
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, envPrefix))

	// Section prefixes become path segments; the remainder keeps its
	// underscores because field names contain them (jwt_secret, redis_addr).
	sections := []string{"server", "database", "cache", "broker", "jobstore", "auth", "worker", "logging"}
	for _, s := range sections {
		if strings.HasPrefix(key, s+"_") {
			rest := strings.TrimPrefix(key, s+"_")
			// broker.nats has nested fields
			if s == "broker" && strings.HasPrefix(rest, "nats_") {
				return "broker.nats." + strings.TrimPrefix(rest, "nats_")
			}
			return s + "." + rest
		}
	}
	return key
}
