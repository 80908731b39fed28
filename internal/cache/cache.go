// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package cache provides the result cache for computed recommendations.
//
// The cache maps a request fingerprint to a serialized RecommendationResponse
// with a TTL. It is a pure key/value overlay: a write here is never
// transactional with the persistence store, and losing an entry only costs
// one recomputation.
package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/models"
)

// Cacher is the injected cache dependency. Both the in-memory TTL cache and
// the Redis cache implement it, and tests substitute deterministic fakes.
type Cacher interface {
	// Get retrieves a serialized payload. The second return is false on
	// miss or expiry. An error means the backend itself failed.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a payload with the given TTL.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes an entry. Removing a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// New creates a cache from configuration: "memory" or "redis".
func New(cfg *config.CacheConfig) (Cacher, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedis(cfg)
	case "memory", "":
		return NewMemory(cfg.TTL), nil
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// Fingerprint derives the deterministic cache key for a recommendation
// request: rec:{mode}:{user}:{normalized query}:{top_k}. Identical inputs
// always map to the same entry, which is what makes the submit-time cache
// check observable to callers.
func Fingerprint(mode models.Mode, userID int64, query string, topK int) string {
	return fmt.Sprintf("rec:%s:%d:%s:%d", mode, userID, strings.TrimSpace(query), topK)
}
