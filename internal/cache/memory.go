// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package cache

import (
	"context"
	"sync"
	"time"
)

// entry is a cached payload with its expiry.
type entry struct {
	data      []byte
	expiresAt time.Time
}

// Memory is a thread-safe in-memory cache with TTL support. It is the
// default backend for single-node deployments and the fallback when no
// external cache is reachable.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	stats   Stats
	done    chan struct{}
	closed  sync.Once
}

// Stats tracks cache performance counters.
type Stats struct {
	mu        sync.Mutex
	Hits      int64
	Misses    int64
	Evictions int64
}

// cleanupInterval is how often the background sweep removes expired entries.
const cleanupInterval = 5 * time.Minute

// NewMemory creates an in-memory cache with the given default TTL.
// A background goroutine sweeps expired entries until Close is called.
func NewMemory(ttl time.Duration) *Memory {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	m := &Memory{
		entries: make(map[string]entry),
		ttl:     ttl,
		done:    make(chan struct{}),
	}
	go m.cleanupLoop()
	return m
}

// Get retrieves a payload, removing it on expiry.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	e, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists {
		m.recordMiss()
		return nil, false, nil
	}

	if time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		m.recordMiss()
		m.recordEviction()
		return nil, false, nil
	}

	m.recordHit()
	return e.data, true, nil
}

// Set stores a payload. A non-positive ttl uses the cache default.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = m.ttl
	}
	m.mu.Lock()
	m.entries[key] = entry{data: value, expiresAt: time.Now().Add(ttl)}
	m.mu.Unlock()
	return nil
}

// Delete removes an entry.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	m.recordEviction()
	return nil
}

// Close stops the background cleanup goroutine.
func (m *Memory) Close() error {
	m.closed.Do(func() { close(m.done) })
	return nil
}

// GetStats returns a snapshot of the cache counters.
func (m *Memory) GetStats() (hits, misses, evictions int64) {
	m.stats.mu.Lock()
	defer m.stats.mu.Unlock()
	return m.stats.Hits, m.stats.Misses, m.stats.Evictions
}

// HitRate returns the cache hit rate as a percentage.
func (m *Memory) HitRate() float64 {
	hits, misses, _ := m.GetStats()
	total := hits + misses
	if total == 0 {
		return 0.0
	}
	return float64(hits) / float64(total) * 100.0
}

// cleanupLoop periodically removes expired entries.
func (m *Memory) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.cleanup()
		case <-m.done:
			return
		}
	}
}

// cleanup removes all expired entries.
func (m *Memory) cleanup() {
	now := time.Now()
	m.mu.Lock()
	evictions := int64(0)
	for key, e := range m.entries {
		if now.After(e.expiresAt) {
			delete(m.entries, key)
			evictions++
		}
	}
	m.mu.Unlock()

	m.stats.mu.Lock()
	m.stats.Evictions += evictions
	m.stats.mu.Unlock()
}

func (m *Memory) recordHit() {
	m.stats.mu.Lock()
	m.stats.Hits++
	m.stats.mu.Unlock()
}

func (m *Memory) recordMiss() {
	m.stats.mu.Lock()
	m.stats.Misses++
	m.stats.mu.Unlock()
}

func (m *Memory) recordEviction() {
	m.stats.mu.Lock()
	m.stats.Evictions++
	m.stats.mu.Unlock()
}

var _ Cacher = (*Memory)(nil)
