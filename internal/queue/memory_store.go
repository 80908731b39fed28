// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/moviematch/moviematch/internal/models"
)

type memoryRecord struct {
	status    models.JobStatus
	expiresAt time.Time // zero until terminal
}

// MemoryJobStore is the in-process JobStore. Terminal records expire after
// statusTTL via a background sweep.
type MemoryJobStore struct {
	mu      sync.RWMutex
	records map[string]*memoryRecord

	statusTTL time.Duration
	done      chan struct{}
	closeOnce sync.Once
}

func NewMemoryJobStore(statusTTL time.Duration) *MemoryJobStore {
	s := &MemoryJobStore{
		records:   make(map[string]*memoryRecord),
		statusTTL: statusTTL,
		done:      make(chan struct{}),
	}
	go s.sweepLoop()
	return s
}

func (s *MemoryJobStore) Create(ctx context.Context, job *models.Job, state models.JobState, result *models.RecommendationResponse) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[job.ID]; ok {
		return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
	}
	rec := &memoryRecord{status: models.JobStatus{
		JobID:     job.ID,
		State:     state,
		Result:    result,
		UpdatedAt: time.Now().UTC(),
	}}
	if state.Terminal() {
		rec.expiresAt = time.Now().Add(s.statusTTL)
	}
	s.records[job.ID] = rec
	return nil
}

func (s *MemoryJobStore) Transition(ctx context.Context, jobID string, to models.JobState, result *models.RecommendationResponse, errText string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[jobID]
	if !ok || s.expired(rec) {
		return fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if !rec.status.State.CanTransition(to) {
		return fmt.Errorf("%w: %s -> %s for job %s", ErrInvalidTransition, rec.status.State, to, jobID)
	}

	rec.status.State = to
	rec.status.Result = result
	rec.status.Error = errText
	rec.status.UpdatedAt = time.Now().UTC()
	if to.Terminal() {
		rec.expiresAt = time.Now().Add(s.statusTTL)
	}
	return nil
}

func (s *MemoryJobStore) Get(ctx context.Context, jobID string) (*models.JobStatus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[jobID]
	if !ok || s.expired(rec) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	status := rec.status
	return &status, nil
}

func (s *MemoryJobStore) Delete(ctx context.Context, jobID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, jobID)
	return nil
}

func (s *MemoryJobStore) Close() error {
	s.closeOnce.Do(func() { close(s.done) })
	return nil
}

func (s *MemoryJobStore) expired(rec *memoryRecord) bool {
	return !rec.expiresAt.IsZero() && time.Now().After(rec.expiresAt)
}

func (s *MemoryJobStore) sweepLoop() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.sweep()
		}
	}
}

func (s *MemoryJobStore) sweep() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, rec := range s.records {
		if s.expired(rec) {
			delete(s.records, id)
		}
	}
}
