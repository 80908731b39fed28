// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"

	"github.com/moviematch/moviematch/internal/models"
)

const jobKeyPrefix = "job:"

// BadgerJobStore is the durable JobStore. Status records survive restarts;
// terminal records carry a badger TTL so they expire without a sweeper.
type BadgerJobStore struct {
	db        *badger.DB
	statusTTL time.Duration
}

// NewBadgerJobStore opens (or creates) the badger directory. An empty path
// opens an in-memory instance, which the tests use.
func NewBadgerJobStore(path string, statusTTL time.Duration) (*BadgerJobStore, error) {
	opts := badger.DefaultOptions(path).WithLogger(nil)
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", path, err)
	}
	return &BadgerJobStore{db: db, statusTTL: statusTTL}, nil
}

func jobKey(jobID string) []byte {
	return []byte(jobKeyPrefix + jobID)
}

func (s *BadgerJobStore) setStatus(txn *badger.Txn, status *models.JobStatus) error {
	data, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal job status %s: %w", status.JobID, err)
	}
	entry := badger.NewEntry(jobKey(status.JobID), data)
	if status.State.Terminal() {
		entry = entry.WithTTL(s.statusTTL)
	}
	return txn.SetEntry(entry)
}

func (s *BadgerJobStore) Create(ctx context.Context, job *models.Job, state models.JobState, result *models.RecommendationResponse) error {
	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(jobKey(job.ID))
		if err == nil {
			return fmt.Errorf("%w: %s", ErrJobExists, job.ID)
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check job %s: %w", job.ID, err)
		}
		return s.setStatus(txn, &models.JobStatus{
			JobID:     job.ID,
			State:     state,
			Result:    result,
			UpdatedAt: time.Now().UTC(),
		})
	})
}

func (s *BadgerJobStore) Transition(ctx context.Context, jobID string, to models.JobState, result *models.RecommendationResponse, errText string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		status, err := s.getStatus(txn, jobID)
		if err != nil {
			return err
		}
		if !status.State.CanTransition(to) {
			return fmt.Errorf("%w: %s -> %s for job %s", ErrInvalidTransition, status.State, to, jobID)
		}
		status.State = to
		status.Result = result
		status.Error = errText
		status.UpdatedAt = time.Now().UTC()
		return s.setStatus(txn, status)
	})
}

func (s *BadgerJobStore) Get(ctx context.Context, jobID string) (*models.JobStatus, error) {
	var status *models.JobStatus
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		status, err = s.getStatus(txn, jobID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return status, nil
}

func (s *BadgerJobStore) getStatus(txn *badger.Txn, jobID string) (*models.JobStatus, error) {
	item, err := txn.Get(jobKey(jobID))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrJobNotFound, jobID)
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", jobID, err)
	}
	var status models.JobStatus
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &status)
	}); err != nil {
		return nil, fmt.Errorf("decode job %s: %w", jobID, err)
	}
	return &status, nil
}

func (s *BadgerJobStore) Delete(ctx context.Context, jobID string) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(jobKey(jobID))
	})
}

func (s *BadgerJobStore) Close() error {
	return s.db.Close()
}
