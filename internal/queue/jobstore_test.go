// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package queue

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/moviematch/moviematch/internal/models"
)

func testJob(id string) *models.Job {
	return &models.Job{
		ID:        id,
		Mode:      models.ModeCollaborative,
		Request:   models.RecommendationRequest{UserID: 1, TopK: 10},
		CreatedAt: time.Now().UTC(),
	}
}

// jobStores builds one of each backend so every lifecycle test runs against
// both implementations.
func jobStores(t *testing.T, ttl time.Duration) map[string]JobStore {
	t.Helper()

	badgerStore, err := NewBadgerJobStore("", ttl)
	if err != nil {
		t.Fatalf("NewBadgerJobStore() error = %v", err)
	}
	stores := map[string]JobStore{
		"memory": NewMemoryJobStore(ttl),
		"badger": badgerStore,
	}
	t.Cleanup(func() {
		for name, s := range stores {
			if err := s.Close(); err != nil {
				t.Errorf("%s Close() error = %v", name, err)
			}
		}
	})
	return stores
}

func TestJobStoreLifecycle(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-1")
			if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}

			status, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if status.State != models.JobQueued {
				t.Errorf("state = %s, want queued", status.State)
			}

			steps := []models.JobState{models.JobRunning, models.JobRetrying, models.JobRunning}
			for _, next := range steps {
				if err := store.Transition(ctx, job.ID, next, nil, ""); err != nil {
					t.Fatalf("Transition(%s) error = %v", next, err)
				}
			}

			result := &models.RecommendationResponse{Mode: job.Mode, TraceID: "t-1"}
			if err := store.Transition(ctx, job.ID, models.JobCompleted, result, ""); err != nil {
				t.Fatalf("Transition(completed) error = %v", err)
			}

			status, err = store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get() after completion error = %v", err)
			}
			if status.State != models.JobCompleted {
				t.Errorf("state = %s, want completed", status.State)
			}
			if status.Result == nil || status.Result.TraceID != "t-1" {
				t.Errorf("result = %+v, want trace t-1", status.Result)
			}
		})
	}
}

func TestJobStoreTerminalStatesAreFrozen(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-terminal")
			if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := store.Transition(ctx, job.ID, models.JobFailed, nil, "no recommendations produced"); err != nil {
				t.Fatalf("Transition(failed) error = %v", err)
			}

			for _, next := range []models.JobState{models.JobQueued, models.JobRunning, models.JobCompleted, models.JobFailed} {
				err := store.Transition(ctx, job.ID, next, nil, "")
				if !errors.Is(err, ErrInvalidTransition) {
					t.Errorf("Transition(failed -> %s) error = %v, want ErrInvalidTransition", next, err)
				}
			}

			status, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if status.Error != "no recommendations produced" {
				t.Errorf("error text = %q", status.Error)
			}
		})
	}
}

func TestJobStoreRejectsBackwardTransition(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-backward")
			if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := store.Transition(ctx, job.ID, models.JobRunning, nil, ""); err != nil {
				t.Fatalf("Transition(running) error = %v", err)
			}

			err := store.Transition(ctx, job.ID, models.JobQueued, nil, "")
			if !errors.Is(err, ErrInvalidTransition) {
				t.Errorf("Transition(running -> queued) error = %v, want ErrInvalidTransition", err)
			}
		})
	}
}

func TestJobStoreUnknownJob(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrJobNotFound) {
				t.Errorf("Get(missing) error = %v, want ErrJobNotFound", err)
			}
			err := store.Transition(ctx, "missing", models.JobRunning, nil, "")
			if !errors.Is(err, ErrJobNotFound) {
				t.Errorf("Transition(missing) error = %v, want ErrJobNotFound", err)
			}
		})
	}
}

func TestJobStoreDuplicateCreate(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-dup")
			if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := store.Create(ctx, job, models.JobQueued, nil); !errors.Is(err, ErrJobExists) {
				t.Errorf("duplicate Create() error = %v, want ErrJobExists", err)
			}
		})
	}
}

func TestJobStoreDeleteRemovesRecord(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-del")
			if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
				t.Fatalf("Create() error = %v", err)
			}
			if err := store.Delete(ctx, job.ID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if _, err := store.Get(ctx, job.ID); !errors.Is(err, ErrJobNotFound) {
				t.Errorf("Get() after delete error = %v, want ErrJobNotFound", err)
			}
		})
	}
}

func TestMemoryJobStoreTerminalRecordExpires(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore(20 * time.Millisecond)
	t.Cleanup(func() { _ = store.Close() })

	job := testJob("job-ttl")
	if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := store.Transition(ctx, job.ID, models.JobCompleted, &models.RecommendationResponse{}, ""); err != nil {
		t.Fatalf("Transition(completed) error = %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	if _, err := store.Get(ctx, job.ID); !errors.Is(err, ErrJobNotFound) {
		t.Errorf("Get() after TTL error = %v, want ErrJobNotFound", err)
	}
}

func TestMemoryJobStoreNonTerminalRecordDoesNotExpire(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryJobStore(20 * time.Millisecond)
	t.Cleanup(func() { _ = store.Close() })

	job := testJob("job-live")
	if err := store.Create(ctx, job, models.JobQueued, nil); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	status, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if status.State != models.JobQueued {
		t.Errorf("state = %s, want queued", status.State)
	}
}

func TestCreateSyntheticCompletedJob(t *testing.T) {
	ctx := context.Background()

	for name, store := range jobStores(t, time.Hour) {
		t.Run(name, func(t *testing.T) {
			job := testJob("job-synthetic")
			result := &models.RecommendationResponse{Mode: job.Mode, TraceID: "cached"}
			if err := store.Create(ctx, job, models.JobCompleted, result); err != nil {
				t.Fatalf("Create(completed) error = %v", err)
			}

			status, err := store.Get(ctx, job.ID)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if status.State != models.JobCompleted || status.Result == nil {
				t.Errorf("status = %+v, want completed with result", status)
			}
		})
	}
}
