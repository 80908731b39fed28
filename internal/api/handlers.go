// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/moviematch/moviematch/internal/auth"
	"github.com/moviematch/moviematch/internal/models"
	"github.com/moviematch/moviematch/internal/orchestrator"
	"github.com/moviematch/moviematch/internal/queue"
)

// Pinger is the connectivity check the health endpoints run against the
// persistence store. *database.DB satisfies it.
type Pinger interface {
	Ping(ctx context.Context) error
}

// healthReporter is implemented by brokers that can report connectivity.
// The in-process gochannel broker does not; it counts as always healthy.
type healthReporter interface {
	Healthy() bool
}

// Handler holds the dependencies of all HTTP handlers.
type Handler struct {
	orch      *orchestrator.Service
	auth      *auth.Service
	db        Pinger
	broker    queue.Broker
	startTime time.Time
}

// NewHandler creates the handler set for the API surface.
func NewHandler(orch *orchestrator.Service, authSvc *auth.Service, db Pinger, broker queue.Broker) *Handler {
	return &Handler{
		orch:      orch,
		auth:      authSvc,
		db:        db,
		broker:    broker,
		startTime: time.Now(),
	}
}

// SubmitRecommendation accepts a recommendation request and enqueues a job.
//
// Method: POST
// Path: /api/v1/recommendations/{mode}
//
// Response:
//   - 202: job accepted, body carries {job_id, status: "queued"}
//   - 200: answered from the result cache, status is already "completed"
//   - 400: unknown mode or invalid top_k; no job was created
//   - 401: missing or invalid bearer token
//   - 503: job broker unreachable; no job was created
func (h *Handler) SubmitRecommendation(w http.ResponseWriter, r *http.Request) {
	mode, err := models.ParseMode(chi.URLParam(r, "mode"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown recommendation mode", err)
		return
	}

	var req models.RecommendationRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	principal, _ := auth.PrincipalFromContext(r.Context())

	status, err := h.orch.Submit(r.Context(), mode, req, principal)
	if err != nil {
		if errors.Is(err, queue.ErrBrokerUnavailable) {
			respondError(w, http.StatusServiceUnavailable, "UPSTREAM_UNAVAILABLE", "Job queue is unavailable, try again later", err)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to submit job", err)
		return
	}

	// A cache hit comes back already completed; a fresh job is queued.
	httpStatus := http.StatusAccepted
	cached := status.State == models.JobCompleted
	if cached {
		httpStatus = http.StatusOK
	}

	respondJSON(w, httpStatus, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Cached:    cached,
		},
	})
}

// JobStatus returns the current state of a submitted job.
//
// Method: GET
// Path: /api/v1/recommendations/jobs/{job_id}
//
// Response:
//   - 200: status document; result present iff completed, error iff failed
//   - 404: id was never issued or its status has expired
func (h *Handler) JobStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")

	status, err := h.orch.Job(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, queue.ErrJobNotFound) {
			respondError(w, http.StatusNotFound, "NOT_FOUND", "Unknown job id", nil)
			return
		}
		respondError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to read job status", err)
		return
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data:   status,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
