// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/moviematch/moviematch/internal/models"
)

// brokerHealthy reports broker connectivity. Brokers without a health probe
// (the in-process gochannel backend) count as healthy.
func (h *Handler) brokerHealthy() bool {
	if reporter, ok := h.broker.(healthReporter); ok {
		return reporter.Healthy()
	}
	return h.broker != nil
}

// Health reports overall component health.
//
// Method: GET
// Path: /api/v1/health
//
// Returns "healthy" when the database and broker are both reachable,
// "degraded" otherwise. Always 200; use /health/ready for a gating probe.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	brokerConnected := h.brokerHealthy()

	status := "healthy"
	if !dbConnected || !brokerConnected {
		status = "degraded"
	}

	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: models.HealthResponse{
			Status:  status,
			Service: "moviematch",
			Details: map[string]string{
				"database_connected": strconv.FormatBool(dbConnected),
				"broker_connected":   strconv.FormatBool(brokerConnected),
				"uptime_seconds":     strconv.FormatFloat(time.Since(h.startTime).Seconds(), 'f', 0, 64),
			},
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthLive is the liveness probe. It returns 200 whenever the process is
// up, regardless of dependency state.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, &models.APIResponse{
		Status: "success",
		Data: map[string]interface{}{
			"alive":  true,
			"uptime": time.Since(h.startTime).Seconds(),
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}

// HealthReady is the readiness probe. It returns 200 only when the service
// can actually take traffic, 503 otherwise.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	dbConnected := h.db != nil && h.db.Ping(r.Context()) == nil
	brokerConnected := h.brokerHealthy()
	ready := dbConnected && brokerConnected

	statusCode := http.StatusOK
	status := "ready"
	if !ready {
		statusCode = http.StatusServiceUnavailable
		status = "not_ready"
	}

	respondJSON(w, statusCode, &models.APIResponse{
		Status: status,
		Data: map[string]interface{}{
			"database_connected": dbConnected,
			"broker_connected":   brokerConnected,
			"ready_to_serve":     ready,
		},
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
	})
}
