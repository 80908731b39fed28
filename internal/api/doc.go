// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

/*
Package api provides the HTTP boundary of the recommendation platform.

The package wires a chi router around the orchestration service: submit a
recommendation job, poll its status, authenticate, and observe health and
metrics. All responses use the models.APIResponse envelope with a stable
error code taxonomy, so callers never see raw internal errors.

Endpoints:

  - POST /api/v1/recommendations/{mode}        submit a job (202, or 200 on cache hit)
  - GET  /api/v1/recommendations/jobs/{job_id} poll job status (200, 404 unknown)
  - POST /api/v1/auth/login                    obtain an access/refresh token pair
  - POST /api/v1/auth/refresh                  rotate the pair with a refresh token
  - GET  /api/v1/health                        component health summary
  - GET  /api/v1/health/live                   liveness probe
  - GET  /api/v1/health/ready                  readiness probe
  - GET  /metrics                              Prometheus exposition

The recommendation endpoints require a bearer access token. Auth endpoints
carry strict rate limits; health endpoints carry permissive ones.
*/
package api
