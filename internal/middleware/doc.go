// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

/*
Package middleware provides HTTP middleware components for the API server.

This package implements infrastructure middleware for request ID tracking and
Prometheus metrics instrumentation. These components work alongside the
authentication middleware in internal/auth to form the middleware stack the
chi router applies to every route group.

Key Components:

  - Request ID: UUID-based request tracking that threads an ID through the
    response header and the zerolog context for distributed tracing
  - Prometheus Metrics: HTTP request instrumentation labeled by method, chi
    route pattern, and status code

Usage Example - Request ID:

	r := chi.NewRouter()
	r.Use(middleware.RequestID)

	// Access the request ID in a handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := middleware.GetRequestID(r.Context())
	    logging.Ctx(r.Context()).Info().Msg("processing request")
	}

Usage Example - Prometheus Metrics:

	r.Use(middleware.PrometheusMetrics)

	// Latency is recorded against the route PATTERN, not the raw path,
	// so /api/v1/recommendations/jobs/{job_id} stays one series.

Thread Safety:

All middleware components are thread-safe: request ID uses context.Context
(immutable per request) and the metrics middleware records through atomic
Prometheus collectors.

See Also:

  - internal/auth: JWT authentication middleware
  - internal/api: HTTP handlers wrapped by this middleware
  - internal/metrics: Prometheus metric definitions
*/
package middleware
