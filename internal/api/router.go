// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/moviematch/moviematch/internal/auth"
	"github.com/moviematch/moviematch/internal/middleware"
)

// Router assembles the HTTP surface from handlers and middleware.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	authenticator *auth.Authenticator
}

// NewRouter creates a router. The authenticator guards the recommendation
// endpoints; its rejections are rendered through the API error envelope.
func NewRouter(handler *Handler, mw *ChiMiddleware, jwt *auth.JWTManager) *Router {
	authenticator := auth.NewAuthenticator(jwt, func(w http.ResponseWriter, r *http.Request, reason string) {
		respondError(w, http.StatusUnauthorized, "UNAUTHORIZED", reason, nil)
	})

	return &Router{
		handler:       handler,
		chiMiddleware: mw,
		authenticator: authenticator,
	}
}

// Setup configures all HTTP routes.
func (router *Router) Setup() http.Handler {
	r := chi.NewRouter()

	// Global middleware, applied to every route in order.
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS()) // global so OPTIONS preflight is handled

	// Health endpoints: permissive rate limiting for monitoring.
	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Get("/", router.handler.Health)
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	// Auth endpoints: strict rate limiting against brute force.
	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitAuth())
		r.Post("/login", router.handler.Login)
		r.Post("/refresh", router.handler.Refresh)
	})

	// Recommendation endpoints: authenticated, instrumented, rate limited.
	r.Route("/api/v1/recommendations", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimit())
		r.Use(middleware.PrometheusMetrics)
		r.Use(router.authenticator.Middleware)

		r.Post("/{mode}", router.handler.SubmitRecommendation)
		r.Get("/jobs/{job_id}", router.handler.JobStatus)
	})

	// Prometheus exposition.
	r.Handle("/metrics", promhttp.Handler())

	return r
}
