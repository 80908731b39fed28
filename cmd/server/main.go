// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

// Package main is the entry point for the MovieMatch server.
//
// MovieMatch is an asynchronous movie recommendation platform. Callers submit
// a recommendation request to the HTTP API and receive a job handle; per-mode
// workers consume the durable job queue, score the catalog, persist results,
// and populate the result cache. Callers poll the job handle until the job
// reaches a terminal state.
//
// # Application Architecture
//
// The server initializes components in the following order:
//
//  1. Configuration: layered defaults, YAML file, and MOVIEMATCH_ env vars (koanf v2)
//  2. Database: DuckDB catalog and recommendation store
//  3. Result cache: in-memory or Redis
//  4. Job queue: gochannel (in-process) or NATS JetStream broker plus the job
//     status store (memory or BadgerDB)
//  5. Scoring: per-mode scorers with collaborative fallback
//  6. Authentication: JWT access/refresh pairs over bcrypt password login
//  7. Supervisor tree: worker layer (queue consumers) and API layer (HTTP server)
//
// # Configuration
//
// Configuration is loaded via koanf v2 with layered sources (highest wins):
//   - Environment variables with the MOVIEMATCH_ prefix
//   - Config file (config.yaml)
//   - Built-in defaults
//
// The only required setting is the JWT secret:
//
//	export MOVIEMATCH_AUTH_JWT_SECRET=$(openssl rand -base64 32)
//	./moviematch
//
// A durable single-node deployment runs the embedded NATS server and Badger
// job store:
//
//	export MOVIEMATCH_BROKER_BACKEND=nats
//	export MOVIEMATCH_BROKER_NATS_EMBEDDED_SERVER=true
//	export MOVIEMATCH_JOBSTORE_BACKEND=badger
//	export MOVIEMATCH_JOBSTORE_PATH=/data/jobs
//	./moviematch
//
// # Signal Handling
//
// The server shuts down gracefully on SIGINT and SIGTERM: the HTTP server
// drains in-flight requests, the workers finish or nack their current jobs,
// and the broker, stores, and cache are closed in dependency order.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moviematch/moviematch/internal/api"
	"github.com/moviematch/moviematch/internal/auth"
	"github.com/moviematch/moviematch/internal/cache"
	"github.com/moviematch/moviematch/internal/config"
	"github.com/moviematch/moviematch/internal/database"
	"github.com/moviematch/moviematch/internal/logging"
	"github.com/moviematch/moviematch/internal/orchestrator"
	"github.com/moviematch/moviematch/internal/queue"
	"github.com/moviematch/moviematch/internal/recommend"
	"github.com/moviematch/moviematch/internal/supervisor"
	"github.com/moviematch/moviematch/internal/supervisor/services"
	"github.com/moviematch/moviematch/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("broker", cfg.Broker.Backend).
		Str("jobstore", cfg.JobStore.Backend).
		Str("cache", cfg.Cache.Backend).
		Str("db_path", cfg.Database.Path).
		Msg("Starting MovieMatch")

	// Persistence store: catalog, users, recommendation results.
	db, err := database.New(&cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	defer func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing database")
		}
	}()

	// Result cache.
	cacher, err := cache.New(&cfg.Cache)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize result cache")
	}
	defer func() {
		if err := cacher.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing cache")
		}
	}()

	// Job queue: broker plus status store.
	broker, err := queue.NewBroker(&cfg.Broker)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize job broker")
	}
	defer func() {
		if err := broker.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing broker")
		}
	}()

	jobStore, err := queue.NewJobStore(&cfg.JobStore)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize job store")
	}
	defer func() {
		if err := jobStore.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing job store")
		}
	}()

	dispatcher := queue.NewDispatcher(broker, jobStore)

	// Scoring engine shared by all worker consumers.
	registry := recommend.NewRegistry(db)
	engine := worker.NewEngine(registry, jobStore, db, cacher, cfg)

	// Authentication.
	jwtManager, err := auth.NewJWTManager(&cfg.Auth)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	authSvc := auth.NewService(db, jwtManager, cfg.Auth.AutoCreateUsers)
	if cfg.Auth.AutoCreateUsers {
		logging.Info().Msg("Auto-creating unknown users on first login")
	}

	// HTTP surface.
	orchSvc := orchestrator.NewService(dispatcher, cacher)
	handler := api.NewHandler(orchSvc, authSvc, db, broker)
	router := api.NewRouter(handler, api.NewChiMiddlewareFromConfig(&cfg.Server), jwtManager)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Setup(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
	}

	// Supervisor tree: worker layer and API layer.
	tree := supervisor.NewTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())

	subscriber := queue.AsSubscriber(broker)
	tree.AddWorkerService(services.NewWorkerService(func() (services.JobConsumer, error) {
		return worker.NewRunner(engine, subscriber, cfg.Broker.NATS.ShutdownTimeout, cfg.Worker.Concurrency)
	}))
	tree.AddAPIService(services.NewHTTPService(server, 10*time.Second))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logging.Info().Str("addr", server.Addr).Msg("MovieMatch listening")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree stopped with error")
	}

	if unstopped, err := tree.UnstoppedServiceReport(); err == nil && len(unstopped) > 0 {
		for _, svc := range unstopped {
			logging.Warn().Str("service", svc.Name).Msg("Service did not stop within timeout")
		}
	}

	logging.Info().Msg("MovieMatch shut down")
}
