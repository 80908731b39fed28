// MovieMatch - Asynchronous Movie Recommendation Platform
// Copyright 2026 MovieMatch Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/moviematch/moviematch

package services

import (
	"context"
	"errors"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/thejerf/suture/v4"
)

// mockHTTPServer is a test double for the HTTPServer interface.
type mockHTTPServer struct {
	listenErr     error
	shutdownErr   error
	listenCount   atomic.Int32
	shutdownCount atomic.Int32
	stopCh        chan struct{}
}

func newMockHTTPServer() *mockHTTPServer {
	return &mockHTTPServer{stopCh: make(chan struct{})}
}

func (m *mockHTTPServer) ListenAndServe() error {
	m.listenCount.Add(1)
	if m.listenErr != nil {
		return m.listenErr
	}
	<-m.stopCh
	return http.ErrServerClosed
}

func (m *mockHTTPServer) Shutdown(ctx context.Context) error {
	m.shutdownCount.Add(1)
	close(m.stopCh)
	return m.shutdownErr
}

func TestHTTPServiceImplementsSuture(t *testing.T) {
	var _ suture.Service = (*HTTPService)(nil)
	var _ suture.Service = (*WorkerService)(nil)
}

func TestHTTPServiceGracefulShutdown(t *testing.T) {
	server := newMockHTTPServer()
	svc := NewHTTPService(server, time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	// Let the server goroutine start before canceling.
	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if got := server.shutdownCount.Load(); got != 1 {
		t.Errorf("Shutdown called %d times, want 1", got)
	}
}

func TestHTTPServiceStartupFailure(t *testing.T) {
	server := newMockHTTPServer()
	server.listenErr = errors.New("address already in use")
	svc := NewHTTPService(server, time.Second)

	err := svc.Serve(context.Background())
	if err == nil {
		t.Fatal("expected error from failed ListenAndServe")
	}
	if !errors.Is(err, server.listenErr) {
		t.Errorf("Serve returned %v, want wrapped listen error", err)
	}
}

// mockConsumer is a test double for the JobConsumer interface.
type mockConsumer struct {
	runErr     error
	running    chan struct{}
	closeCount atomic.Int32
}

func newMockConsumer(runErr error) *mockConsumer {
	c := &mockConsumer{runErr: runErr, running: make(chan struct{})}
	close(c.running)
	return c
}

func (c *mockConsumer) Run(ctx context.Context) error {
	if c.runErr != nil {
		return c.runErr
	}
	<-ctx.Done()
	return ctx.Err()
}

func (c *mockConsumer) Running() <-chan struct{} { return c.running }

func (c *mockConsumer) Close() error {
	c.closeCount.Add(1)
	return nil
}

func TestWorkerServiceRunsUntilCanceled(t *testing.T) {
	consumer := newMockConsumer(nil)
	svc := NewWorkerService(func() (JobConsumer, error) { return consumer, nil })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Serve returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}

	if got := consumer.closeCount.Load(); got != 1 {
		t.Errorf("Close called %d times, want 1", got)
	}
}

func TestWorkerServicePropagatesRouterError(t *testing.T) {
	routerErr := errors.New("subscriber gone")
	svc := NewWorkerService(func() (JobConsumer, error) { return newMockConsumer(routerErr), nil })

	err := svc.Serve(context.Background())
	if !errors.Is(err, routerErr) {
		t.Errorf("Serve returned %v, want router error", err)
	}
}

func TestWorkerServiceFactoryFailure(t *testing.T) {
	factoryErr := errors.New("broker unavailable")
	svc := NewWorkerService(func() (JobConsumer, error) { return nil, factoryErr })

	err := svc.Serve(context.Background())
	if !errors.Is(err, factoryErr) {
		t.Errorf("Serve returned %v, want factory error", err)
	}
}
