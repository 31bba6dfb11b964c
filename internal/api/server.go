// GoalRelay - Cross-Subreddit Subscriber Goal Synchronization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/goalrelay

// Package api exposes the relay's local HTTP surface: health and
// Prometheus metrics for operators, plus a small management API for
// registering goal posts.
package api

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/goalrelay/internal/config"
	"github.com/tomtom215/goalrelay/internal/logging"
)

// Server is the HTTP listener. Implements suture.Service.
type Server struct {
	addr    string
	timeout time.Duration
	handler http.Handler
}

// NewServer builds the router and wraps it in a Server.
func NewServer(cfg config.ServerConfig, h *Handler) *Server {
	return &Server{
		addr:    net.JoinHostPort(cfg.Host, fmt.Sprintf("%d", cfg.Port)),
		timeout: cfg.Timeout,
		handler: newRouter(h),
	}
}

func newRouter(h *Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogging)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)

	r.Get("/healthz", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/goals", h.RegisterGoal)
		r.Get("/goals/{postID}", h.GetGoal)
	})

	return r
}

// requestLogging attaches a correlation ID to each request and logs it
// on completion.
func requestLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ctx := logging.ContextWithNewCorrelationID(req.Context())
		start := time.Now()

		ww := chimiddleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req.WithContext(ctx))

		logging.Ctx(ctx).Debug().
			Str("method", req.Method).
			Str("path", req.URL.Path).
			Int("status", ww.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("HTTP request")
	})
}

// Serve implements suture.Service: listen until the context is
// canceled, then shut down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.handler,
		ReadHeaderTimeout: s.timeout,
		ReadTimeout:       s.timeout,
		WriteTimeout:      s.timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger := logging.Logger()
	logger.Info().Str("addr", s.addr).Msg("HTTP server listening")

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("http shutdown: %w", err)
	}
	return ctx.Err()
}

func (s *Server) String() string {
	return "http-server"
}
