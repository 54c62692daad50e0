// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package httpapi exposes the account service over HTTP: signup, login
// (token issue), password rotation and account lookup. Handlers
// translate the error taxonomy into status codes and never leak digest
// material or which half of a credential pair was wrong.
package httpapi

import (
	"context"
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/token"
)

// AccountService is the slice of the account service the API consumes.
type AccountService interface {
	Signup(ctx context.Context, username, password string) (account.Account, error)
	Authenticate(ctx context.Context, username, password string) (account.Account, error)
	RotatePassword(ctx context.Context, username, oldPassword, newPassword string) (account.Account, error)
	Get(ctx context.Context, username string) (account.Account, error)
	Exists(ctx context.Context, username string) (bool, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(claims token.Claims, ttl time.Duration) (string, error)
	Verify(tokenString string) (token.Claims, error)
}

// Server holds the API dependencies and builds the router.
type Server struct {
	accounts AccountService
	tokens   TokenService
	tokenTTL time.Duration
	metrics  *observability.Metrics
	logger   *slog.Logger
}

// Option configures optional Server dependencies.
type Option func(*Server)

// WithMetrics wires request and auth metrics into the API.
func WithMetrics(m *observability.Metrics) Option {
	return func(s *Server) { s.metrics = m }
}

// WithLogger overrides the default logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// NewServer creates the API server.
func NewServer(accounts AccountService, tokens TokenService, tokenTTL time.Duration, opts ...Option) (*Server, error) {
	if accounts == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("account service is required")
	}
	if tokens == nil {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("token service is required")
	}
	if tokenTTL <= 0 {
		return nil, oops.Code("HTTPAPI_INVALID").Errorf("token ttl must be positive")
	}

	s := &Server{
		accounts: accounts,
		tokens:   tokens,
		tokenTTL: tokenTTL,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Router builds the chi router with all API routes mounted.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Route("/v1", func(r chi.Router) {
		r.Post("/accounts", s.handleSignup)
		r.Post("/sessions", s.handleLogin)

		r.Route("/accounts/{username}", func(r chi.Router) {
			r.Head("/", s.handleExists)

			r.Group(func(r chi.Router) {
				r.Use(s.requireToken)
				r.Get("/", s.handleGet)
				r.Put("/password", s.handleRotatePassword)
			})
		})
	})

	return r
}
