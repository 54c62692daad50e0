// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package httpapi

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/repo"
	"github.com/accountd/accountd/internal/token"
)

type contextKey int

const accountContextKey contextKey = iota

// accountFromContext returns the account resolved by requireToken.
func accountFromContext(ctx context.Context) (account.Account, bool) {
	acct, ok := ctx.Value(accountContextKey).(account.Account)
	return acct, ok
}

// requireToken verifies the bearer token and re-reads the subject
// account from the store, so a deleted account loses access the moment
// it is gone rather than when its token expires.
func (s *Server) requireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			s.recordTokenFailure(token.ErrTokenInvalid)
			writeError(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		claims, err := s.tokens.Verify(raw)
		if err != nil {
			s.recordTokenFailure(err)
			s.writeTaxonomyError(w, err)
			return
		}

		acct, err := s.accounts.Get(r.Context(), claims.Username)
		if err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				// Subject vanished after the token was issued.
				s.recordTokenFailure(token.ErrTokenInvalid)
				writeError(w, http.StatusUnauthorized, "invalid credentials")
				return
			}
			s.writeTaxonomyError(w, err)
			return
		}

		ctx := context.WithValue(r.Context(), accountContextKey, acct)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	raw, found := strings.CutPrefix(header, "Bearer ")
	if !found || raw == "" {
		return "", false
	}
	return raw, true
}

func (s *Server) recordTokenFailure(err error) {
	if s.metrics == nil {
		return
	}
	reason := observability.ReasonBadToken
	if errors.Is(err, token.ErrTokenExpired) {
		reason = observability.ReasonExpiredToken
	}
	s.metrics.AuthFailures.WithLabelValues(reason).Inc()
}

// statusRecorder captures the response status for instrumentation.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument records request counts and latency per route pattern.
// Route patterns, not raw paths, keep the label cardinality bounded.
func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.metrics == nil {
			next.ServeHTTP(w, r)
			return
		}

		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = "unmatched"
		}
		s.metrics.RequestsTotal.
			WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
			Inc()
		s.metrics.RequestDuration.
			WithLabelValues(r.Method, route).
			Observe(time.Since(start).Seconds())
	})
}
