// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/token"
)

type signupRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type sessionResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

type rotatePasswordRequest struct {
	OldPassword string `json:"old_password"`
	NewPassword string `json:"new_password"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return false
	}
	return true
}

// handleSignup registers a new account. 201 with the created account on
// success, 409 when the username is taken.
func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acct, err := s.accounts.Signup(r.Context(), req.Username, req.Password)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	if s.metrics != nil {
		s.metrics.SignupsTotal.Inc()
	}
	s.logger.InfoContext(r.Context(), "account created", "username", acct.Username)
	writeJSON(w, http.StatusCreated, acct)
}

// handleLogin verifies credentials and issues a bearer token.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}

	acct, err := s.accounts.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		s.recordAuthFailure(err)
		s.writeTaxonomyError(w, err)
		return
	}

	signed, err := s.tokens.Issue(token.Claims{Username: acct.Username}, s.tokenTTL)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		Token:     signed,
		TokenType: "Bearer",
		ExpiresIn: int64(s.tokenTTL / time.Second),
	})
}

// handleExists answers HEAD existence probes without a body.
func (s *Server) handleExists(w http.ResponseWriter, r *http.Request) {
	username := chi.URLParam(r, "username")

	found, err := s.accounts.Exists(r.Context(), username)
	if err != nil {
		s.writeTaxonomyError(w, err)
		return
	}
	if !found {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

// handleGet returns the authenticated subject's own account.
func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	acct, ok := s.requireSelf(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

// handleRotatePassword replaces the subject's password after verifying
// the old one.
func (s *Server) handleRotatePassword(w http.ResponseWriter, r *http.Request) {
	if _, ok := s.requireSelf(w, r); !ok {
		return
	}

	var req rotatePasswordRequest
	if !decodeBody(w, r, &req) {
		return
	}

	username := chi.URLParam(r, "username")
	if _, err := s.accounts.RotatePassword(r.Context(), username, req.OldPassword, req.NewPassword); err != nil {
		s.recordAuthFailure(err)
		s.writeTaxonomyError(w, err)
		return
	}

	s.logger.InfoContext(r.Context(), "password rotated", "username", username)
	w.WriteHeader(http.StatusNoContent)
}

// requireSelf checks that the path username matches the authenticated
// subject. There is no roles model; identity is the only authority.
func (s *Server) requireSelf(w http.ResponseWriter, r *http.Request) (account.Account, bool) {
	acct, ok := accountFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "invalid credentials")
		return account.Account{}, false
	}
	if acct.Username != chi.URLParam(r, "username") {
		writeError(w, http.StatusForbidden, "forbidden")
		return account.Account{}, false
	}
	return acct, true
}

func (s *Server) recordAuthFailure(err error) {
	if s.metrics == nil {
		return
	}
	if statusFromError(err) == http.StatusUnauthorized {
		s.metrics.AuthFailures.WithLabelValues(observability.ReasonBadCredentials).Inc()
	}
}
