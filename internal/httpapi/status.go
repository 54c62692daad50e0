// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/repo"
	"github.com/accountd/accountd/internal/token"
	"github.com/accountd/accountd/pkg/errutil"
)

// errorBody is the uniform error response shape.
type errorBody struct {
	Error string `json:"error"`
}

// Error codes that indicate a malformed request rather than a failure
// deeper in the stack.
var validationCodes = map[string]bool{
	"ACCOUNT_INVALID_USERNAME": true,
	"ACCOUNT_EMPTY_PASSWORD":   true,
}

// statusFromError maps the error taxonomy onto HTTP status codes.
// Credential and token failures collapse to 401 without detail so the
// response never reveals whether the username or the password was
// wrong.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, account.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, token.ErrTokenExpired), errors.Is(err, token.ErrTokenInvalid):
		return http.StatusUnauthorized
	case errors.Is(err, account.ErrAlreadyExists):
		return http.StatusConflict
	case errors.Is(err, account.ErrEmptyPassword):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrAmbiguousMatch):
		return http.StatusConflict
	case errors.Is(err, repo.ErrStoreFailure):
		return http.StatusInternalServerError
	}

	if isValidationError(err) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// isValidationError reports whether err carries one of the request
// validation codes. oops codes are dynamically typed; anything but a
// string code is not ours.
func isValidationError(err error) bool {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		return false
	}
	code, ok := oopsErr.Code().(string)
	return ok && validationCodes[code]
}

// messageForStatus returns the client-facing message for a status. The
// underlying error text stays in the logs; clients get a stable,
// non-leaking phrase.
func messageForStatus(status int) string {
	switch status {
	case http.StatusUnauthorized:
		return "invalid credentials"
	case http.StatusConflict:
		return "account already exists"
	case http.StatusNotFound:
		return "account not found"
	case http.StatusBadRequest:
		return "invalid request"
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	//nolint:errcheck // response write failure means the client is gone
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// writeTaxonomyError maps err to a status, logs server-side failures
// and writes the uniform error body.
func (s *Server) writeTaxonomyError(w http.ResponseWriter, err error) {
	status := statusFromError(err)
	if status == http.StatusInternalServerError {
		errutil.LogError(s.logger, "request failed", err)
	}
	msg := messageForStatus(status)
	if status == http.StatusBadRequest && isValidationError(err) {
		// Validation messages are safe to surface verbatim.
		msg = err.Error()
	}
	writeError(w, status, msg)
}
