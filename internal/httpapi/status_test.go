// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package httpapi

import (
	"errors"
	"net/http"
	"testing"

	"github.com/samber/oops"
	"github.com/stretchr/testify/assert"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/repo"
	"github.com/accountd/accountd/internal/token"
)

func TestStatusFromError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			name: "invalid credentials",
			err:  account.ErrInvalidCredentials,
			want: http.StatusUnauthorized,
		},
		{
			name: "expired token",
			err:  token.ErrTokenExpired,
			want: http.StatusUnauthorized,
		},
		{
			name: "already exists",
			err:  account.ErrAlreadyExists,
			want: http.StatusConflict,
		},
		{
			name: "not found",
			err:  repo.ErrNotFound,
			want: http.StatusNotFound,
		},
		{
			name: "ambiguous match",
			err:  repo.ErrAmbiguousMatch,
			want: http.StatusConflict,
		},
		{
			name: "store failure",
			err:  repo.ErrStoreFailure,
			want: http.StatusInternalServerError,
		},
		{
			name: "validation code maps to bad request",
			err:  oops.Code("ACCOUNT_INVALID_USERNAME").Errorf("username too short"),
			want: http.StatusBadRequest,
		},
		{
			name: "empty password maps to bad request",
			err:  account.ErrEmptyPassword,
			want: http.StatusBadRequest,
		},
		{
			name: "oops error without a code is internal",
			err:  oops.Errorf("no code attached"),
			want: http.StatusInternalServerError,
		},
		{
			name: "oops error with an unrecognized code is internal",
			err:  oops.Code("ACCOUNT_SALT_FAILED").Errorf("entropy exhausted"),
			want: http.StatusInternalServerError,
		},
		{
			name: "plain error is internal",
			err:  errors.New("something else"),
			want: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusFromError(tt.err))
		})
	}
}

func TestIsValidationError(t *testing.T) {
	assert.True(t, isValidationError(oops.Code("ACCOUNT_EMPTY_PASSWORD").Errorf("password cannot be empty")))
	assert.False(t, isValidationError(oops.Errorf("codeless")))
	assert.False(t, isValidationError(errors.New("not oops")))
}
