// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"context"
	"regexp"
	"time"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/repo"
)

// Username validation constraints.
const (
	MinUsernameLength = 3
	MaxUsernameLength = 30
)

// usernameRegex matches usernames that:
// - Start with a letter (a-z, A-Z)
// - Contain only letters, numbers, and underscores
var usernameRegex = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9_]*$`)

// Account is the persistent user identity. The identifier is assigned
// by the store and immutable once created; the username is globally
// unique and immutable after creation; the password digest is the
// opaque output of the hashing service, never the plaintext.
type Account struct {
	ID             int64     `db:"id" json:"id"`
	Username       string    `db:"username" json:"username"`
	PasswordDigest string    `db:"password_digest" json:"-"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}

// Column names of the accounts table, shared by the schema definition
// and the filters/patches the service builds.
const (
	FieldID             = "id"
	FieldUsername       = "username"
	FieldPasswordDigest = "password_digest"
	FieldCreatedAt      = "created_at"
	FieldUpdatedAt      = "updated_at"
)

// Schema describes the accounts table for the generic repository.
var Schema = repo.MustSchema("accounts",
	FieldID, FieldUsername, FieldPasswordDigest, FieldCreatedAt, FieldUpdatedAt,
)

// ValidateUsername validates a username against rules.
// Username requirements:
// - Length: MinUsernameLength to MaxUsernameLength characters
// - Must start with a letter
// - Can contain only letters (a-z, A-Z), numbers (0-9), and underscores (_)
func ValidateUsername(username string) error {
	if username == "" {
		return oops.Code("ACCOUNT_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if len(username) < MinUsernameLength {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("min", MinUsernameLength).
			Errorf("username must be at least %d characters", MinUsernameLength)
	}
	if len(username) > MaxUsernameLength {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			With("max", MaxUsernameLength).
			Errorf("username must be at most %d characters", MaxUsernameLength)
	}
	if !usernameRegex.MatchString(username) {
		return oops.Code("ACCOUNT_INVALID_USERNAME").
			Errorf("username must start with a letter and contain only letters, numbers, and underscores")
	}
	return nil
}

// Repository is the generic repository specialized for the Account
// entity, plus a direct existence probe on the uniqueness field.
// Filters and patches reference the Field* column names and are
// validated against Schema by the implementation.
type Repository interface {
	Create(ctx context.Context, data repo.Values) (Account, error)
	Read(ctx context.Context, f repo.Filter) (Account, error)
	List(ctx context.Context, f repo.Filter, o repo.Order) ([]Account, error)
	Update(ctx context.Context, f repo.Filter, p repo.Patch) ([]Account, error)
	Delete(ctx context.Context, f repo.Filter) (int64, error)
	Count(ctx context.Context, f repo.Filter) (int64, error)

	// Exists reports whether an account with the username exists
	// without materializing the record. Used by signup to short-circuit
	// before attempting a write; the store's uniqueness constraint
	// remains the authoritative backstop.
	Exists(ctx context.Context, username string) (bool, error)
}
