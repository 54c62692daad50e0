// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/accountd/accountd/internal/repo"
)

// Service implements the account business rules: signup, credential
// verification and password rotation. It owns no persistent state; it
// wires the repository and the hashing service together.
type Service struct {
	accounts Repository
	hasher   Hasher
	now      func() time.Time
}

// NewService creates a Service.
func NewService(accounts Repository, hasher Hasher) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("ACCOUNT_SERVICE_INVALID").Errorf("accounts repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("ACCOUNT_SERVICE_INVALID").Errorf("password hasher is required")
	}
	return &Service{accounts: accounts, hasher: hasher, now: time.Now}, nil
}

// dummyDigest is used when a user doesn't exist to prevent timing
// attacks: verification still runs so response time stays flat.
// This is NOT a real credential - it's a fake digest that will never
// match any password.
//
//nolint:gosec // G101: intentionally fake digest for timing attack prevention, not a credential.
const dummyDigest = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Signup registers a new identity. The existence pre-check is an
// optimization only; a concurrent duplicate that slips past it is
// caught by the store's uniqueness constraint and surfaces as
// ErrAlreadyExists all the same.
func (s *Service) Signup(ctx context.Context, username, password string) (Account, error) {
	if err := ValidateUsername(username); err != nil {
		return Account{}, err
	}

	taken, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return Account{}, oops.Code("ACCOUNT_SIGNUP_FAILED").
			With("operation", "existence pre-check").
			With("username", username).
			Wrap(err)
	}
	if taken {
		return Account{}, oops.Code("ACCOUNT_ALREADY_EXISTS").
			With("username", username).
			Wrap(ErrAlreadyExists)
	}

	digest, err := s.hasher.Hash(password)
	if err != nil {
		return Account{}, oops.Code("ACCOUNT_SIGNUP_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	acct, err := s.accounts.Create(ctx, repo.Values{
		FieldUsername:       username,
		FieldPasswordDigest: digest,
	})
	if err != nil {
		if errors.Is(err, repo.ErrAmbiguousMatch) {
			// Lost the race: the constraint is the authoritative check.
			return Account{}, oops.Code("ACCOUNT_ALREADY_EXISTS").
				With("username", username).
				Wrap(ErrAlreadyExists)
		}
		return Account{}, oops.Code("ACCOUNT_SIGNUP_FAILED").
			With("operation", "create account").
			With("username", username).
			Wrap(err)
	}
	return acct, nil
}

// Authenticate verifies a username/password pair and returns the
// matching account. Unknown username and wrong password fail with the
// same ErrInvalidCredentials; a dummy verification keeps timing flat
// when the username does not exist.
func (s *Service) Authenticate(ctx context.Context, username, password string) (Account, error) {
	acct, lookupErr := s.accounts.Read(ctx, repo.Filter{FieldUsername: username})

	targetDigest := acct.PasswordDigest
	known := true
	if lookupErr != nil {
		if !errors.Is(lookupErr, repo.ErrNotFound) {
			return Account{}, oops.Code("ACCOUNT_AUTH_FAILED").
				With("operation", "read account").
				Wrap(lookupErr)
		}
		targetDigest = dummyDigest
		known = false
	}

	valid, verifyErr := s.hasher.Verify(password, targetDigest)
	if verifyErr != nil {
		if !known {
			// Dummy digest may not parse under every hasher; the answer
			// is "invalid credentials" either way.
			return Account{}, s.invalidCredentials(username)
		}
		return Account{}, oops.Code("ACCOUNT_AUTH_FAILED").
			With("operation", "verify password").
			With("username", username).
			Wrap(verifyErr)
	}
	if !known || !valid {
		return Account{}, s.invalidCredentials(username)
	}
	return acct, nil
}

// RotatePassword verifies the old password and replaces the stored
// digest with a hash of the new one. The update must affect exactly
// one row; more than one means duplicate usernames slipped past the
// uniqueness invariant and is surfaced as a fatal integrity failure.
func (s *Service) RotatePassword(ctx context.Context, username, oldPassword, newPassword string) (Account, error) {
	acct, err := s.accounts.Read(ctx, repo.Filter{FieldUsername: username})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Account{}, s.invalidCredentials(username)
		}
		return Account{}, oops.Code("ACCOUNT_ROTATE_FAILED").
			With("operation", "read account").
			Wrap(err)
	}

	valid, err := s.hasher.Verify(oldPassword, acct.PasswordDigest)
	if err != nil {
		return Account{}, oops.Code("ACCOUNT_ROTATE_FAILED").
			With("operation", "verify old password").
			With("username", username).
			Wrap(err)
	}
	if !valid {
		return Account{}, s.invalidCredentials(username)
	}

	digest, err := s.hasher.Hash(newPassword)
	if err != nil {
		return Account{}, oops.Code("ACCOUNT_ROTATE_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	updated, err := s.accounts.Update(ctx,
		repo.Filter{FieldUsername: username},
		repo.Patch{FieldPasswordDigest: digest, FieldUpdatedAt: s.now().UTC()},
	)
	if err != nil {
		return Account{}, oops.Code("ACCOUNT_ROTATE_FAILED").
			With("operation", "update digest").
			With("username", username).
			Wrap(err)
	}
	switch len(updated) {
	case 1:
		return updated[0], nil
	case 0:
		// The account was just read; a vanished row is a store anomaly.
		return Account{}, oops.Code("ACCOUNT_ROTATE_FAILED").
			With("username", username).
			Wrap(repo.ErrNotFound)
	default:
		return Account{}, oops.Code("ACCOUNT_DUPLICATE_USERNAME").
			With("username", username).
			With("matches", len(updated)).
			Wrap(repo.ErrAmbiguousMatch)
	}
}

// Get returns the account for a username. Used by the HTTP boundary to
// resolve verified token claims back to an account.
func (s *Service) Get(ctx context.Context, username string) (Account, error) {
	acct, err := s.accounts.Read(ctx, repo.Filter{FieldUsername: username})
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return Account{}, oops.Code("ACCOUNT_NOT_FOUND").
				With("username", username).
				Wrap(repo.ErrNotFound)
		}
		return Account{}, oops.Code("ACCOUNT_GET_FAILED").
			With("operation", "read account").
			With("username", username).
			Wrap(err)
	}
	return acct, nil
}

// Exists reports whether the username is taken, as a non-error-based
// presence check.
func (s *Service) Exists(ctx context.Context, username string) (bool, error) {
	found, err := s.accounts.Exists(ctx, username)
	if err != nil {
		return false, oops.Code("ACCOUNT_EXISTS_FAILED").
			With("username", username).
			Wrap(err)
	}
	return found, nil
}

func (s *Service) invalidCredentials(username string) error {
	return oops.Code("ACCOUNT_INVALID_CREDENTIALS").
		With("username", username).
		Wrap(ErrInvalidCredentials)
}
