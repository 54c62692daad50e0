// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import (
	"errors"
	"strings"

	"github.com/samber/oops"
	"golang.org/x/crypto/bcrypt"
)

// BcryptHasher implements Hasher using bcrypt. It exists for digests
// imported from deployments that hashed with bcrypt; new deployments
// should prefer Argon2idHasher.
type BcryptHasher struct {
	cost int
}

// NewBcryptHasher creates a BcryptHasher. A cost of 0 selects
// bcrypt.DefaultCost.
func NewBcryptHasher(cost int) *BcryptHasher {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	return &BcryptHasher{cost: cost}
}

// Hash produces a bcrypt digest of the password.
func (h *BcryptHasher) Hash(password string) (string, error) {
	if password == "" {
		return "", ErrEmptyPassword
	}
	digest, err := bcrypt.GenerateFromPassword([]byte(password), h.cost)
	if err != nil {
		return "", oops.Code("ACCOUNT_HASH_FAILED").Wrap(err)
	}
	return string(digest), nil
}

// Verify compares the password against the digest. Mismatch is
// (false, nil); a digest that is not bcrypt at all fails loudly.
func (h *BcryptHasher) Verify(password, digest string) (bool, error) {
	if !strings.HasPrefix(digest, "$2") {
		return false, oops.Code("ACCOUNT_INVALID_DIGEST").Errorf("not a bcrypt digest")
	}
	err := bcrypt.CompareHashAndPassword([]byte(digest), []byte(password))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return false, nil
	}
	return false, oops.Code("ACCOUNT_INVALID_DIGEST").Wrap(err)
}

// Compile-time interface check.
var _ Hasher = (*BcryptHasher)(nil)
