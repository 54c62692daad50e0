// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package account

import "errors"

// Business-level sentinels layered over the repository taxonomy.
var (
	// ErrAlreadyExists is returned by Signup when the username is
	// taken, whether the pre-check caught it or the store's uniqueness
	// constraint did.
	ErrAlreadyExists = errors.New("account already exists")

	// ErrInvalidCredentials is returned for both "unknown username" and
	// "known username, wrong password" so callers cannot enumerate
	// usernames through the error type.
	ErrInvalidCredentials = errors.New("invalid username or password")
)
