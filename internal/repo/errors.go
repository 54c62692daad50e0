// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package repo

import "errors"

// Sentinel errors forming the repository half of the error taxonomy.
// Callers branch on these with errors.Is; the oops wrappers added at
// the call sites carry codes and context for logging.
var (
	// ErrNotFound is returned when a lookup that expected to match
	// something matched nothing.
	ErrNotFound = errors.New("not found")

	// ErrAmbiguousMatch is returned when a lookup expected at most one
	// match and found more than one, or when a write collided with a
	// uniqueness constraint.
	ErrAmbiguousMatch = errors.New("ambiguous match")

	// ErrStoreFailure is returned when the persistence layer failed for
	// a reason unrelated to match count.
	ErrStoreFailure = errors.New("store failure")
)
