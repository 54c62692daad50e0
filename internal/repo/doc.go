// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package repo provides a type-generic repository over PostgreSQL.
//
// A Store[T] turns exact-match filter predicates into CRUD statements
// against a single table described by a Schema. Multiplicity semantics
// are strict: Read requires exactly one match and distinguishes "no
// match" (ErrNotFound) from "more than one match" (ErrAmbiguousMatch),
// while List, Update and Delete accept any cardinality.
//
// This is the only layer allowed to inspect raw store errors or row
// counts. Unique-constraint violations are translated into
// ErrAmbiguousMatch so that callers never need to parse driver errors.
// Everything else that goes wrong inside the store surfaces as
// ErrStoreFailure.
//
// Concrete repositories compose the capability interfaces (Creator,
// Reader, Lister, Updater, Deleter, Counter) by holding one shared
// Store and delegating.
package repo
