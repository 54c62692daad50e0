// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package repo

import "context"

// Capability interfaces. Concrete repositories expose only the
// capabilities their callers need by holding one shared Store and
// delegating, instead of re-implementing CRUD per entity.

// Creator inserts new records.
type Creator[T any] interface {
	Create(ctx context.Context, data Values) (T, error)
}

// Reader resolves a filter to exactly one record.
type Reader[T any] interface {
	Read(ctx context.Context, f Filter) (T, error)
}

// Lister enumerates records of any cardinality.
type Lister[T any] interface {
	List(ctx context.Context, f Filter, o Order) ([]T, error)
}

// Updater applies a patch to every matching record.
type Updater[T any] interface {
	Update(ctx context.Context, f Filter, p Patch) ([]T, error)
}

// Deleter removes matching records.
type Deleter[T any] interface {
	Delete(ctx context.Context, f Filter) (int64, error)
}

// Counter answers cardinality questions without materializing records.
type Counter[T any] interface {
	Count(ctx context.Context, f Filter) (int64, error)
	Exists(ctx context.Context, f Filter) (bool, error)
}

// Compile-time capability checks for Store.
var (
	_ Creator[struct{}] = (*Store[struct{}])(nil)
	_ Reader[struct{}]  = (*Store[struct{}])(nil)
	_ Lister[struct{}]  = (*Store[struct{}])(nil)
	_ Updater[struct{}] = (*Store[struct{}])(nil)
	_ Deleter[struct{}] = (*Store[struct{}])(nil)
	_ Counter[struct{}] = (*Store[struct{}])(nil)
)
