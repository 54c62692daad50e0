// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/samber/oops"
)

// Querier is the subset of pgxpool.Pool the Store needs. pgxmock
// satisfies it, so repositories are unit-testable without a database.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is a generic repository over one table. T is the record type;
// its fields are matched to schema columns by pgx.RowToStructByName,
// so T must carry db struct tags (or field names) matching the schema.
type Store[T any] struct {
	db     Querier
	schema Schema
}

// NewStore creates a Store for the given table schema.
func NewStore[T any](db Querier, schema Schema) *Store[T] {
	return &Store[T]{db: db, schema: schema}
}

// Schema returns the table schema the store operates on.
func (s *Store[T]) Schema() Schema { return s.schema }

// Create inserts a new record and returns it as persisted, including
// store-assigned fields. A uniqueness-constraint collision surfaces as
// ErrAmbiguousMatch; any other persistence failure as ErrStoreFailure.
func (s *Store[T]) Create(ctx context.Context, data Values) (T, error) {
	var zero T
	if err := s.schema.validateFields("create", data); err != nil {
		return zero, err
	}
	if len(data) == 0 {
		return zero, oops.Code("REPO_EMPTY_CREATE").With("table", s.schema.table).Errorf("create requires at least one field")
	}

	keys := sortedKeys(data)
	placeholders := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = data[k]
	}
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.schema.table,
		strings.Join(keys, ", "),
		strings.Join(placeholders, ", "),
		s.schema.columnList(),
	)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return zero, s.translate("create", err)
	}
	record, err := pgx.CollectExactlyOneRow(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, s.translate("create", err)
	}
	return record, nil
}

// Read executes the filter and returns the single matching record.
// Zero matches fail with ErrNotFound, more than one with
// ErrAmbiguousMatch. This strict trichotomy lets callers distinguish
// "doesn't exist" from "data integrity problem" without inspecting row
// counts themselves.
func (s *Store[T]) Read(ctx context.Context, f Filter) (T, error) {
	var zero T
	where, args, err := s.schema.whereClause(f, 1)
	if err != nil {
		return zero, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s", s.schema.columnList(), s.schema.table, where)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return zero, s.translate("read", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return zero, s.translate("read", err)
	}

	switch len(records) {
	case 0:
		return zero, oops.Code("REPO_NOT_FOUND").With("table", s.schema.table).Wrap(ErrNotFound)
	case 1:
		return records[0], nil
	default:
		return zero, oops.Code("REPO_AMBIGUOUS").
			With("table", s.schema.table).
			With("matches", len(records)).
			Wrap(ErrAmbiguousMatch)
	}
}

// List returns every record matching the filter, sorted by the
// ordering specification if given, in store-native order otherwise.
// Zero matches yield an empty slice, never an error.
func (s *Store[T]) List(ctx context.Context, f Filter, o Order) ([]T, error) {
	where, args, err := s.schema.whereClause(f, 1)
	if err != nil {
		return nil, err
	}
	orderBy, err := s.schema.orderClause(o)
	if err != nil {
		return nil, err
	}
	sql := fmt.Sprintf("SELECT %s FROM %s%s%s", s.schema.columnList(), s.schema.table, where, orderBy)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, s.translate("list", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, s.translate("list", err)
	}
	return records, nil
}

// Update applies the patch to every record matching the filter and
// returns the re-decoded post-update records. Zero matches return an
// empty slice; this is a bulk operation, not a single-row contract.
func (s *Store[T]) Update(ctx context.Context, f Filter, p Patch) ([]T, error) {
	if err := s.schema.validateFields("patch", p); err != nil {
		return nil, err
	}
	if len(p) == 0 {
		return nil, oops.Code("REPO_EMPTY_PATCH").With("table", s.schema.table).Errorf("update requires at least one patch field")
	}

	keys := sortedKeys(p)
	assigns := make([]string, len(keys))
	args := make([]any, 0, len(keys))
	for i, k := range keys {
		assigns[i] = fmt.Sprintf("%s = $%d", k, i+1)
		args = append(args, p[k])
	}
	where, whereArgs, err := s.schema.whereClause(f, len(keys)+1)
	if err != nil {
		return nil, err
	}
	args = append(args, whereArgs...)
	sql := fmt.Sprintf(
		"UPDATE %s SET %s%s RETURNING %s",
		s.schema.table,
		strings.Join(assigns, ", "),
		where,
		s.schema.columnList(),
	)

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, s.translate("update", err)
	}
	records, err := pgx.CollectRows(rows, pgx.RowToStructByName[T])
	if err != nil {
		return nil, s.translate("update", err)
	}
	return records, nil
}

// Delete removes every record matching the filter and returns the
// count removed. Deleting an already-absent set returns 0, not an
// error.
func (s *Store[T]) Delete(ctx context.Context, f Filter) (int64, error) {
	where, args, err := s.schema.whereClause(f, 1)
	if err != nil {
		return 0, err
	}
	sql := fmt.Sprintf("DELETE FROM %s%s", s.schema.table, where)

	tag, err := s.db.Exec(ctx, sql, args...)
	if err != nil {
		return 0, s.translate("delete", err)
	}
	return tag.RowsAffected(), nil
}

// Count returns the number of records matching the filter.
func (s *Store[T]) Count(ctx context.Context, f Filter) (int64, error) {
	where, args, err := s.schema.whereClause(f, 1)
	if err != nil {
		return 0, err
	}
	sql := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.schema.table, where)

	var n int64
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&n); err != nil {
		return 0, s.translate("count", err)
	}
	return n, nil
}

// Exists reports whether at least one record matches the filter. The
// probe short-circuits in the store and never materializes records.
func (s *Store[T]) Exists(ctx context.Context, f Filter) (bool, error) {
	where, args, err := s.schema.whereClause(f, 1)
	if err != nil {
		return false, err
	}
	sql := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s%s)", s.schema.table, where)

	var found bool
	if err := s.db.QueryRow(ctx, sql, args...).Scan(&found); err != nil {
		return false, s.translate("exists", err)
	}
	return found, nil
}

// translate converts raw store errors into the taxonomy. A native
// unique-violation report becomes ErrAmbiguousMatch: the store's
// constraint is the authoritative uniqueness backstop, so a concurrent
// duplicate create that slipped past any pre-check is caught here
// rather than corrupting data.
func (s *Store[T]) translate(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
		return oops.Code("REPO_UNIQUE_VIOLATION").
			With("table", s.schema.table).
			With("operation", op).
			With("constraint", pgErr.ConstraintName).
			Wrap(ErrAmbiguousMatch)
	}
	return oops.Code("REPO_STORE_FAILURE").
		With("table", s.schema.table).
		With("operation", op).
		Wrap(errors.Join(ErrStoreFailure, err))
}
