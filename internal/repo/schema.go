// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package repo

import (
	"fmt"
	"sort"
	"strings"

	"github.com/samber/oops"
)

// Schema describes the table a Store operates on: its name and the
// closed set of columns that filters, patches and orderings may
// reference. Field references outside this set are rejected before any
// SQL is issued.
type Schema struct {
	table   string
	columns []string
	known   map[string]struct{}
}

// NewSchema creates a Schema for table with the given columns. The
// column order is the SELECT order and must match the fields of the
// record type the Store decodes into.
func NewSchema(table string, columns ...string) (Schema, error) {
	if table == "" {
		return Schema{}, oops.Code("REPO_INVALID_SCHEMA").Errorf("table name cannot be empty")
	}
	if len(columns) == 0 {
		return Schema{}, oops.Code("REPO_INVALID_SCHEMA").With("table", table).Errorf("schema needs at least one column")
	}
	known := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		if c == "" {
			return Schema{}, oops.Code("REPO_INVALID_SCHEMA").With("table", table).Errorf("column name cannot be empty")
		}
		if _, dup := known[c]; dup {
			return Schema{}, oops.Code("REPO_INVALID_SCHEMA").With("table", table).With("column", c).Errorf("duplicate column %q", c)
		}
		known[c] = struct{}{}
	}
	return Schema{table: table, columns: columns, known: known}, nil
}

// MustSchema is NewSchema for package-level schema declarations.
// Panics on an invalid definition.
func MustSchema(table string, columns ...string) Schema {
	s, err := NewSchema(table, columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Table returns the table name.
func (s Schema) Table() string { return s.table }

// Columns returns the columns in SELECT order.
func (s Schema) Columns() []string { return s.columns }

// Has reports whether name is a known column.
func (s Schema) Has(name string) bool {
	_, ok := s.known[name]
	return ok
}

func (s Schema) columnList() string {
	return strings.Join(s.columns, ", ")
}

// Filter is an exact-match conjunction over named fields. An empty or
// nil Filter matches every record. No range or disjunctive predicates
// are supported.
type Filter map[string]any

// Patch maps field names to replacement values for bulk updates.
type Patch map[string]any

// Values maps field names to values for record creation.
type Values map[string]any

// Order is a stable multi-key ascending sort specification for List.
type Order []string

// sortedKeys returns map keys in lexical order so that generated SQL is
// deterministic regardless of map iteration order.
func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// validateFields checks every key in m against the schema.
func (s Schema) validateFields(kind string, m map[string]any) error {
	for k := range m {
		if !s.Has(k) {
			return oops.Code("REPO_UNKNOWN_FIELD").
				With("table", s.table).
				With("field", k).
				Errorf("unknown %s field %q", kind, k)
		}
	}
	return nil
}

// whereClause renders the filter as a conjunctive WHERE fragment with
// positional placeholders starting at $argStart. An empty filter
// renders as the empty string.
func (s Schema) whereClause(f Filter, argStart int) (string, []any, error) {
	if err := s.validateFields("filter", f); err != nil {
		return "", nil, err
	}
	if len(f) == 0 {
		return "", nil, nil
	}
	keys := sortedKeys(f)
	preds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		preds[i] = fmt.Sprintf("%s = $%d", k, argStart+i)
		args[i] = f[k]
	}
	return " WHERE " + strings.Join(preds, " AND "), args, nil
}

// orderClause renders the ordering as an ORDER BY fragment. An empty
// ordering renders as the empty string (store-native order).
func (s Schema) orderClause(o Order) (string, error) {
	if len(o) == 0 {
		return "", nil
	}
	for _, c := range o {
		if !s.Has(c) {
			return "", oops.Code("REPO_UNKNOWN_FIELD").
				With("table", s.table).
				With("field", c).
				Errorf("unknown order field %q", c)
		}
	}
	return " ORDER BY " + strings.Join(o, ", "), nil
}
