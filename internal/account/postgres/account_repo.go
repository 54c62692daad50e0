// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package postgres implements account.Repository on PostgreSQL by
// composing the generic repository with an accounts-table schema.
package postgres

import (
	"context"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/repo"
)

// AccountRepository is the generic store specialized for accounts.
// All CRUD operations are inherited from repo.Store; only the
// username existence probe is added on top.
type AccountRepository struct {
	*repo.Store[account.Account]
}

// NewAccountRepository creates an AccountRepository backed by db,
// which is a *pgxpool.Pool in production and a pgxmock pool in tests.
func NewAccountRepository(db repo.Querier) *AccountRepository {
	return &AccountRepository{
		Store: repo.NewStore[account.Account](db, account.Schema),
	}
}

// Exists reports whether an account with the username exists without
// materializing the record.
func (r *AccountRepository) Exists(ctx context.Context, username string) (bool, error) {
	return r.Store.Exists(ctx, repo.Filter{account.FieldUsername: username})
}

// Compile-time interface check.
var _ account.Repository = (*AccountRepository)(nil)
