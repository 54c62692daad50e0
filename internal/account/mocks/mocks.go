// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

// Package mocks provides testify mocks for the account package
// interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/mock"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/repo"
)

// MockRepository is a testify mock of account.Repository.
type MockRepository struct {
	mock.Mock
}

// NewMockRepository creates a MockRepository that asserts its
// expectations on test cleanup.
func NewMockRepository(t *testing.T) *MockRepository {
	t.Helper()
	m := &MockRepository{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockRepository) Create(ctx context.Context, data repo.Values) (account.Account, error) {
	args := m.Called(ctx, data)
	return args.Get(0).(account.Account), args.Error(1)
}

func (m *MockRepository) Read(ctx context.Context, f repo.Filter) (account.Account, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(account.Account), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, f repo.Filter, o repo.Order) ([]account.Account, error) {
	args := m.Called(ctx, f, o)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Account), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, f repo.Filter, p repo.Patch) ([]account.Account, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]account.Account), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, f repo.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Count(ctx context.Context, f repo.Filter) (int64, error) {
	args := m.Called(ctx, f)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Exists(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

// MockHasher is a testify mock of account.Hasher.
type MockHasher struct {
	mock.Mock
}

// NewMockHasher creates a MockHasher that asserts its expectations on
// test cleanup.
func NewMockHasher(t *testing.T) *MockHasher {
	t.Helper()
	m := &MockHasher{}
	m.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockHasher) Verify(password, digest string) (bool, error) {
	args := m.Called(password, digest)
	return args.Bool(0), args.Error(1)
}

// Compile-time interface checks.
var (
	_ account.Repository = (*MockRepository)(nil)
	_ account.Hasher     = (*MockHasher)(nil)
)
