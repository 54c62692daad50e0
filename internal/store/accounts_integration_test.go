// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

//go:build integration

package store_test

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	. "github.com/onsi/ginkgo/v2" //nolint:revive // ginkgo convention
	. "github.com/onsi/gomega"    //nolint:revive // gomega convention
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/account/postgres"
	"github.com/accountd/accountd/internal/repo"
	"github.com/accountd/accountd/internal/store"
)

// setupPostgres starts a PostgreSQL container, applies migrations and
// returns a connected pool.
func setupPostgres() (*pgxpool.Pool, func(), error) {
	ctx := context.Background()

	container, err := pgcontainer.Run(ctx,
		"postgres:16-alpine",
		pgcontainer.WithDatabase("accountd_test"),
		pgcontainer.WithUsername("accountd"),
		pgcontainer.WithPassword("accountd"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	connStr, err := container.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		return nil, nil, err
	}

	migrator, err := store.NewMigrator(connStr)
	if err != nil {
		return nil, nil, err
	}
	if err := migrator.Up(); err != nil {
		return nil, nil, err
	}
	if err := migrator.Close(); err != nil {
		return nil, nil, err
	}

	pool, err := store.Connect(ctx, connStr)
	if err != nil {
		return nil, nil, err
	}

	cleanup := func() {
		pool.Close()
		_ = container.Terminate(ctx)
	}
	return pool, cleanup, nil
}

var _ = Describe("AccountStore", func() {
	var (
		pool     *pgxpool.Pool
		cleanup  func()
		accounts *postgres.AccountRepository
		service  *account.Service
	)

	BeforeEach(func() {
		var err error
		pool, cleanup, err = setupPostgres()
		Expect(err).NotTo(HaveOccurred())

		accounts = postgres.NewAccountRepository(pool)
		service, err = account.NewService(accounts, account.NewArgon2idHasher())
		Expect(err).NotTo(HaveOccurred())
	})

	AfterEach(func() {
		cleanup()
	})

	Describe("Repository", func() {
		It("assigns ids and timestamps on create", func() {
			ctx := context.Background()
			acct, err := accounts.Create(ctx, repo.Values{
				account.FieldUsername:       "alice",
				account.FieldPasswordDigest: "digest-1",
			})
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.ID).To(BeNumerically(">", 0))
			Expect(acct.CreatedAt).NotTo(BeZero())
			Expect(acct.UpdatedAt).NotTo(BeZero())
		})

		It("enforces username uniqueness through the constraint", func() {
			ctx := context.Background()
			_, err := accounts.Create(ctx, repo.Values{
				account.FieldUsername:       "alice",
				account.FieldPasswordDigest: "digest-1",
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = accounts.Create(ctx, repo.Values{
				account.FieldUsername:       "alice",
				account.FieldPasswordDigest: "digest-2",
			})
			Expect(err).To(MatchError(repo.ErrAmbiguousMatch))
		})

		It("read distinguishes found from not found", func() {
			ctx := context.Background()
			_, err := accounts.Read(ctx, repo.Filter{account.FieldUsername: "nobody"})
			Expect(err).To(MatchError(repo.ErrNotFound))

			_, err = accounts.Create(ctx, repo.Values{
				account.FieldUsername:       "bob",
				account.FieldPasswordDigest: "digest-1",
			})
			Expect(err).NotTo(HaveOccurred())

			acct, err := accounts.Read(ctx, repo.Filter{account.FieldUsername: "bob"})
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.Username).To(Equal("bob"))
		})

		It("delete reports the number of removed rows", func() {
			ctx := context.Background()
			_, err := accounts.Create(ctx, repo.Values{
				account.FieldUsername:       "carol",
				account.FieldPasswordDigest: "digest-1",
			})
			Expect(err).NotTo(HaveOccurred())

			n, err := accounts.Delete(ctx, repo.Filter{account.FieldUsername: "carol"})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(int64(1)))

			n, err = accounts.Delete(ctx, repo.Filter{account.FieldUsername: "carol"})
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(BeZero())
		})
	})

	Describe("Service", func() {
		It("signs up, authenticates and rotates a password", func() {
			ctx := context.Background()

			acct, err := service.Signup(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())
			Expect(acct.Username).To(Equal("alice"))
			Expect(acct.PasswordDigest).NotTo(ContainSubstring("correct horse"))

			_, err = service.Authenticate(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Authenticate(ctx, "alice", "wrong password")
			Expect(err).To(MatchError(account.ErrInvalidCredentials))

			rotated, err := service.RotatePassword(ctx, "alice", "correct horse battery", "staple obvious")
			Expect(err).NotTo(HaveOccurred())
			Expect(rotated.UpdatedAt).To(BeTemporally(">=", rotated.CreatedAt))

			_, err = service.Authenticate(ctx, "alice", "correct horse battery")
			Expect(err).To(MatchError(account.ErrInvalidCredentials))

			_, err = service.Authenticate(ctx, "alice", "staple obvious")
			Expect(err).NotTo(HaveOccurred())
		})

		It("rejects a duplicate signup", func() {
			ctx := context.Background()

			_, err := service.Signup(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Signup(ctx, "alice", "another password")
			Expect(err).To(MatchError(account.ErrAlreadyExists))
		})

		It("treats unknown users and wrong passwords identically", func() {
			ctx := context.Background()

			_, unknownErr := service.Authenticate(ctx, "ghost", "whatever password")
			Expect(unknownErr).To(MatchError(account.ErrInvalidCredentials))

			_, err := service.Signup(ctx, "alice", "correct horse battery")
			Expect(err).NotTo(HaveOccurred())
			_, wrongErr := service.Authenticate(ctx, "alice", "wrong password")
			Expect(wrongErr).To(MatchError(account.ErrInvalidCredentials))
		})
	})
})
