// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package main

import (
	"os"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/store"
)

// NewMigrateCmd creates the migrate subcommand.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			RunE:  runMigrate((*store.Migrator).Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations (drops all account data)",
			RunE:  runMigrate((*store.Migrator).Down),
		},
		&cobra.Command{
			Use:   "status",
			Short: "Show the current schema version",
			RunE:  runMigrateStatus,
		},
	)

	return cmd
}

// databaseURL resolves the connection string for migration commands.
// Migrations only need the database, so the full config (with its
// token secret requirement) is not loaded here.
func databaseURL() (string, error) {
	url := os.Getenv(config.EnvDatabaseURL)
	if url == "" {
		return "", oops.Code("CONFIG_INVALID").
			Errorf("%s environment variable is required", config.EnvDatabaseURL)
	}
	return url, nil
}

func runMigrate(op func(*store.Migrator) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, _ []string) error {
		url, err := databaseURL()
		if err != nil {
			return err
		}

		migrator, err := store.NewMigrator(url)
		if err != nil {
			return err
		}
		defer func() { _ = migrator.Close() }()

		if err := op(migrator); err != nil {
			return err
		}
		cmd.Println("migration complete")
		return nil
	}
}

func runMigrateStatus(cmd *cobra.Command, _ []string) error {
	url, err := databaseURL()
	if err != nil {
		return err
	}

	migrator, err := store.NewMigrator(url)
	if err != nil {
		return err
	}
	defer func() { _ = migrator.Close() }()

	version, dirty, err := migrator.Version()
	if err != nil {
		return err
	}
	if version == 0 {
		cmd.Println("no migrations applied")
		return nil
	}
	cmd.Printf("version %d (dirty: %v)\n", version, dirty)
	return nil
}
