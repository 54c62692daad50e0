// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Accountd Contributors

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/accountd/accountd/internal/account"
	"github.com/accountd/accountd/internal/account/postgres"
	"github.com/accountd/accountd/internal/config"
	"github.com/accountd/accountd/internal/httpapi"
	"github.com/accountd/accountd/internal/logging"
	"github.com/accountd/accountd/internal/observability"
	"github.com/accountd/accountd/internal/store"
	"github.com/accountd/accountd/internal/token"
	"github.com/accountd/accountd/internal/xdg"
	"github.com/accountd/accountd/pkg/errutil"
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the account service",
		Long: `Start the HTTP API and the observability endpoints, connect to
PostgreSQL and serve until interrupted.`,
		RunE: runServe,
	}

	// Flag defaults mirror config.Default(); posflag only falls back to
	// a flag's default when no other source provided the key.
	defaults := config.Default()
	cmd.Flags().String("server.addr", defaults.Server.Addr, "API listen address")
	cmd.Flags().String("server.observability_addr", defaults.Server.ObservabilityAddr, "metrics and health listen address")
	cmd.Flags().String("log.format", defaults.Log.Format, "log format (json or text)")

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	path := configFile
	if path == "" {
		path = xdg.DefaultConfigFile()
	}

	cfg, err := config.Load(path, cmd.Flags())
	if err != nil {
		return err
	}

	logging.SetDefault("accountd", version, cfg.Log.Format)
	logger := slog.Default()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return err
	}
	defer pool.Close()

	accounts := postgres.NewAccountRepository(pool)
	service, err := account.NewService(accounts, account.NewAutoHasher())
	if err != nil {
		return err
	}
	tokens, err := token.NewService([]byte(cfg.Token.Secret))
	if err != nil {
		return err
	}

	obs := observability.NewServer(cfg.Server.ObservabilityAddr, func() bool {
		pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		return pool.Ping(pingCtx) == nil
	})
	obsErrCh, err := obs.Start()
	if err != nil {
		return err
	}

	api, err := httpapi.NewServer(service, tokens, cfg.Token.TTL,
		httpapi.WithMetrics(obs.Metrics()),
		httpapi.WithLogger(logger),
	)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	apiErrCh := make(chan error, 1)
	go func() {
		logger.Info("api server started", "addr", cfg.Server.Addr)
		if serveErr := httpSrv.ListenAndServe(); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			apiErrCh <- serveErr
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case serveErr := <-apiErrCh:
		errutil.LogError(logger, "api server failed", serveErr)
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	case serveErr := <-obsErrCh:
		errutil.LogError(logger, "observability server failed", serveErr)
		return oops.Code("SERVE_FAILED").Wrap(serveErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		errutil.LogError(logger, "api shutdown failed", err)
	}
	if err := obs.Stop(shutdownCtx); err != nil {
		errutil.LogError(logger, "observability shutdown failed", err)
	}

	logger.Info("server stopped")
	return nil
}
