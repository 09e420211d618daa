package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"vcs/internal/api"
	"vcs/internal/middleware"
	"vcs/internal/repository"
	"vcs/internal/watch"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve history and objects over a read-only HTTP API",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		addr, _ := cmd.Flags().GetString("addr")
		if addr == "" {
			addr = fmt.Sprintf("%s:%d", repo.Config.Server.Host, repo.Config.Server.Port)
		}

		handler := middleware.Chain(
			api.NewHandler(repo, logger.Named("api")).Routes(),
			middleware.Logger(logger),
			middleware.Recover(logger),
			middleware.RequestID,
		)
		srv := &http.Server{
			Addr:              addr,
			Handler:           handler,
			ReadHeaderTimeout: 10 * time.Second,
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			logger.Info("Starting server", zap.String("address", addr))
			errCh <- srv.ListenAndServe()
		}()
		fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on http://%s\n", repo.Root, addr)

		select {
		case err := <-errCh:
			if !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("server failed: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	},
}

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Commit the repository root whenever files change",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		repo, err := openRepo()
		if err != nil {
			return err
		}
		defer repo.Close()

		out := cmd.OutOrStdout()
		debounce := time.Duration(repo.Config.Watch.DebounceMillis) * time.Millisecond
		w, err := watch.New(repo.Root, repository.DirName, debounce, repo, logger.Named("watch").Logger,
			watch.OnCommit(func(r *repository.StageAllResult) {
				reportCommit(out, r.Commit, nil)
			}))
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		fmt.Fprintf(out, "Watching %s\n", repo.Root)
		return w.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (defaults to server.host:server.port from config)")
}
