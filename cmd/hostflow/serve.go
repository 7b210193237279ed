package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow"
	httpAdapter "github.com/aretw0/hostflow/pkg/adapters/http"
	"github.com/aretw0/hostflow/pkg/observability"
)

var serveCmd = &cobra.Command{
	Use:   "serve [flow.yaml]",
	Short: "Start the HTTP server",
	Long: `Serves the flow over HTTP: graph inspection, session snapshots, SSE session diffs,
Prometheus metrics and, when a language model is configured, conversations over websocket (/ws).`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		metrics := observability.NewMetrics()
		engine, err := loadEngine(args, hostflow.WithLifecycleHooks(metrics.Hooks()))
		if err != nil {
			return err
		}
		sessions, closeSessions, err := newSessions(ctx)
		if err != nil {
			return err
		}
		defer closeSessions()

		opts := []httpAdapter.Option{
			httpAdapter.WithSessions(sessions),
			httpAdapter.WithMetrics(metrics),
			httpAdapter.WithLogger(logger),
			httpAdapter.WithInfo(engine.Name, hostflow.Version),
		}
		if model, err := newModel(ctx); err != nil {
			logger.Warn("Conversations disabled", "err", err)
		} else {
			opts = append(opts, httpAdapter.WithModel(model))
		}

		api := httpAdapter.NewServer(engine, opts...)
		srv := &http.Server{
			Addr:              cfg.Listen,
			Handler:           api.Handler(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		serverErrors := make(chan error, 1)
		go func() {
			logger.Info("Starting hostflow server", "addr", srv.Addr, "flow", engine.Name)
			serverErrors <- srv.ListenAndServe()
		}()

		select {
		case err := <-serverErrors:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
			logger.Info("Shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			api.Shutdown(shutdownCtx)
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("Graceful shutdown did not complete", "err", err)
				return srv.Close()
			}
			logger.Info("hostflow server stopped gracefully")
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
