// Command agenthub-servers hosts the four tool servers (memory, tasks,
// calendar, crawler) behind one streamable HTTP listener.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agenthub/internal/server/host"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	var (
		addr    string
		dataDir string
		apiKey  string
	)

	root := &cobra.Command{
		Use:          "agenthub-servers",
		Short:        "Host the memory, tasks, calendar, and crawler tool servers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := zap.NewProduction()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if apiKey == "" {
				apiKey = os.Getenv("AGENTHUB_SERVERS_API_KEY")
			}

			servers, err := host.New(host.Options{
				DataDir: dataDir,
				APIKey:  apiKey,
				Logger:  logger,
			})
			if err != nil {
				return err
			}
			defer func() {
				if err := servers.Close(); err != nil {
					logger.Warn("store close failed", zap.Error(err))
				}
			}()

			return serve(cmd.Context(), addr, servers.Handler(), logger)
		},
	}

	root.Flags().StringVar(&addr, "addr", "127.0.0.1:8000", "listen address")
	root.Flags().StringVar(&dataDir, "data-dir", "data", "directory for the store files")
	root.Flags().StringVar(&apiKey, "api-key", "", "bearer token required on every request (env AGENTHUB_SERVERS_API_KEY)")
	return root
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *zap.Logger) error {
	server := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errChan := make(chan error, 1)
	go func() {
		logger.Info("tool servers listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
