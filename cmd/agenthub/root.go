package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"agenthub/internal/app"
	"agenthub/internal/infra/catalog"
	"agenthub/internal/infra/telemetry"
)

type rootState struct {
	configPath string
	debug      bool
	logger     *zap.Logger
	registry   *prometheus.Registry
}

func newRootCommand() *cobra.Command {
	state := &rootState{}

	root := &cobra.Command{
		Use:           "agenthub",
		Short:         "Personal assistant over MCP tool servers",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			cfg := zap.NewProductionConfig()
			if state.debug {
				cfg = zap.NewDevelopmentConfig()
				cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
			}
			logger, err := cfg.Build()
			if err != nil {
				return err
			}
			state.logger = logger
			state.registry = prometheus.NewRegistry()
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if state.logger != nil {
				_ = state.logger.Sync()
			}
		},
	}

	root.PersistentFlags().StringVarP(&state.configPath, "config", "c", "config.yaml", "path to the YAML config file")
	root.PersistentFlags().BoolVar(&state.debug, "debug", false, "enable debug logging")

	root.AddCommand(newAskCommand(state))
	root.AddCommand(newChatCommand(state))
	root.AddCommand(newToolsCommand(state))
	return root
}

// buildApp loads config and constructs the component graph. The caller
// owns Connect/Close.
func (s *rootState) buildApp(ctx context.Context) (*app.App, error) {
	loader := catalog.NewLoader(s.logger)
	cfg, err := loader.Load(ctx, s.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return app.New(ctx, app.Options{
		Config:  cfg,
		Metrics: telemetry.NewPrometheusMetrics(s.registry),
		Logger:  s.logger,
	})
}
