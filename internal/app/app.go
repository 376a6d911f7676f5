// Package app wires the configuration, registry, oracle, and assistant
// into one explicitly constructed graph.
package app

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"agenthub/internal/domain"
	"agenthub/internal/infra/catalog"
	"agenthub/internal/infra/intent"
	"agenthub/internal/infra/registry"
	"agenthub/internal/infra/telemetry"
)

type Options struct {
	Config catalog.Config
	// Metrics defaults to NopMetrics; commands that serve /metrics pass
	// the prometheus implementation.
	Metrics domain.Metrics
	Logger  *zap.Logger
}

// App bundles the constructed components for the CLI commands.
type App struct {
	Config    catalog.Config
	Manager   *registry.Manager
	Assistant *Assistant

	connectTimeout time.Duration
}

func New(ctx context.Context, opts Options) (*App, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = telemetry.NopMetrics{}
	}
	cfg := opts.Config

	chatModel, err := intent.InitChatModel(ctx, cfg.Oracle)
	if err != nil {
		return nil, fmt.Errorf("initialize oracle: %w", err)
	}

	manager := registry.NewManager(registry.ManagerOptions{
		CallTimeout: time.Duration(cfg.Runtime.CallTimeoutSeconds) * time.Second,
		Logger:      logger,
		Metrics:     metrics,
	})
	manager.LoadServers(cfg.Servers)

	resolver := intent.NewResolver(chatModel, intent.ResolverOptions{
		Provider: cfg.Oracle.Provider,
		Model:    cfg.Oracle.Model,
		Metrics:  metrics,
		Logger:   logger,
	})

	assistant := NewAssistant(AssistantOptions{
		Manager:  manager,
		Resolver: resolver,
		Model:    chatModel,
		Logger:   logger,
	})

	return &App{
		Config:         cfg,
		Manager:        manager,
		Assistant:      assistant,
		connectTimeout: time.Duration(cfg.Runtime.ConnectTimeoutSeconds) * time.Second,
	}, nil
}

// Connect opens every configured server, bounded by the configured
// connect timeout.
func (a *App) Connect(ctx context.Context) error {
	connectCtx, cancel := context.WithTimeout(ctx, a.connectTimeout)
	defer cancel()
	return a.Manager.ConnectAll(connectCtx)
}

// Close tears down all server connections.
func (a *App) Close() {
	a.Manager.CloseAll()
}
