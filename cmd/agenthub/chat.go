package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agenthub/internal/infra/telemetry"
)

func newChatCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Interactive REPL against the connected tool servers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			application, err := state.buildApp(ctx)
			if err != nil {
				return err
			}
			if err := application.Connect(ctx); err != nil {
				return err
			}
			defer application.Close()

			if addr := application.Config.Runtime.ObservabilityAddress; addr != "" {
				go func() {
					err := telemetry.StartHTTPServer(ctx, telemetry.HTTPServerOptions{
						Addr:     addr,
						Registry: state.registry,
					}, state.logger)
					if err != nil {
						state.logger.Warn("observability server stopped", zap.Error(err))
					}
				}()
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Connected. Type a query, or 'exit' to quit.")

			scanner := bufio.NewScanner(cmd.InOrStdin())
			for {
				fmt.Fprint(out, "> ")
				if !scanner.Scan() {
					fmt.Fprintln(out)
					return scanner.Err()
				}
				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}
				if line == "exit" || line == "quit" {
					return nil
				}

				response, err := application.Assistant.Answer(ctx, line)
				if err != nil {
					fmt.Fprintf(out, "error: %v\n", err)
					continue
				}
				fmt.Fprintln(out, response.Reply)
			}
		},
	}
}
