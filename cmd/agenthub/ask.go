package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func newAskCommand(state *rootState) *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:   "ask <query>",
		Short: "Answer a single query and exit",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			application, err := state.buildApp(ctx)
			if err != nil {
				return err
			}
			if err := application.Connect(ctx); err != nil {
				return err
			}
			defer application.Close()

			query := strings.Join(args, " ")
			response, err := application.Assistant.Answer(ctx, query)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if verbose {
				fmt.Fprintf(out, "intent: %s\n", response.Intent)
				if response.Tool != "" {
					fmt.Fprintf(out, "tool: %s\n", response.Tool)
					fmt.Fprintf(out, "tool output: %s\n", response.ToolOutput)
				}
			}
			fmt.Fprintln(out, response.Reply)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print the classified intent and tool output")
	return cmd
}
