package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newToolsCommand(state *rootState) *cobra.Command {
	return &cobra.Command{
		Use:   "tools",
		Short: "List the aggregated tool catalog",
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

			out := cmd.OutOrStdout()
			for _, tool := range application.Manager.Tools() {
				fmt.Fprintf(out, "%s\t%s\n", tool.Name, tool.Description)
			}
			for _, dup := range application.Manager.Duplicates() {
				fmt.Fprintf(out, "warning: %s\n", dup.Message)
			}
			return nil
		},
	}
}
