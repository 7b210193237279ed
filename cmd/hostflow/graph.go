package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph [flow.yaml]",
	Short: "Export the flow as a Mermaid diagram",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(args)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), graph.GenerateMermaid(engine.Inspect(), engine.Graph().Start(), nil))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
