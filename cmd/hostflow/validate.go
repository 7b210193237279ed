package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow/internal/validator"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flow.yaml]",
	Short: "Check the flow for consistency",
	Long: `Loads the flow, reporting every configuration problem, then checks that each node
is reachable from the initial node and that every node can reach a terminal node.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(args)
		if err != nil {
			return err
		}
		if err := engine.Validate(); err != nil {
			return fmt.Errorf("validation failed: %w", err)
		}
		n, path := validator.LongestPath(engine.Graph())
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Flow %q is valid ✅\n", engine.Name)
		fmt.Fprintf(out, "  nodes: %d\n", len(engine.Inspect()))
		fmt.Fprintf(out, "  longest path: %d transitions (%s)\n", n, strings.Join(path, " → "))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
