package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow/internal/presentation/graph"
	"github.com/aretw0/hostflow/internal/presentation/tui"
)

var describeCmd = &cobra.Command{
	Use:   "describe [flow.yaml]",
	Short: "Print a readable description of every node",
	Long:  `Renders the flow as markdown: each node's instructions, actions with their arguments and entry effects.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		engine, err := loadEngine(args)
		if err != nil {
			return err
		}
		doc := graph.Markdown(engine.Name, engine.Inspect(), engine.Graph().Start())

		raw, _ := cmd.Flags().GetBool("raw")
		if raw || !tui.IsInteractive(os.Stdout) {
			fmt.Fprint(cmd.OutOrStdout(), doc)
			return nil
		}
		width, _ := cmd.Flags().GetInt("width")
		render, err := tui.NewRenderer(width)
		if err != nil {
			return err
		}
		out, err := render(doc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(describeCmd)
	describeCmd.Flags().Bool("raw", false, "print markdown without terminal styling")
	describeCmd.Flags().Int("width", 100, "word wrap width")
}
