package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow/internal/config"
	"github.com/aretw0/hostflow/internal/logging"
)

var (
	cfg    = config.Default()
	logger = logging.NewNop()
)

var rootCmd = &cobra.Command{
	Use:   "hostflow",
	Short: "hostflow drives voice conversations through a node graph",
	Long: `hostflow loads a conversation flow (nodes, actions and entry effects) and lets a
language model host a conversation through it, one node at a time.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logging.ParseLevel(cfg.LogLevel)
		if err != nil {
			return err
		}
		logger = logging.NewWithFormat(os.Stderr, level, logging.Format(cfg.LogFormat))
		slog.SetDefault(logger)
		return nil
	},
}

// Execute reads the environment, binds flags over it and runs the command.
func Execute() {
	loaded, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg = loaded
	config.BindFlags(rootCmd.PersistentFlags(), &cfg)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
