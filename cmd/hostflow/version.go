package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of hostflow",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hostflow version %s\n", strings.TrimSpace(hostflow.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
