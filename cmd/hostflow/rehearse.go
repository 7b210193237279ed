package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow"
	"github.com/aretw0/hostflow/internal/presentation/tui"
	"github.com/aretw0/hostflow/pkg/domain"
	"github.com/aretw0/hostflow/pkg/runner"
)

var rehearseCmd = &cobra.Command{
	Use:   "rehearse [flow.yaml]",
	Short: "Hold a conversation in the terminal, typing the guest's lines",
	Long: `Runs the flow against the configured language model with the terminal as transport.
Type the guest's replies; /quit or Ctrl-D makes the guest leave.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := loadEngine(args)
		if err != nil {
			return err
		}
		model, err := newModel(ctx)
		if err != nil {
			return err
		}
		sessions, closeSessions, err := newSessions(ctx)
		if err != nil {
			return err
		}
		defer closeSessions()

		interactive := tui.IsInteractive(os.Stdin)
		out := cmd.OutOrStdout()
		if interactive {
			tui.PrintBanner(out)
		}
		host, _ := cmd.Flags().GetString("host")
		console := tui.NewConsole(cmd.InOrStdin(), out, tui.WithHostName(host), tui.WithPrompt(interactive))

		showNodes, _ := cmd.Flags().GetBool("show-nodes")
		sess, err := engine.NewRunner(model,
			runner.WithSessionID(hostflow.NewSessionID()),
			runner.WithSessions(sessions),
			runner.WithUpdates(func(prev, next *domain.Session) {
				if showNodes && (prev == nil || prev.CurrentNodeID != next.CurrentNodeID) {
					fmt.Fprintf(os.Stderr, "  [node: %s]\n", next.CurrentNodeID)
				}
			}),
		).Run(ctx, console)
		if sess != nil {
			printSummary(sess)
		}
		if err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func printSummary(sess *domain.Session) {
	fmt.Fprintf(os.Stderr, "\nConversation %s ended at %q (%s) after %d transitions.\n",
		sess.ID, sess.CurrentNodeID, sess.EndReason, sess.Transitions)
	if len(sess.CollectedArguments) == 0 {
		return
	}
	data, err := json.MarshalIndent(sess.CollectedArguments, "", "  ")
	if err != nil {
		return
	}
	fmt.Fprintf(os.Stderr, "Collected:\n%s\n", data)
}

func init() {
	rootCmd.AddCommand(rehearseCmd)
	rehearseCmd.Flags().String("host", "host", "label printed before the host's lines")
	rehearseCmd.Flags().Bool("show-nodes", false, "print each node the conversation enters")
}
