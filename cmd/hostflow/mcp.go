package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/hostflow"
	"github.com/aretw0/hostflow/pkg/adapters/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp [flow.yaml]",
	Short: "Run the Model Context Protocol (MCP) server",
	Long: `Holds one conversation and exposes it to an MCP client, which acts as the language model.
The current node's actions are published as tools; the tool list changes on every transition.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		engine, err := loadEngine(args)
		if err != nil {
			return err
		}
		sessions, closeSessions, err := newSessions(ctx)
		if err != nil {
			return err
		}
		defer closeSessions()

		sessionID, _ := cmd.Flags().GetString("session")
		if sessionID == "" {
			sessionID = hostflow.NewSessionID()
		}
		srv, err := mcp.NewServer(ctx, engine,
			mcp.WithSessionID(sessionID),
			mcp.WithSessions(sessions),
			mcp.WithLogger(logger),
			mcp.WithInfo("hostflow-mcp", hostflow.Version),
		)
		if err != nil {
			return err
		}

		transport, _ := cmd.Flags().GetString("transport")
		switch transport {
		case "stdio":
			// Keep stray log output off the JSON-RPC stream.
			log.SetOutput(os.Stderr)
			logger.Info("Starting hostflow MCP server (stdio)", "session", sessionID)
			return srv.ServeStdio()
		case "sse":
			addr, _ := cmd.Flags().GetString("addr")
			if err := srv.ServeSSE(ctx, addr); err != nil {
				return err
			}
			logger.Info("MCP server stopped gracefully")
			return nil
		default:
			return fmt.Errorf("unknown transport %q (supported: stdio, sse)", transport)
		}
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().String("transport", "stdio", "transport protocol: stdio or sse")
	mcpCmd.Flags().String("addr", ":8081", "listen address (sse only)")
	mcpCmd.Flags().String("session", "", "conversation id (random when empty)")
}
