package cmd

import (
	"fmt"
	"os"
	ossignal "os/signal"
	"syscall"

	"github.com/facebookincubator/go-belt/tool/logger"
	"github.com/mj1618/focusguard/internal/model"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run focus arbitration behind an MCP server",
	Long: `Run focus arbitration for a window and start a Model Context Protocol (MCP)
server that lets an agent announce window switches, inspect the arbitration
state and send input to the watched window.

Supported transports:
  stdio             Standard I/O (default, for MCP clients)
  streamable-http   Streamable HTTP transport (for remote agents)

Examples:
  focusguard serve --window 0x1a00003
  focusguard serve --transport streamable-http --port 8080`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().String("window", windowActive, "Window id to watch, or \"active\"")
	serveCmd.Flags().String("transport", "stdio", "Transport: stdio, streamable-http")
	serveCmd.Flags().Int("port", 8080, "HTTP port for streamable-http transport")
}

func runServe(cmd *cobra.Command, args []string) error {
	window, _ := cmd.Flags().GetString("window")
	transport, _ := cmd.Flags().GetString("transport")
	port, _ := cmd.Flags().GetInt("port")

	ctx, cancel := ossignal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	loop := newFocusLoop(window)
	srv := newMCPServer(loop)

	go func() {
		err := loop.run(ctx, func(d model.Decision) error {
			if noteworthy(d) {
				logger.Infof(ctx, "%s: %s -> %s (steal back %s)", d.Verdict, d.Original, d.Event, d.StealBack)
			}
			return nil
		})
		if err != nil {
			logger.Errorf(ctx, "focus arbitration stopped: %v", err)
		}
	}()

	if err := srv.serve(MCPConfig{Transport: transport, Port: port}); err != nil {
		return fmt.Errorf("MCP server failed: %w", err)
	}
	return nil
}
