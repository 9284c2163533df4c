package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	pmmcp "github.com/intel/svr-info/internal/mcp"
	"github.com/spf13/cobra"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  "Commands for running the perfmetrics MCP (Model Context Protocol) server.",
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the perfmetrics MCP server on stdio",
	Long: `Start the perfmetrics MCP server on stdio transport.

The server exposes the metric tools to AI coding assistants:
check_events, translate_metrics, reconcile_metrics.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Checker == nil || Translator == nil || Reconciler == nil {
			return fmt.Errorf("metric services not initialized")
		}

		srv := pmmcp.NewServer(Checker, Translator, Reconciler, appVersion)

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		if err := srv.Run(ctx); err != nil {
			return fmt.Errorf("running MCP server: %w", err)
		}

		return nil
	},
}

func init() {
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}
