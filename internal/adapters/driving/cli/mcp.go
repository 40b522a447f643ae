package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/shopdesk/internal/adapters/driving/mcp"
	"github.com/custodia-labs/shopdesk/internal/logger"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so AI assistants can answer
customer questions from the shop catalog.

By default, the server communicates over stdio using JSON-RPC.
Use --port to start an HTTP server instead.
Use --refresh-every to rebuild the catalog on a schedule while serving.

Examples:
  # Stdio mode
  shopdesk mcp serve

  # HTTP mode with a nightly refresh
  shopdesk mcp serve --port 8080 --refresh-every 24h`,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntP("port", "p", 0, "HTTP port (0 = use stdio)")
	mcpServeCmd.Flags().Duration("refresh-every", 0, "refresh the catalog on this interval (0 = never)")
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	port, err := cmd.Flags().GetInt("port")
	if err != nil {
		return fmt.Errorf("getting port flag: %w", err)
	}
	every, err := cmd.Flags().GetDuration("refresh-every")
	if err != nil {
		return fmt.Errorf("getting refresh-every flag: %w", err)
	}

	ports := &mcp.Ports{
		Assistant: assistantService,
		Refresh:   refreshService,
	}

	server, err := mcp.NewServer(ports)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	startPromptWatcher(ctx)

	if every > 0 {
		stop, err := startScheduler(ctx, every)
		if err != nil {
			return err
		}
		defer stop()
	}

	if port > 0 {
		addr := fmt.Sprintf(":%d", port)
		fmt.Fprintf(cmd.OutOrStdout(), "MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(ctx, addr)
	}

	return server.Run(ctx)
}

// startScheduler runs the periodic refresh in the background and returns
// a func that stops it.
func startScheduler(ctx context.Context, every time.Duration) (func(), error) {
	if schedulerFactory == nil {
		return nil, errors.New("scheduled refresh not available")
	}
	sched := schedulerFactory(every)
	ctx, cancel := context.WithCancel(ctx)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := sched.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Warn("scheduler stopped: %v", err)
		}
	}()
	logger.Info("refreshing catalog every %s", every)

	return func() {
		cancel()
		if err := sched.Stop(); err != nil {
			logger.Warn("stopping scheduler: %v", err)
		}
		<-done
	}, nil
}
