package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	wardenmcp "github.com/txwarden/txwarden/internal/mcp"
)

var mcpServerURL string

func init() {
	rootCmd.AddCommand(mcpCmd)
	mcpCmd.Flags().StringVar(&mcpServerURL, "server", "http://localhost:8000", "Admission server base URL")
}

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Start MCP tool server for agent integration",
	Long:  "Runs txwarden as an MCP (Model Context Protocol) server over stdio.\nExposes admission tools: submit, hash.",
	RunE:  runMCP,
}

func runMCP(cmd *cobra.Command, args []string) error {
	srv := wardenmcp.New(wardenmcp.Config{ServerURL: mcpServerURL})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		fmt.Fprintln(os.Stderr, "\nShutting down MCP server...")
		cancel()
	}()

	fmt.Fprintln(os.Stderr, "txwarden MCP server running on stdio")
	fmt.Fprintln(os.Stderr)

	return srv.Run(ctx)
}
