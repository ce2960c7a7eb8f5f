// Package mcp exposes txwarden over the Model Context Protocol so agents can
// submit transactions and precompute correlation ids as tools.
package mcp

import (
	"context"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/txwarden/txwarden/internal/client"
)

// Config holds MCP server configuration.
type Config struct {
	// ServerURL is the base URL of the running admission server, e.g.
	// "http://localhost:8000".
	ServerURL string
}

// Server wraps the MCP SDK server with txwarden tools.
type Server struct {
	mcpServer *mcpsdk.Server
	client    *client.Client
}

// New creates an MCP server wired to the given admission server.
func New(cfg Config) *Server {
	url := cfg.ServerURL
	if url == "" {
		url = "http://localhost:8000"
	}

	s := &Server{
		client: client.New(url),
	}

	s.mcpServer = mcpsdk.NewServer(
		&mcpsdk.Implementation{
			Name:    "txwarden",
			Version: "0.1.0",
		},
		nil,
	)

	s.registerTools()
	return s
}

// Run starts the MCP server on stdio transport. Blocks until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	return s.mcpServer.Run(ctx, &mcpsdk.StdioTransport{})
}

// registerTools adds all txwarden tools to the MCP server.
func (s *Server) registerTools() {
	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "txwarden_submit",
		Description: "Submit an outbound transaction for admission. Blocks until a terminal APPROVED or REJECTED decision; rejected transactions never reach the chain.",
	}, s.handleSubmit)

	mcpsdk.AddTool(s.mcpServer, &mcpsdk.Tool{
		Name:        "txwarden_hash",
		Description: "Compute the correlation id a transaction request would be assigned, without submitting it.",
	}, s.handleHash)
}
