package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"jira_gateway/internal/model"
)

// Dispatcher runs a gateway command and returns its envelope.
type Dispatcher interface {
	Dispatch(ctx context.Context, req model.CommandRequest) model.Envelope
}

// NewServer creates an MCP server exposing every gateway command as a tool
func NewServer(d Dispatcher) (*server.MCPServer, error) {
	// Create MCP server
	s := server.NewMCPServer(
		"jira gateway",
		"1.0.0",
	)

	// Add Jira tools
	if err := registerJiraTools(s, d); err != nil {
		return nil, err
	}

	return s, nil
}

// Serve starts the MCP server over stdio
func Serve(s *server.MCPServer) error {
	return server.ServeStdio(s)
}
