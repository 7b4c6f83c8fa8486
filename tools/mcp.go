package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer registers every tool of reg on a Model Context Protocol server.
func NewMCPServer(reg *Registry, name, version string) *server.MCPServer {
	s := server.NewMCPServer(name, version,
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)

	for _, t := range reg.Tools() {
		s.AddTool(
			mcp.NewToolWithRawSchema(t.Name, t.Description, t.InputSchema),
			func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
				args, err := json.Marshal(request.Params.Arguments)
				if err != nil {
					return nil, fmt.Errorf("failed to encode %s arguments: %w", t.Name, err)
				}

				result := reg.Call(ctx, t.Name, args)
				if result.IsError {
					return mcp.NewToolResultError(result.Text), nil
				}
				return mcp.NewToolResultText(result.Text), nil
			},
		)
	}
	return s
}

// NewMCPHandler serves s over the streamable HTTP transport.
func NewMCPHandler(s *server.MCPServer) http.Handler {
	return server.NewStreamableHTTPServer(s)
}
