// Package mcp exposes the cover engine and scene store as MCP tools over
// stdio, for agent and editor integrations.
package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/louisbranch/defilade/internal/cover"
	"github.com/louisbranch/defilade/internal/storage"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Defilade Cover Engine"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
)

// Deps carries the stores and engine configuration the tool handlers run
// against. Nil stores disable the tools that need them with a clear error.
type Deps struct {
	Scenes      storage.SceneStore
	Evaluations storage.EvaluationStore
	Engine      cover.Config
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
}

// New creates a configured MCP server with every cover and scene tool
// registered.
func New(deps Deps) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, nil)

	mcp.AddTool(mcpServer, CoverBetweenTokensTool(), CoverBetweenTokensHandler(deps))
	mcp.AddTool(mcpServer, CoverFromPointTool(), CoverFromPointHandler(deps))
	mcp.AddTool(mcpServer, SceneGetTool(), SceneGetHandler(deps))
	mcp.AddTool(mcpServer, ScenePutTool(), ScenePutHandler(deps))
	mcp.AddTool(mcpServer, SceneListTool(), SceneListHandler(deps))
	mcp.AddTool(mcpServer, EvaluationListTool(), EvaluationListHandler(deps))

	return &Server{mcpServer: mcpServer}
}

// Serve starts the MCP server on stdio and blocks until it stops or the
// context ends.
func (s *Server) Serve(ctx context.Context) error {
	return s.serveWithTransport(ctx, &mcp.StdioTransport{})
}

// serveWithTransport starts the MCP server using the provided transport.
// Context cancellation is the normal shutdown path, not an error.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}
