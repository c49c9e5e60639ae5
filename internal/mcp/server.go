package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/bull/manual-copilot/internal/index"
	"github.com/bull/manual-copilot/internal/manuals"
)

// Retriever assembles the context set for a query. Implemented by
// retrieval.Merger.
type Retriever interface {
	Retrieve(ctx context.Context, message string) ([]index.ChunkRecord, bool, error)
}

// UnitLister enumerates indexed units. Implemented by index.Index.
type UnitLister interface {
	ListUnits(ctx context.Context) ([]string, error)
}

// Config holds server dependencies.
type Config struct {
	Retriever Retriever
	Registry  *manuals.Registry
	Units     UnitLister
}

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

// NewServer creates a configured MCP server with the manual tools
// registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "manual-copilot-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_manuals",
		Description: "Search the indexed equipment manuals. Mentioning a unit number scopes results to that unit; parts/spec vocabulary also searches across all manuals.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_manuals",
		Description: "List all registered equipment manuals with their unit numbers and page counts.",
	}, makeListHandler(cfg.Registry))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Report which units currently have a vector index and how many manuals are registered.",
	}, makeStatusHandler(cfg.Units, cfg.Registry))

	return &Server{server: server}
}

// Run serves over stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
