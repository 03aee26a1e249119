package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/vietcare/health-rag/internal/chat"
	"github.com/vietcare/health-rag/internal/retriever"
	"github.com/vietcare/health-rag/internal/vectorstore"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server    *mcp.Server
	retriever *retriever.Retriever
	chain     *chat.Chain
	index     vectorstore.Index
}

// Config holds server dependencies.
type Config struct {
	Retriever *retriever.Retriever
	Chain     *chat.Chain
	Index     vectorstore.Index
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "health-knowledge-server",
		Version: "v0.1.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_knowledge",
		Description: "Search the health knowledge base semantically. Returns the most relevant chunks with sources and similarity scores.",
	}, makeSearchHandler(cfg.Retriever))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask_health",
		Description: "Ask a health question and get a grounded answer generated from the knowledge base, with sources cited.",
	}, makeAskHandler(cfg.Chain))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_index_status",
		Description: "Get the current status of the health knowledge index: chunk count, embedding dimension and backend.",
	}, makeStatusHandler(cfg.Index))

	return &Server{
		server:    server,
		retriever: cfg.Retriever,
		chain:     cfg.Chain,
		index:     cfg.Index,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance for transport
// handlers that need to wrap it.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
