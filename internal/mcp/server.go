package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/indexer"
	"github.com/SteedMonteiro/mcp-local-context/internal/search"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

// Version is the server version reported in the MCP handshake.
const Version = "v0.1.0"

// toolNames lists every registered tool, in registration order.
var toolNames = []string{
	"list_local_docs",
	"get_local_doc",
	"search_local_docs",
	"list_docs_by_type",
	"semantic_search",
	"build_docs_index",
	"get_capabilities",
}

// Server wraps the MCP server with dependencies.
type Server struct {
	server     *mcp.Server
	store      *docstore.Store
	classifier *classifier.Classifier
	engine     *search.Engine
	manager    *indexer.Manager
	backend    vector.Backend
}

// Config holds server dependencies.
type Config struct {
	Store      *docstore.Store
	Classifier *classifier.Classifier
	Engine     *search.Engine
	Manager    *indexer.Manager
	Backend    vector.Backend
}

// NewServer creates a configured MCP server with tools registered.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "mcp-local-context",
		Version: Version,
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_local_docs",
		Description: "List all available local documentation files across all configured source directories.",
	}, makeListHandler(cfg.Store))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_local_doc",
		Description: "Retrieve a specific local documentation file by its root-qualified path. Returns full content and the classified document type.",
	}, makeGetHandler(cfg.Store, cfg.Classifier))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_local_docs",
		Description: "Search local documentation by path substring. Optionally restrict results to a document type (documentation, guide, or convention).",
	}, makeSearchHandler(cfg.Store, cfg.Classifier))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_docs_by_type",
		Description: "List local documentation files of a given type: documentation, guide, or convention.",
	}, makeListByTypeHandler(cfg.Store, cfg.Classifier))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "semantic_search",
		Description: "Search local documentation by meaning using vector similarity. Requires the documentation index to be built.",
	}, makeSemanticSearchHandler(cfg.Engine))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "build_docs_index",
		Description: "Build or rebuild the semantic search index from all local documentation files.",
	}, makeBuildIndexHandler(cfg.Manager))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_capabilities",
		Description: "Report server capabilities: available search modes, document counts per source, and the registered tools.",
	}, makeCapabilitiesHandler(cfg.Store, cfg.Engine, cfg.Manager, toolNames))

	return &Server{
		server:     server,
		store:      cfg.Store,
		classifier: cfg.Classifier,
		engine:     cfg.Engine,
		manager:    cfg.Manager,
		backend:    cfg.Backend,
	}
}

// Run starts the server with stdio transport (blocks until client disconnects).
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// MCPServer returns the underlying MCP server instance.
// Used by transport handlers that need to wrap the server.
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}
