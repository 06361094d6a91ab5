// Package main provides the MCP server entry point for local
// documentation search.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/config"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/indexer"
	mcpserver "github.com/SteedMonteiro/mcp-local-context/internal/mcp"
	"github.com/SteedMonteiro/mcp-local-context/internal/search"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

func main() {
	// Load .env if present (local development), ignore if missing.
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found, using environment variables")
	}

	configPath := flag.String("config", "", "path to config file (default: "+config.DefaultConfigFile+" if present)")
	flag.Parse()

	// Logs go to stderr: stdout belongs to the stdio transport.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	store := docstore.New(cfg.Roots(), logger)
	store.EnsureRoots()

	cls := classifier.New(classifier.WithMaxLines(cfg.Classifier.MaxLines))
	backend := newBackend(cfg, logger)
	engine := search.New(backend, cls)
	manager := indexer.NewManager(store, cls, backend, logger)

	server := mcpserver.NewServer(&mcpserver.Config{
		Store:      store,
		Classifier: cls,
		Engine:     engine,
		Manager:    manager,
		Backend:    backend,
	})

	mux := http.NewServeMux()
	mux.HandleFunc("/", mcpserver.NewLandingHandler())
	mux.HandleFunc("/health", mcpserver.NewHealthHandler(backend))
	mux.Handle(cfg.Server.Path, mcpserver.NewHTTPHandler(server, nil))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)

	if cfg.Server.Mode == "http" {
		logger.Info("starting HTTP server", "addr", addr, "mcp_path", cfg.Server.Path)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
		return
	}

	// Stdio mode still serves /health in the background for probes.
	go func() {
		logger.Info("starting health server", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logger.Warn("health server error", "error", err)
		}
	}()

	logger.Info("starting local context MCP server (stdio mode)",
		"sources", len(cfg.Sources), "semantic_search", backend.Available())
	if err := server.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// newBackend builds the similarity backend from configuration,
// degrading to a disabled backend with a recorded reason instead of
// failing startup. The server is still useful without it.
func newBackend(cfg config.Config, logger *slog.Logger) vector.Backend {
	if !cfg.Qdrant.Enabled {
		logger.Info("semantic search disabled by configuration")
		return vector.Disabled{Reason: "disabled by configuration"}
	}

	embedder, err := vector.NewOpenAIEmbedder(cfg.Embedding.BatchSize)
	if err != nil {
		logger.Warn("semantic search unavailable", "error", err)
		return vector.Disabled{Reason: err.Error()}
	}

	backend, err := vector.NewQdrant(vector.QdrantConfig{
		Host:       cfg.Qdrant.Host,
		Port:       cfg.Qdrant.Port,
		Collection: cfg.Qdrant.Collection,
	}, embedder, logger)
	if err != nil {
		logger.Warn("semantic search unavailable", "error", err)
		return vector.Disabled{Reason: err.Error()}
	}
	return backend
}
