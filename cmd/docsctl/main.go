// Package main provides the docsctl CLI for managing the local
// documentation index.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/config"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/githubsync"
	"github.com/SteedMonteiro/mcp-local-context/internal/indexer"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "docsctl",
	Short: "Local documentation index management tool",
	Long:  "CLI tool for listing, classifying, syncing and indexing local documentation sources",
}

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build or rebuild the semantic search index",
	Long: `Clears the existing index and rebuilds it from all configured sources.

Environment variables:
  QDRANT_HOST       Qdrant hostname (default: localhost)
  QDRANT_PORT       Qdrant gRPC port (default: 6334)
  OPENAI_API_KEY    OpenAI API key for embeddings (required)
  DOCS_SOURCE_DIRS  Comma-separated source directories (overrides config)`,
	RunE: runIndex,
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check whether the index matches the files on disk",
	RunE:  runValidate,
}

var classifyCmd = &cobra.Command{
	Use:   "classify",
	Short: "Preview how documents would be classified",
	RunE:  runClassify,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all documents across configured sources",
	RunE:  runList,
}

var syncCmd = &cobra.Command{
	Use:   "sync OWNER/REPO [BASE_PATH]",
	Short: "Mirror markdown docs from a GitHub repository into a source directory",
	Long: `Downloads documentation files from a GitHub repository into the
destination directory given by --dest, preserving the remote layout.
Set GITHUB_TOKEN for a higher API rate limit.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSync,
}

var (
	classifyMax int
	syncDest    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	classifyCmd.Flags().IntVar(&classifyMax, "max-files", 50, "maximum files to preview")
	syncCmd.Flags().StringVar(&syncDest, "dest", "", "destination directory (default: first configured source)")
	rootCmd.AddCommand(indexCmd, validateCmd, classifyCmd, listCmd, syncCmd)
}

func main() {
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// setup loads configuration and builds the shared components. The
// similarity backend is only connected when connectBackend is set, so
// read-only commands work without Qdrant or an API key.
func setup(connectBackend bool) (config.Config, *docstore.Store, *indexer.Manager, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return config.Config{}, nil, nil, err
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	store := docstore.New(cfg.Roots(), logger)
	cls := classifier.New(classifier.WithMaxLines(cfg.Classifier.MaxLines))

	var backend vector.Backend = vector.Disabled{Reason: "not connected"}
	if connectBackend && cfg.Qdrant.Enabled {
		embedder, err := vector.NewOpenAIEmbedder(cfg.Embedding.BatchSize)
		if err != nil {
			return config.Config{}, nil, nil, fmt.Errorf("embedding client: %w", err)
		}
		backend, err = vector.NewQdrant(vector.QdrantConfig{
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			Collection: cfg.Qdrant.Collection,
		}, embedder, logger)
		if err != nil {
			return config.Config{}, nil, nil, fmt.Errorf("connect to Qdrant: %w", err)
		}
	}

	return cfg, store, indexer.NewManager(store, cls, backend, logger), nil
}

func runIndex(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	start := time.Now()

	_, _, manager, err := setup(true)
	if err != nil {
		return err
	}
	if !manager.Available() {
		return fmt.Errorf("indexing requires semantic search to be enabled in the configuration")
	}

	fmt.Println("Indexing documents...")
	summary, err := manager.BuildIndex(ctx, func(message string) {
		fmt.Printf("  %s\n", message)
	})
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	fmt.Println()
	fmt.Println(summary)
	fmt.Printf("\nTotal time: %s\n", time.Since(start).Round(time.Second))
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	_, _, manager, err := setup(true)
	if err != nil {
		return err
	}

	v := manager.Validate(context.Background())
	fmt.Printf("Index available:    %v\n", v.IndexAvailable)
	fmt.Printf("Files on disk:      %d\n", v.FilesOnDisk)
	fmt.Printf("Documents in index: %d\n", v.DocumentsInIndex)
	if v.NeedsRebuild {
		fmt.Println("\nIndex is stale: run 'docsctl index' to rebuild.")
		return nil
	}
	fmt.Println("\nIndex is up to date.")
	return nil
}

func runClassify(cmd *cobra.Command, args []string) error {
	_, _, manager, err := setup(false)
	if err != nil {
		return err
	}

	entries := manager.ClassificationPreview(classifyMax)
	if len(entries) == 0 {
		fmt.Println("No document files found.")
		return nil
	}
	for _, entry := range entries {
		fmt.Printf("%-13s %s\n", entry.DocType, entry.Identifier)
	}
	return nil
}

func runList(cmd *cobra.Command, args []string) error {
	_, store, _, err := setup(false)
	if err != nil {
		return err
	}

	ids := store.ListDocuments()
	for _, id := range ids {
		fmt.Println(id)
	}
	fmt.Printf("\n%d documents\n", len(ids))
	return nil
}

func runSync(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, _, _, err := setup(false)
	if err != nil {
		return err
	}

	parts := splitRepo(args[0])
	if parts == nil {
		return fmt.Errorf("invalid repository %q, expected OWNER/REPO", args[0])
	}
	owner, repo := parts[0], parts[1]

	basePath := ""
	if len(args) == 2 {
		basePath = args[1]
	}

	dest := syncDest
	if dest == "" {
		if len(cfg.Sources) == 0 {
			return fmt.Errorf("no destination: pass --dest or configure a source directory")
		}
		dest = cfg.Sources[0].Path
	}

	client, err := githubsync.NewClient(ctx)
	if err != nil {
		return fmt.Errorf("create GitHub client: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	syncer := githubsync.NewSyncer(client, githubsync.Spec{
		Owner:    owner,
		Repo:     repo,
		BasePath: basePath,
		DestDir:  dest,
	}, logger)

	fmt.Printf("Syncing %s into %s...\n", args[0], dest)
	result, err := syncer.Sync(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("Sync complete!")
	fmt.Printf("  Listed:  %d\n", result.Listed)
	fmt.Printf("  Written: %d\n", result.Written)
	fmt.Printf("  Skipped: %d\n", result.Skipped)
	fmt.Printf("  Errors:  %d\n", result.Errors)
	return nil
}

// splitRepo splits "owner/repo" into its two parts.
func splitRepo(s string) []string {
	for i := 0; i < len(s); i++ {
		if s[i] == '/' {
			if i == 0 || i == len(s)-1 {
				return nil
			}
			return []string{s[:i], s[i+1:]}
		}
	}
	return nil
}
