// Package config loads server configuration from an optional YAML
// file with environment-variable overrides. Precedence: environment,
// then file, then defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
)

// DefaultConfigFile is probed when no explicit path is given.
const DefaultConfigFile = "local-context.yaml"

// Source is one named document root.
type Source struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// ServerConfig configures the tool-serving endpoint.
type ServerConfig struct {
	// Host and Port bind the HTTP listener (health endpoint, and the
	// MCP endpoint in http mode).
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
	// Path is the HTTP mount point for the MCP endpoint.
	Path string `yaml:"path"`
	// Mode is "stdio" or "http".
	Mode string `yaml:"mode"`
}

// QdrantConfig configures the vector store connection.
type QdrantConfig struct {
	// Enabled turns similarity search on. When false, or when the
	// server is unreachable at startup, the server degrades to
	// path-only search.
	Enabled    bool   `yaml:"enabled"`
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Collection string `yaml:"collection"`
}

// EmbeddingConfig tunes the embedding client.
type EmbeddingConfig struct {
	BatchSize int `yaml:"batch_size"`
}

// ClassifierConfig tunes document classification.
type ClassifierConfig struct {
	// MaxLines is how many leading lines the content stage inspects.
	MaxLines int `yaml:"max_lines"`
}

// Config is the complete server configuration.
type Config struct {
	Sources    []Source         `yaml:"sources"`
	Server     ServerConfig     `yaml:"server"`
	Qdrant     QdrantConfig     `yaml:"qdrant"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Classifier ClassifierConfig `yaml:"classifier"`
}

// Default returns the stock configuration: one "sources" root in the
// working directory, stdio transport, similarity search enabled
// against a local Qdrant.
func Default() Config {
	return Config{
		Sources: []Source{{Name: "sources", Path: "sources"}},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8080,
			Path: "/mcp",
			Mode: "stdio",
		},
		Qdrant: QdrantConfig{
			Enabled:    true,
			Host:       "localhost",
			Port:       6334,
			Collection: "local_docs",
		},
		Embedding: EmbeddingConfig{BatchSize: 0},
		Classifier: ClassifierConfig{
			MaxLines: classifier.DefaultMaxLines,
		},
	}
}

// Load builds the configuration from the given file (optional) and the
// environment. An empty path probes DefaultConfigFile; a missing file
// is not an error, a malformed one is.
func Load(path string) (Config, error) {
	cfg := Default()

	probe := path
	if probe == "" {
		probe = DefaultConfigFile
	}
	data, err := os.ReadFile(probe)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", probe, err)
		}
	case os.IsNotExist(err) && path == "":
		// Probing the default location: absence is fine.
	case os.IsNotExist(err):
		return Config{}, fmt.Errorf("config file not found: %s", path)
	default:
		return Config{}, fmt.Errorf("read config %s: %w", probe, err)
	}

	cfg.applyEnv()
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the configuration.
func (c *Config) applyEnv() {
	if v := os.Getenv("DOCS_SOURCE_DIRS"); v != "" {
		c.Sources = parseSourceList(v)
	}
	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("SERVER_MODE"); v == "true" {
		c.Server.Mode = "http"
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Qdrant.Host = v
	}
	if v := os.Getenv("QDRANT_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Qdrant.Port = port
		}
	}
	if v := os.Getenv("QDRANT_COLLECTION"); v != "" {
		c.Qdrant.Collection = v
	}
	if v := os.Getenv("RAG_ENABLED"); v != "" {
		c.Qdrant.Enabled = v == "true" || v == "1"
	}
}

// parseSourceList turns a comma-separated directory list into named
// sources. Each entry may be "name=path" or a bare path, in which case
// the directory's base name becomes the root name.
func parseSourceList(raw string) []Source {
	var sources []Source
	for _, entry := range strings.Split(raw, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if name, path, ok := strings.Cut(entry, "="); ok {
			sources = append(sources, Source{Name: name, Path: path})
			continue
		}
		sources = append(sources, Source{Name: filepath.Base(entry), Path: entry})
	}
	return sources
}

func (c *Config) validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one source directory is required")
	}
	seen := make(map[string]bool, len(c.Sources))
	for _, s := range c.Sources {
		if s.Name == "" || s.Path == "" {
			return fmt.Errorf("source entries need both name and path")
		}
		if strings.Contains(s.Name, "/") {
			return fmt.Errorf("source name %q must not contain '/'", s.Name)
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate source name %q", s.Name)
		}
		seen[s.Name] = true
	}
	if c.Server.Mode != "stdio" && c.Server.Mode != "http" {
		return fmt.Errorf("server mode must be stdio or http, got %q", c.Server.Mode)
	}
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port %d", c.Server.Port)
	}
	if c.Classifier.MaxLines < 1 {
		return fmt.Errorf("classifier max_lines must be at least 1")
	}
	return nil
}

// Roots converts the configured sources into document-store roots.
func (c *Config) Roots() []docstore.Root {
	roots := make([]docstore.Root, 0, len(c.Sources))
	for _, s := range c.Sources {
		roots = append(roots, docstore.Root{Name: s.Name, Path: s.Path})
	}
	return roots
}
