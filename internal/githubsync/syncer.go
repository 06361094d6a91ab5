package githubsync

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
)

// Spec describes a remote documentation directory to mirror.
type Spec struct {
	Owner    string
	Repo     string
	BasePath string // directory inside the repository, "" for the root
	DestDir  string // local directory the files are written into
}

// Result summarizes one sync run.
type Result struct {
	Listed  int
	Written int
	Skipped int
	Errors  int
}

// Syncer downloads documentation files from a GitHub repository.
type Syncer struct {
	client *Client
	spec   Spec
	logger *slog.Logger
}

// NewSyncer creates a syncer for one remote directory.
func NewSyncer(client *Client, spec Spec, logger *slog.Logger) *Syncer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Syncer{client: client, spec: spec, logger: logger}
}

// Sync lists the remote directory recursively and writes every
// documentation file into DestDir, preserving the relative layout.
// Unchanged files are skipped; individual file failures are logged and
// counted without aborting the run.
func (s *Syncer) Sync(ctx context.Context) (Result, error) {
	paths, err := s.listRecursive(ctx, s.spec.BasePath, "")
	if err != nil {
		return Result{}, fmt.Errorf("list %s/%s: %w", s.spec.Owner, s.spec.Repo, err)
	}

	result := Result{Listed: len(paths)}
	for _, rel := range paths {
		wrote, err := s.syncOne(ctx, rel)
		if err != nil {
			s.logger.Warn("sync failed for file", "path", rel, "error", err)
			result.Errors++
			continue
		}
		if wrote {
			result.Written++
		} else {
			result.Skipped++
		}
	}

	s.logger.Info("sync complete",
		"repo", s.spec.Owner+"/"+s.spec.Repo,
		"listed", result.Listed,
		"written", result.Written,
		"skipped", result.Skipped,
		"errors", result.Errors)
	return result, nil
}

// listRecursive walks the remote directory tree collecting relative
// paths of supported documentation files.
func (s *Syncer) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	_, dirContents, _, err := s.client.Repositories.GetContents(ctx, s.spec.Owner, s.spec.Repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get contents of %s: %w", fullPath, err)
	}

	var docs []string
	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}
		itemRel := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if supportedFile(*item.Name) {
				docs = append(docs, itemRel)
			}
		case "dir":
			sub, err := s.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRel)
			if err != nil {
				return nil, err
			}
			docs = append(docs, sub...)
		}
	}
	return docs, nil
}

// syncOne fetches one file and writes it if the local copy differs.
// Returns true when the file was written.
func (s *Syncer) syncOne(ctx context.Context, rel string) (bool, error) {
	fullPath := path.Join(s.spec.BasePath, rel)

	fileContent, _, _, err := s.client.Repositories.GetContents(ctx, s.spec.Owner, s.spec.Repo, fullPath, nil)
	if err != nil {
		return false, fmt.Errorf("get content of %s: %w", fullPath, err)
	}
	if fileContent == nil {
		return false, fmt.Errorf("no file content returned for %s", fullPath)
	}

	content, err := base64.StdEncoding.DecodeString(*fileContent.Content)
	if err != nil {
		return false, fmt.Errorf("decode content of %s: %w", fullPath, err)
	}

	dest := filepath.Join(s.spec.DestDir, filepath.FromSlash(rel))
	if existing, err := os.ReadFile(dest); err == nil && bytes.Equal(existing, content) {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return false, fmt.Errorf("create dir for %s: %w", dest, err)
	}
	if err := os.WriteFile(dest, content, 0o644); err != nil {
		return false, fmt.Errorf("write %s: %w", dest, err)
	}
	return true, nil
}

// supportedFile reports whether name has a documentation extension the
// document store would pick up.
func supportedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, supported := range docstore.SupportedExtensions {
		if ext == supported {
			return true
		}
	}
	return false
}
