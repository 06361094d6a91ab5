// Package docstore discovers and reads document files under named
// source roots. Documents are addressed by stable identifiers of the
// form "<root-name>/<relative-path>" with forward-slash separators on
// every platform.
package docstore

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// SupportedExtensions lists the file extensions treated as documents.
var SupportedExtensions = []string{".md", ".txt", ".mdx"}

// Root is a named source directory.
type Root struct {
	// Name is the identifier prefix for files under this root.
	Name string
	// Path is the directory on disk, made absolute at construction.
	Path string
}

// SourceInfo describes the configured roots and their document counts.
type SourceInfo struct {
	Roots               []Root         `json:"roots"`
	SupportedExtensions []string       `json:"supported_extensions"`
	TotalDocuments      int            `json:"total_documents"`
	DocumentsPerRoot    map[string]int `json:"documents_per_root"`
}

// Store provides document discovery and content access over a set of
// source roots. When roots share a name or overlap on disk, the
// first-declared root wins.
type Store struct {
	roots  []Root
	logger *slog.Logger
}

// New creates a Store over the given roots. Root paths are resolved to
// absolute form; a path that cannot be resolved is kept as declared.
func New(roots []Root, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	resolved := make([]Root, 0, len(roots))
	for _, r := range roots {
		abs, err := filepath.Abs(r.Path)
		if err != nil {
			abs = r.Path
		}
		resolved = append(resolved, Root{Name: r.Name, Path: abs})
	}
	return &Store{roots: resolved, logger: logger}
}

// Roots returns the configured roots in declaration order.
func (s *Store) Roots() []Root {
	return append([]Root(nil), s.roots...)
}

// supportedFile reports whether name carries a document extension.
func supportedFile(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range SupportedExtensions {
		if ext == want {
			return true
		}
	}
	return false
}

// walkRoot collects identifiers for every document file under root.
// Unreadable subtrees are skipped, not fatal.
func (s *Store) walkRoot(root Root) []string {
	var ids []string
	err := filepath.WalkDir(root.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() || !supportedFile(d.Name()) {
			return nil
		}
		// Identifier applies first-root-wins resolution, so a file
		// visible through overlapping roots is listed exactly once.
		id, ok := s.Identifier(path)
		if !ok || !strings.HasPrefix(id, root.Name+"/") {
			return nil
		}
		ids = append(ids, id)
		return nil
	})
	if err != nil {
		s.logger.Warn("walking source root failed", "root", root.Name, "error", err)
	}
	return ids
}

// ListDocuments returns the identifiers of every document under every
// root, lexicographically sorted.
func (s *Store) ListDocuments() []string {
	var ids []string
	for _, root := range s.roots {
		ids = append(ids, s.walkRoot(root)...)
	}
	sort.Strings(ids)
	return ids
}

// resolve maps an identifier to the absolute path of its file.
func (s *Store) resolve(identifier string) (string, error) {
	rootName, rel, ok := strings.Cut(identifier, "/")
	if !ok || rootName == "" || rel == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidIdentifier, identifier)
	}

	for _, root := range s.roots {
		if root.Name != rootName {
			continue
		}
		full := filepath.Join(root.Path, filepath.FromSlash(rel))
		info, err := os.Stat(full)
		if err != nil || info.IsDir() {
			return "", fmt.Errorf("%w: %s", ErrNotFound, identifier)
		}
		return full, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRoot, rootName)
}

// AbsolutePath resolves an identifier to a path on disk.
func (s *Store) AbsolutePath(identifier string) (string, error) {
	return s.resolve(identifier)
}

// Identifier derives the identifier for an absolute path, or returns
// false when the path is under none of the configured roots. The first
// root whose prefix matches wins.
func (s *Store) Identifier(absPath string) (string, bool) {
	abs, err := filepath.Abs(absPath)
	if err != nil {
		return "", false
	}
	for _, root := range s.roots {
		rel, err := filepath.Rel(root.Path, abs)
		if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
			continue
		}
		return root.Name + "/" + filepath.ToSlash(rel), true
	}
	return "", false
}

// Read returns the content of the document named by identifier.
// Identifier resolution failures are returned as errors; a low-level
// read failure on a resolved file is captured and returned as a
// diagnostic content string instead, so Read never surfaces I/O
// errors.
func (s *Store) Read(identifier string) (string, error) {
	full, err := s.resolve(identifier)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(full)
	if err != nil {
		return fmt.Sprintf("Error reading file: %v", err), nil
	}
	return string(data), nil
}

// EnsureRoots creates any configured root directory that is missing.
// Creation failures are logged and skipped.
func (s *Store) EnsureRoots() {
	for _, root := range s.roots {
		info, err := os.Stat(root.Path)
		if err == nil && info.IsDir() {
			continue
		}
		s.logger.Warn("source root missing, creating it", "root", root.Name, "path", root.Path)
		if err := os.MkdirAll(root.Path, 0o755); err != nil {
			s.logger.Error("failed to create source root", "root", root.Name, "error", err)
		}
	}
}

// SourceInfo reports the configured roots with per-root and total
// document counts.
func (s *Store) SourceInfo() SourceInfo {
	info := SourceInfo{
		Roots:               s.Roots(),
		SupportedExtensions: append([]string(nil), SupportedExtensions...),
		DocumentsPerRoot:    make(map[string]int, len(s.roots)),
	}
	for _, root := range s.roots {
		n := len(s.walkRoot(root))
		info.DocumentsPerRoot[root.Name] = n
		info.TotalDocuments += n
	}
	return info
}
