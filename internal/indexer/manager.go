package indexer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

// Manager builds and inspects the similarity index over the document
// store. At most one build runs at a time; the build lock also covers
// single-document additions.
type Manager struct {
	store      *docstore.Store
	classifier *classifier.Classifier
	backend    vector.Backend
	logger     *slog.Logger

	buildMu sync.Mutex
}

// NewManager wires the document store, classifier and backend.
func NewManager(store *docstore.Store, cls *classifier.Classifier, backend vector.Backend, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	if backend == nil {
		backend = vector.Disabled{Reason: "no backend configured"}
	}
	return &Manager{
		store:      store,
		classifier: cls,
		backend:    backend,
		logger:     logger,
	}
}

// Available reports whether index builds can run at all.
func (m *Manager) Available() bool {
	return m.backend.Available()
}

// BuildIndex rebuilds the similarity index from scratch: clear, then
// read, classify and insert every document. A file that fails to
// insert is counted and skipped; only backend unavailability stops the
// build before it starts. Returns a human-readable summary.
func (m *Manager) BuildIndex(ctx context.Context, observers ...Observer) (string, error) {
	if !m.Available() {
		return "Indexing is not available: similarity search backend is disabled.", nil
	}

	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	if err := m.backend.Clear(ctx); err != nil {
		return "", fmt.Errorf("clear index: %w", err)
	}

	ids := m.store.ListDocuments()
	if len(ids) == 0 {
		return "No document files found in any of the source directories.", nil
	}

	progress := NewProgress(len(ids))
	for _, obs := range observers {
		progress.Subscribe(obs)
	}

	m.logger.Info("building index", "documents", len(ids))
	for _, id := range ids {
		docType, err := m.insertOne(ctx, id)
		if err != nil {
			m.logger.Warn("failed to index document", "identifier", id, "error", err)
			progress.RecordError(id, err)
			continue
		}
		progress.RecordSuccess(id, docType)
	}

	m.logger.Info("index build complete",
		"processed", progress.ProcessedFiles,
		"errors", progress.ErrorFiles,
	)
	return progress.Summary(), nil
}

// insertOne reads, classifies and inserts a single document.
func (m *Manager) insertOne(ctx context.Context, identifier string) (classifier.DocType, error) {
	content, err := m.store.Read(identifier)
	if err != nil {
		return classifier.TypeDocumentation, err
	}
	docType := m.classifier.Classify(identifier, content)
	err = m.backend.Insert(ctx, content, vector.Metadata{
		Identifier: identifier,
		DocType:    docType,
	})
	if err != nil {
		return docType, err
	}
	return docType, nil
}

// AddDocument inserts one document into the index without clearing it.
// Returns false on any failure; never propagates an error.
func (m *Manager) AddDocument(ctx context.Context, identifier string) bool {
	if !m.Available() {
		return false
	}
	m.buildMu.Lock()
	defer m.buildMu.Unlock()

	if _, err := m.insertOne(ctx, identifier); err != nil {
		m.logger.Warn("failed to add document to index", "identifier", identifier, "error", err)
		return false
	}
	return true
}

// RemoveDocument always reports false: the backend contract has no
// per-identifier removal, so eliminating a stale entry takes a full
// rebuild. Documented limitation, not a bug.
func (m *Manager) RemoveDocument(identifier string) bool {
	m.logger.Debug("single-document removal not supported, rebuild required", "identifier", identifier)
	return false
}

// Validation compares the index against the file system.
type Validation struct {
	IndexAvailable   bool `json:"index_available"`
	FilesOnDisk      int  `json:"files_on_disk"`
	DocumentsInIndex int  `json:"documents_in_index"`
	NeedsRebuild     bool `json:"needs_rebuild"`
}

// Validate flags a rebuild whenever the raw file and index counts
// differ. This is a staleness heuristic only: an edit that leaves the
// file count unchanged is not detected.
func (m *Manager) Validate(ctx context.Context) Validation {
	v := Validation{
		IndexAvailable: m.Available(),
		FilesOnDisk:    len(m.store.ListDocuments()),
	}
	if !v.IndexAvailable {
		return v
	}
	count, err := m.backend.Count(ctx)
	if err != nil {
		m.logger.Warn("failed to count indexed documents", "error", err)
		v.NeedsRebuild = true
		return v
	}
	v.DocumentsInIndex = count
	v.NeedsRebuild = v.FilesOnDisk != v.DocumentsInIndex
	return v
}

// Stats describes the current index.
type Stats struct {
	Available     bool               `json:"available"`
	DocumentCount int                `json:"document_count"`
	SourceInfo    docstore.SourceInfo `json:"source_info"`
}

// IndexStats reports index availability, size and source layout.
func (m *Manager) IndexStats(ctx context.Context) Stats {
	stats := Stats{
		Available:  m.Available(),
		SourceInfo: m.store.SourceInfo(),
	}
	if stats.Available {
		if count, err := m.backend.Count(ctx); err == nil {
			stats.DocumentCount = count
		}
	}
	return stats
}

// PreviewEntry pairs an identifier with its predicted type.
type PreviewEntry struct {
	Identifier string              `json:"identifier"`
	DocType    classifier.DocType  `json:"doc_type"`
}

// ClassificationPreview classifies up to maxFiles documents without
// touching the index, showing how a build would categorize them.
func (m *Manager) ClassificationPreview(maxFiles int) []PreviewEntry {
	ids := m.store.ListDocuments()
	if maxFiles > 0 && len(ids) > maxFiles {
		ids = ids[:maxFiles]
	}
	preview := make([]PreviewEntry, 0, len(ids))
	for _, id := range ids {
		content, err := m.store.Read(id)
		if err != nil {
			content = ""
		}
		preview = append(preview, PreviewEntry{
			Identifier: id,
			DocType:    m.classifier.Classify(id, content),
		})
	}
	return preview
}
