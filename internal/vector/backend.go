// Package vector defines the similarity-search backend consumed by the
// search and indexing layers, plus its Qdrant-backed implementation.
// The backend is an optional capability: callers must check Available
// before relying on it and degrade gracefully when it is absent.
package vector

import (
	"context"
	"errors"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
)

// ErrUnavailable is returned by backend operations when no similarity
// search capability is configured or initialization failed.
var ErrUnavailable = errors.New("similarity search backend unavailable")

// Metadata accompanies a document inserted into the index.
type Metadata struct {
	Identifier string
	DocType    classifier.DocType
}

// Candidate is a ranked retrieval result. Text is the source content
// the excerpt should be taken from; Score is backend-relative with no
// guaranteed absolute range, higher meaning more relevant.
type Candidate struct {
	Identifier string
	Text       string
	DocType    classifier.DocType
	Score      float64
}

// Backend is the capability set required of any similarity-search
// provider. There is no per-identifier removal: eliminating stale
// entries takes a Clear plus full rebuild.
type Backend interface {
	// Available reports whether the backend can serve requests.
	Available() bool
	// Insert adds one document. Fails with ErrUnavailable when
	// Available is false.
	Insert(ctx context.Context, content string, meta Metadata) error
	// Query returns up to topK candidates ordered by descending score.
	Query(ctx context.Context, text string, topK int) ([]Candidate, error)
	// Clear removes all indexed content. Idempotent.
	Clear(ctx context.Context) error
	// Count returns the number of indexed documents.
	Count(ctx context.Context) (int, error)
}

// Disabled is the inert backend used when similarity search is turned
// off or failed to initialize. Reason records why, for diagnostics.
type Disabled struct {
	Reason string
}

func (Disabled) Available() bool { return false }

func (d Disabled) Insert(context.Context, string, Metadata) error {
	return ErrUnavailable
}

func (d Disabled) Query(context.Context, string, int) ([]Candidate, error) {
	return nil, ErrUnavailable
}

func (Disabled) Clear(context.Context) error { return ErrUnavailable }

func (Disabled) Count(context.Context) (int, error) { return 0, nil }
