// Package mcp exposes the document store, classifier, search engine
// and index manager as MCP tools over stdio or streamable HTTP.
package mcp

import (
	"github.com/SteedMonteiro/mcp-local-context/internal/search"
)

// ListDocsInput lists every document; it takes no parameters.
type ListDocsInput struct{}

// ListDocsOutput contains all known document identifiers.
type ListDocsOutput struct {
	// Paths is the sorted list of document identifiers.
	Paths []string `json:"paths"`
	// Count is the total number of documents.
	Count int `json:"count"`
}

// GetDocInput selects a document by identifier.
type GetDocInput struct {
	// Path is the document identifier, e.g. "sources/guides/setup.md".
	Path string `json:"path" jsonschema:"required,description=Document identifier in the form <source-root>/<relative-path>"`
}

// GetDocOutput carries a fetched document. When the identifier does
// not resolve, Found is false and Error describes why.
type GetDocOutput struct {
	Path    string `json:"path"`
	Content string `json:"content,omitempty"`
	DocType string `json:"doc_type,omitempty"`
	Found   bool   `json:"found"`
	Error   string `json:"error,omitempty"`
}

// SearchDocsInput is a path search over document identifiers.
type SearchDocsInput struct {
	// Query is matched case-insensitively against identifiers.
	Query string `json:"query" jsonschema:"required,description=Substring to match against document identifiers"`
	// DocType optionally restricts results to one document type.
	DocType string `json:"doc_type,omitempty" jsonschema:"enum=documentation,enum=guide,enum=convention,description=Optional document type filter"`
}

// SearchDocsOutput lists matching identifiers.
type SearchDocsOutput struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
	Error string   `json:"error,omitempty"`
}

// ListByTypeInput selects documents of one type.
type ListByTypeInput struct {
	DocType string `json:"doc_type" jsonschema:"required,enum=documentation,enum=guide,enum=convention,description=Document type to list"`
}

// ListByTypeOutput lists identifiers of the requested type.
type ListByTypeOutput struct {
	Paths []string `json:"paths"`
	Count int      `json:"count"`
	Error string   `json:"error,omitempty"`
}

// SemanticSearchInput is a similarity search over document content.
type SemanticSearchInput struct {
	Query string `json:"query" jsonschema:"required,description=Natural-language query matched against document content"`
	// MaxResults caps the result list (default 5).
	MaxResults int `json:"max_results,omitempty" jsonschema:"minimum=1,maximum=20,default=5,description=Maximum number of results"`
	// DocType optionally restricts results to one document type.
	DocType string `json:"doc_type,omitempty" jsonschema:"enum=documentation,enum=guide,enum=convention,description=Optional document type filter"`
}

// SemanticSearchOutput carries ranked search results. When similarity
// search is unavailable, Results is empty and Message says so.
type SemanticSearchOutput struct {
	Results []search.Result `json:"results"`
	Message string          `json:"message,omitempty"`
}

// BuildIndexInput rebuilds the search index; it takes no parameters.
type BuildIndexInput struct{}

// BuildIndexOutput reports the build outcome.
type BuildIndexOutput struct {
	// Summary itemizes processed files, errors and per-type counts.
	Summary string `json:"summary"`
}

// CapabilitiesInput queries server capabilities; no parameters.
type CapabilitiesInput struct{}

// CapabilitiesOutput describes what the server can do.
type CapabilitiesOutput struct {
	SemanticSearch bool           `json:"semantic_search"`
	PathSearch     bool           `json:"path_search"`
	DocumentTypes  []string       `json:"document_types"`
	DocumentCount  int            `json:"document_count"`
	IndexedCount   int            `json:"indexed_count"`
	Sources        []string       `json:"sources"`
	PerSourceCount map[string]int `json:"per_source_count"`
	Tools          []string       `json:"tools"`
}
