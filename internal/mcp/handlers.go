package mcp

import (
	"context"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/indexer"
	"github.com/SteedMonteiro/mcp-local-context/internal/search"
)

// semanticUnavailableMsg is returned by tools that need the similarity
// backend when it is disabled or failed to initialize.
const semanticUnavailableMsg = "Semantic search is not available: the similarity backend is disabled or unreachable. Path search still works."

// makeListHandler creates the list_local_docs tool handler.
func makeListHandler(store *docstore.Store) func(
	context.Context, *mcp.CallToolRequest, ListDocsInput,
) (*mcp.CallToolResult, ListDocsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListDocsInput) (
		*mcp.CallToolResult, ListDocsOutput, error,
	) {
		paths := store.ListDocuments()
		return nil, ListDocsOutput{Paths: paths, Count: len(paths)}, nil
	}
}

// makeGetHandler creates the get_local_doc tool handler. Resolution
// failures come back as structured output, not protocol errors.
func makeGetHandler(store *docstore.Store, cls *classifier.Classifier) func(
	context.Context, *mcp.CallToolRequest, GetDocInput,
) (*mcp.CallToolResult, GetDocOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetDocInput) (
		*mcp.CallToolResult, GetDocOutput, error,
	) {
		content, err := store.Read(input.Path)
		if err != nil {
			out := GetDocOutput{Path: input.Path, Found: false, Error: err.Error()}
			switch {
			case errors.Is(err, docstore.ErrNotFound),
				errors.Is(err, docstore.ErrInvalidIdentifier),
				errors.Is(err, docstore.ErrUnknownRoot):
				return nil, out, nil
			default:
				return nil, out, err
			}
		}
		return nil, GetDocOutput{
			Path:    input.Path,
			Content: content,
			DocType: string(cls.Classify(input.Path, content)),
			Found:   true,
		}, nil
	}
}

// makeSearchHandler creates the search_local_docs tool handler: a path
// search with optional type pre-filtering.
func makeSearchHandler(store *docstore.Store, cls *classifier.Classifier) func(
	context.Context, *mcp.CallToolRequest, SearchDocsInput,
) (*mcp.CallToolResult, SearchDocsOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchDocsInput) (
		*mcp.CallToolResult, SearchDocsOutput, error,
	) {
		ids := store.ListDocuments()
		if input.DocType != "" {
			docType, err := classifier.Parse(input.DocType)
			if err != nil {
				return nil, SearchDocsOutput{Error: err.Error()}, nil
			}
			ids = cls.FilterByType(ids, docType, store.Read)
		}
		matches := search.PathMatches(input.Query, ids)
		return nil, SearchDocsOutput{Paths: matches, Count: len(matches)}, nil
	}
}

// makeListByTypeHandler creates the list_docs_by_type tool handler.
func makeListByTypeHandler(store *docstore.Store, cls *classifier.Classifier) func(
	context.Context, *mcp.CallToolRequest, ListByTypeInput,
) (*mcp.CallToolResult, ListByTypeOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input ListByTypeInput) (
		*mcp.CallToolResult, ListByTypeOutput, error,
	) {
		docType, err := classifier.Parse(input.DocType)
		if err != nil {
			return nil, ListByTypeOutput{Error: err.Error()}, nil
		}
		paths := cls.FilterByType(store.ListDocuments(), docType, store.Read)
		return nil, ListByTypeOutput{Paths: paths, Count: len(paths)}, nil
	}
}

// makeSemanticSearchHandler creates the semantic_search tool handler.
// An unavailable backend yields an informational message, never an
// error.
func makeSemanticSearchHandler(engine *search.Engine) func(
	context.Context, *mcp.CallToolRequest, SemanticSearchInput,
) (*mcp.CallToolResult, SemanticSearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SemanticSearchInput) (
		*mcp.CallToolResult, SemanticSearchOutput, error,
	) {
		if !engine.SemanticAvailable() {
			return nil, SemanticSearchOutput{
				Results: []search.Result{},
				Message: semanticUnavailableMsg,
			}, nil
		}

		var typeFilter classifier.DocType
		if input.DocType != "" {
			parsed, err := classifier.Parse(input.DocType)
			if err != nil {
				return nil, SemanticSearchOutput{Results: []search.Result{}, Message: err.Error()}, nil
			}
			typeFilter = parsed
		}

		results, err := engine.Search(ctx, input.Query, nil, input.MaxResults, typeFilter, search.StrategySemantic)
		if err != nil {
			return nil, SemanticSearchOutput{}, err
		}
		if results == nil {
			results = []search.Result{}
		}
		out := SemanticSearchOutput{Results: results}
		if len(results) == 0 {
			out.Message = "No matching documents found. Try broader search terms or rebuild the index."
		}
		return nil, out, nil
	}
}

// makeBuildIndexHandler creates the build_docs_index tool handler.
func makeBuildIndexHandler(manager *indexer.Manager) func(
	context.Context, *mcp.CallToolRequest, BuildIndexInput,
) (*mcp.CallToolResult, BuildIndexOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input BuildIndexInput) (
		*mcp.CallToolResult, BuildIndexOutput, error,
	) {
		summary, err := manager.BuildIndex(ctx)
		if err != nil {
			return nil, BuildIndexOutput{}, err
		}
		return nil, BuildIndexOutput{Summary: summary}, nil
	}
}

// makeCapabilitiesHandler creates the get_capabilities tool handler.
func makeCapabilitiesHandler(store *docstore.Store, engine *search.Engine, manager *indexer.Manager, tools []string) func(
	context.Context, *mcp.CallToolRequest, CapabilitiesInput,
) (*mcp.CallToolResult, CapabilitiesOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input CapabilitiesInput) (
		*mcp.CallToolResult, CapabilitiesOutput, error,
	) {
		info := store.SourceInfo()
		sources := make([]string, 0, len(info.Roots))
		for _, root := range info.Roots {
			sources = append(sources, root.Name)
		}
		types := make([]string, 0, 3)
		for _, t := range classifier.Types() {
			types = append(types, string(t))
		}

		out := CapabilitiesOutput{
			SemanticSearch: engine.SemanticAvailable(),
			PathSearch:     true,
			DocumentTypes:  types,
			DocumentCount:  info.TotalDocuments,
			Sources:        sources,
			PerSourceCount: info.DocumentsPerRoot,
			Tools:          tools,
		}
		if stats := manager.IndexStats(ctx); stats.Available {
			out.IndexedCount = stats.DocumentCount
		}
		return nil, out, nil
	}
}
