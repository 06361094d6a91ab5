package search

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

// Engine serves search requests over a set of known identifiers and an
// optional similarity backend.
type Engine struct {
	backend    vector.Backend
	classifier *classifier.Classifier
}

// New creates an Engine. backend may be vector.Disabled; cls is used
// to attach document types to path-search results.
func New(backend vector.Backend, cls *classifier.Classifier) *Engine {
	if backend == nil {
		backend = vector.Disabled{Reason: "no backend configured"}
	}
	if cls == nil {
		cls = classifier.New()
	}
	return &Engine{backend: backend, classifier: cls}
}

// SemanticAvailable reports whether similarity search can be served.
func (e *Engine) SemanticAvailable() bool {
	return e.backend.Available()
}

// Search runs a query with the requested strategy.
//
// Path mode matches the query as a case-insensitive substring of each
// known identifier; typeFilter is ignored there (callers pre-filter
// knownIDs when they need typed path search). Semantic mode delegates
// to the backend, over-fetching three times maxResults so post-hoc
// type filtering still fills the result list. Auto mode picks semantic
// when available and falls back to path search transparently: the
// result shape is identical, only Score and Kind differ.
func (e *Engine) Search(ctx context.Context, query string, knownIDs []string, maxResults int, typeFilter classifier.DocType, strategy Strategy) ([]Result, error) {
	if maxResults <= 0 {
		maxResults = 5
	}

	switch strategy {
	case StrategyPath:
		return e.searchPath(query, knownIDs, maxResults), nil
	case StrategySemantic:
		return e.searchSemantic(ctx, query, maxResults, typeFilter)
	case StrategyAuto, "":
		if e.backend.Available() {
			return e.searchSemantic(ctx, query, maxResults, typeFilter)
		}
		return e.searchPath(query, knownIDs, maxResults), nil
	default:
		return nil, fmt.Errorf("unknown search strategy %q", strategy)
	}
}

// searchPath performs literal case-insensitive substring matching over
// identifiers. No scoring: results keep the input order of knownIDs.
func (e *Engine) searchPath(query string, knownIDs []string, maxResults int) []Result {
	lower := strings.ToLower(query)
	results := make([]Result, 0, maxResults)
	for _, id := range knownIDs {
		if !strings.Contains(strings.ToLower(id), lower) {
			continue
		}
		results = append(results, Result{
			Identifier: id,
			Excerpt:    fmt.Sprintf("Path match for query: %s", query),
			DocType:    e.classifier.Classify(id, ""),
			Kind:       KindPath,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results
}

// searchSemantic delegates to the similarity backend and shapes its
// candidates into results.
func (e *Engine) searchSemantic(ctx context.Context, query string, maxResults int, typeFilter classifier.DocType) ([]Result, error) {
	candidates, err := e.backend.Query(ctx, query, maxResults*3)
	if err != nil {
		return nil, err
	}

	results := make([]Result, 0, maxResults)
	for _, c := range candidates {
		if typeFilter != "" && c.DocType != typeFilter {
			continue
		}
		score := c.Score
		results = append(results, Result{
			Identifier: c.Identifier,
			Excerpt:    Excerpt(c.Text),
			DocType:    c.DocType,
			Score:      &score,
			Kind:       KindSemantic,
		})
		if len(results) >= maxResults {
			break
		}
	}
	return results, nil
}

// Match pairs an identifier with its path-relevance score.
type Match struct {
	Identifier string
	Score      float64
}

// SearchWithRanking runs path search with relevance scoring. Each
// matching identifier scores the sum of 1/(firstOffset+1) (earlier
// match ranks higher), the occurrence count of the query, and
// 1/(len+1) (shorter identifiers rank higher). Ties keep their input
// order.
func SearchWithRanking(query string, knownIDs []string) []Match {
	lower := strings.ToLower(query)
	var matches []Match
	for _, id := range knownIDs {
		idLower := strings.ToLower(id)
		offset := strings.Index(idLower, lower)
		if offset < 0 {
			continue
		}
		score := 1.0/float64(offset+1) +
			float64(strings.Count(idLower, lower)) +
			1.0/float64(len(id)+1)
		matches = append(matches, Match{Identifier: id, Score: score})
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}

// PathMatches returns the identifiers containing the query, preserving
// input order. This is the unranked primitive behind path search.
func PathMatches(query string, knownIDs []string) []string {
	lower := strings.ToLower(query)
	var out []string
	for _, id := range knownIDs {
		if strings.Contains(strings.ToLower(id), lower) {
			out = append(out, id)
		}
	}
	return out
}
