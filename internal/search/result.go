// Package search unifies literal path matching and vector similarity
// search over local documents behind one interface, degrading to path
// search when the similarity backend is unavailable.
package search

import (
	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
)

// MaxExcerptLen bounds the excerpt carried on a search result.
const MaxExcerptLen = 200

// Kind tags which strategy produced a result.
type Kind string

const (
	KindPath     Kind = "path"
	KindSemantic Kind = "semantic"
)

// Strategy selects how a search request is served.
type Strategy string

const (
	// StrategyPath forces literal substring matching over identifiers.
	StrategyPath Strategy = "path"
	// StrategySemantic forces similarity search over the backend.
	StrategySemantic Strategy = "semantic"
	// StrategyAuto uses semantic search when the backend is available
	// and silently falls back to path search otherwise.
	StrategyAuto Strategy = "auto"
)

// Result is one search hit. Results are constructed per query and
// never mutated afterwards. Score is set only for semantic hits.
type Result struct {
	Identifier string              `json:"identifier"`
	Excerpt    string              `json:"excerpt"`
	DocType    classifier.DocType  `json:"doc_type"`
	Score      *float64            `json:"score,omitempty"`
	Kind       Kind                `json:"search_kind"`
}

// Excerpt returns a prefix of content of at most MaxExcerptLen runes,
// appending a truncation marker only when content was cut. The cut is
// rune-aligned so multi-byte characters are never split.
func Excerpt(content string) string {
	runes := []rune(content)
	if len(runes) <= MaxExcerptLen {
		return content
	}
	return string(runes[:MaxExcerptLen]) + "…"
}
