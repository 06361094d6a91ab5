package classifier

import (
	"strings"
	"sync"
)

// DefaultMaxLines is the number of leading content lines inspected
// during the content stage.
const DefaultMaxLines = 20

// Rules holds the keyword tables driving classification. Keywords are
// matched as lower-case substrings: path keywords fire against the
// document identifier, content keywords against the leading lines of
// the document body. Only guide and convention entries influence
// classification; documentation is the fall-through.
type Rules struct {
	Path    map[DocType][]string
	Content map[DocType][]string
}

// DefaultRules returns the stock keyword tables.
func DefaultRules() Rules {
	return Rules{
		Path: map[DocType][]string{
			TypeGuide: {
				"guide", "tutorial", "how-to", "howto", "getting-started", "quickstart",
			},
			TypeConvention: {
				"convention", "standard", "rule", "policy", "guideline", "best-practice",
			},
		},
		Content: map[DocType][]string{
			TypeGuide: {
				"how to", "step by step", "tutorial", "getting started", "quick start",
				"walkthrough", "guide", "instructions", "follow these steps",
			},
			TypeConvention: {
				"convention", "standard", "rule", "policy", "guideline", "best practice",
				"coding standard", "style guide", "must", "should", "shall", "requirement",
			},
		},
	}
}

func (r Rules) clone() Rules {
	out := Rules{
		Path:    make(map[DocType][]string, len(r.Path)),
		Content: make(map[DocType][]string, len(r.Content)),
	}
	for t, kws := range r.Path {
		out.Path[t] = append([]string(nil), kws...)
	}
	for t, kws := range r.Content {
		out.Content[t] = append([]string(nil), kws...)
	}
	return out
}

// Classifier determines document types from identifiers and content.
// Each Classifier owns its rule tables; two instances with different
// rules can coexist. Rule mutation takes effect immediately for all
// subsequent classifications.
type Classifier struct {
	mu       sync.RWMutex
	rules    Rules
	maxLines int
}

// Option configures a Classifier.
type Option func(*Classifier)

// WithMaxLines overrides how many leading lines the content stage
// inspects. Values below 1 are ignored.
func WithMaxLines(n int) Option {
	return func(c *Classifier) {
		if n >= 1 {
			c.maxLines = n
		}
	}
}

// WithRules replaces the default keyword tables.
func WithRules(r Rules) Option {
	return func(c *Classifier) {
		c.rules = r.clone()
	}
}

// New creates a Classifier with the default rules and options applied.
func New(opts ...Option) *Classifier {
	c := &Classifier{
		rules:    DefaultRules(),
		maxLines: DefaultMaxLines,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Classify determines the type of a document. The path stage runs
// first: guide keywords are checked before convention keywords and the
// first hit wins. Only when the path stage is inconclusive and content
// is non-empty does the content stage run, scoring keyword occurrences
// over the leading lines; the strictly higher nonzero score wins.
// Everything else falls through to TypeDocumentation.
func (c *Classifier) Classify(identifier, content string) DocType {
	if t, ok := c.classifyByPath(identifier); ok {
		return t
	}
	if content != "" {
		if t, ok := c.classifyByContent(content); ok {
			return t
		}
	}
	return TypeDocumentation
}

// classifyByPath matches path keywords against the lower-cased
// identifier. Guide keywords take precedence over convention keywords.
func (c *Classifier) classifyByPath(identifier string) (DocType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lower := strings.ToLower(identifier)
	for _, kw := range c.rules.Path[TypeGuide] {
		if strings.Contains(lower, kw) {
			return TypeGuide, true
		}
	}
	for _, kw := range c.rules.Path[TypeConvention] {
		if strings.Contains(lower, kw) {
			return TypeConvention, true
		}
	}
	return "", false
}

// classifyByContent scores keyword occurrences over the first maxLines
// lines. A tie, or two zero scores, is inconclusive.
func (c *Classifier) classifyByContent(content string) (DocType, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	lines := strings.Split(content, "\n")
	if len(lines) > c.maxLines {
		lines = lines[:c.maxLines]
	}
	text := strings.ToLower(strings.Join(lines, "\n"))

	var guideScore, conventionScore int
	for _, kw := range c.rules.Content[TypeGuide] {
		guideScore += strings.Count(text, kw)
	}
	for _, kw := range c.rules.Content[TypeConvention] {
		conventionScore += strings.Count(text, kw)
	}

	switch {
	case guideScore > conventionScore && guideScore > 0:
		return TypeGuide, true
	case conventionScore > guideScore && conventionScore > 0:
		return TypeConvention, true
	}
	return "", false
}

// Document pairs an identifier with optional content for batch
// classification.
type Document struct {
	Identifier string
	Content    string
}

// ClassifyBatch classifies each document independently.
func (c *Classifier) ClassifyBatch(docs []Document) map[string]DocType {
	out := make(map[string]DocType, len(docs))
	for _, doc := range docs {
		out[doc.Identifier] = c.Classify(doc.Identifier, doc.Content)
	}
	return out
}

// ContentGetter resolves an identifier to document content. Used by
// FilterByType to fetch content lazily.
type ContentGetter func(identifier string) (string, error)

// FilterByType returns the identifiers that classify as want. Content
// is fetched through getter only when the path stage is inconclusive;
// a getter failure degrades that identifier to path-only
// classification rather than aborting the batch.
func (c *Classifier) FilterByType(identifiers []string, want DocType, getter ContentGetter) []string {
	var matched []string
	for _, id := range identifiers {
		t, ok := c.classifyByPath(id)
		if !ok {
			var content string
			if getter != nil {
				if got, err := getter(id); err == nil {
					content = got
				}
			}
			t = c.Classify(id, content)
		}
		if t == want {
			matched = append(matched, id)
		}
	}
	return matched
}

// Stats counts classifications per type. Every valid type appears in
// the result, including zero counts.
func Stats(classifications map[string]DocType) map[DocType]int {
	stats := map[DocType]int{
		TypeDocumentation: 0,
		TypeGuide:         0,
		TypeConvention:    0,
	}
	for _, t := range classifications {
		stats[t]++
	}
	return stats
}

// AddPathRule appends path keywords for the given type, creating the
// type's keyword list if absent.
func (c *Classifier) AddPathRule(t DocType, keywords ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules.Path[t] = append(c.rules.Path[t], keywords...)
}

// AddContentRule appends content keywords for the given type, creating
// the type's keyword list if absent.
func (c *Classifier) AddContentRule(t DocType, keywords ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.rules.Content[t] = append(c.rules.Content[t], keywords...)
}

// RulesInfo returns a copy of the current keyword tables.
func (c *Classifier) RulesInfo() Rules {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rules.clone()
}
