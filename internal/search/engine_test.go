package search

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

// fakeBackend is an in-memory Backend returning canned candidates.
type fakeBackend struct {
	available  bool
	candidates []vector.Candidate
	lastTopK   int
}

func (f *fakeBackend) Available() bool { return f.available }

func (f *fakeBackend) Insert(context.Context, string, vector.Metadata) error {
	if !f.available {
		return vector.ErrUnavailable
	}
	return nil
}

func (f *fakeBackend) Query(_ context.Context, _ string, topK int) ([]vector.Candidate, error) {
	if !f.available {
		return nil, vector.ErrUnavailable
	}
	f.lastTopK = topK
	if len(f.candidates) > topK {
		return f.candidates[:topK], nil
	}
	return f.candidates, nil
}

func (f *fakeBackend) Clear(context.Context) error {
	if !f.available {
		return vector.ErrUnavailable
	}
	f.candidates = nil
	return nil
}

func (f *fakeBackend) Count(context.Context) (int, error) {
	return len(f.candidates), nil
}

func TestSearch_PathStrategy(t *testing.T) {
	engine := New(vector.Disabled{}, nil)
	ids := []string{
		"sources/guide.md",
		"sources/api/reference.md",
		"sources/guides/setup.md",
	}

	results, err := engine.Search(context.Background(), "GUIDE", ids, 10, "", StrategyPath)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, "sources/guide.md", results[0].Identifier)
	assert.Equal(t, "sources/guides/setup.md", results[1].Identifier)
	for _, r := range results {
		assert.Equal(t, KindPath, r.Kind)
		assert.Nil(t, r.Score, "path results carry no score")
		assert.Equal(t, classifier.TypeGuide, r.DocType)
	}
}

func TestSearch_PathStrategyCapsResults(t *testing.T) {
	engine := New(vector.Disabled{}, nil)
	ids := []string{"a/doc1.md", "a/doc2.md", "a/doc3.md"}

	results, err := engine.Search(context.Background(), "doc", ids, 2, "", StrategyPath)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_SemanticStrategy(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		candidates: []vector.Candidate{
			{Identifier: "sources/a.md", Text: "alpha content", DocType: classifier.TypeGuide, Score: 0.9},
			{Identifier: "sources/b.md", Text: "beta content", DocType: classifier.TypeDocumentation, Score: 0.7},
		},
	}
	engine := New(backend, nil)

	results, err := engine.Search(context.Background(), "alpha", nil, 5, "", StrategySemantic)
	require.NoError(t, err)
	require.Len(t, results, 2)

	assert.Equal(t, 15, backend.lastTopK, "semantic search over-fetches 3x maxResults")
	assert.Equal(t, KindSemantic, results[0].Kind)
	require.NotNil(t, results[0].Score)
	assert.Equal(t, 0.9, *results[0].Score)
	assert.Equal(t, "alpha content", results[0].Excerpt)
}

func TestSearch_SemanticTypeFilter(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		candidates: []vector.Candidate{
			{Identifier: "sources/a.md", Text: "a", DocType: classifier.TypeGuide, Score: 0.9},
			{Identifier: "sources/b.md", Text: "b", DocType: classifier.TypeConvention, Score: 0.8},
			{Identifier: "sources/c.md", Text: "c", DocType: classifier.TypeGuide, Score: 0.7},
		},
	}
	engine := New(backend, nil)

	results, err := engine.Search(context.Background(), "q", nil, 5, classifier.TypeGuide, StrategySemantic)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "sources/a.md", results[0].Identifier)
	assert.Equal(t, "sources/c.md", results[1].Identifier)
}

func TestSearch_SemanticUnavailableReturnsError(t *testing.T) {
	engine := New(vector.Disabled{}, nil)
	_, err := engine.Search(context.Background(), "q", nil, 5, "", StrategySemantic)
	assert.ErrorIs(t, err, vector.ErrUnavailable)
}

// Auto strategy must degrade to path search with the same result
// shape, minus score and with a path kind tag.
func TestSearch_AutoFallsBackToPath(t *testing.T) {
	engine := New(vector.Disabled{}, nil)
	ids := []string{"sources/install.md"}

	results, err := engine.Search(context.Background(), "install", ids, 5, "", StrategyAuto)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindPath, results[0].Kind)
	assert.Nil(t, results[0].Score)
}

func TestSearch_AutoUsesSemanticWhenAvailable(t *testing.T) {
	backend := &fakeBackend{
		available: true,
		candidates: []vector.Candidate{
			{Identifier: "sources/a.md", Text: "a", DocType: classifier.TypeDocumentation, Score: 0.5},
		},
	}
	engine := New(backend, nil)

	results, err := engine.Search(context.Background(), "q", nil, 5, "", StrategyAuto)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, KindSemantic, results[0].Kind)
}

func TestSearch_UnknownStrategy(t *testing.T) {
	engine := New(vector.Disabled{}, nil)
	_, err := engine.Search(context.Background(), "q", nil, 5, "", "fuzzy")
	assert.Error(t, err)
}

func TestExcerpt_Truncation(t *testing.T) {
	long := strings.Repeat("x", 250)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("x", 200)+"…", got)
	assert.Len(t, []rune(got), 201)

	short := strings.Repeat("x", 150)
	assert.Equal(t, short, Excerpt(short))
}

func TestExcerpt_RuneSafe(t *testing.T) {
	long := strings.Repeat("é", 250)
	got := Excerpt(long)
	assert.Equal(t, strings.Repeat("é", 200)+"…", got)
}

func TestSearchWithRanking_Order(t *testing.T) {
	ids := []string{"x/guide.md", "x/a/guide.md", "guide/x.md"}
	matches := SearchWithRanking("guide", ids)
	require.Len(t, matches, 3)

	// Earliest offset and shortest path rank first.
	assert.Equal(t, "guide/x.md", matches[0].Identifier)
	assert.Equal(t, "x/guide.md", matches[1].Identifier)
	assert.Equal(t, "x/a/guide.md", matches[2].Identifier)
}

func TestSearchWithRanking_OccurrenceCount(t *testing.T) {
	ids := []string{"docs/guide-guide.md", "docs/guide-notes.md"}
	matches := SearchWithRanking("guide", ids)
	require.Len(t, matches, 2)
	assert.Equal(t, "docs/guide-guide.md", matches[0].Identifier)
}

func TestSearchWithRanking_TiesAreStable(t *testing.T) {
	ids := []string{"a/guide1.md", "a/guide2.md"}
	first := SearchWithRanking("guide", ids)
	for i := 0; i < 5; i++ {
		again := SearchWithRanking("guide", ids)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "a/guide1.md", first[0].Identifier)
}

func TestPathMatches(t *testing.T) {
	ids := []string{"a/One.md", "b/two.md", "c/one-more.md"}
	assert.Equal(t, []string{"a/One.md", "c/one-more.md"}, PathMatches("one", ids))
	assert.Empty(t, PathMatches("zzz", ids))
}
