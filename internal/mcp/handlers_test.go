package mcp

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
	"github.com/SteedMonteiro/mcp-local-context/internal/docstore"
	"github.com/SteedMonteiro/mcp-local-context/internal/indexer"
	"github.com/SteedMonteiro/mcp-local-context/internal/search"
	"github.com/SteedMonteiro/mcp-local-context/internal/vector"
)

type stubBackend struct {
	available  bool
	candidates []vector.Candidate
	count      int
	countErr   error
}

func (b *stubBackend) Available() bool { return b.available }

func (b *stubBackend) Insert(ctx context.Context, content string, meta vector.Metadata) error {
	if !b.available {
		return vector.ErrUnavailable
	}
	b.count++
	return nil
}

func (b *stubBackend) Query(ctx context.Context, text string, topK int) ([]vector.Candidate, error) {
	if !b.available {
		return nil, vector.ErrUnavailable
	}
	if topK < len(b.candidates) {
		return b.candidates[:topK], nil
	}
	return b.candidates, nil
}

func (b *stubBackend) Clear(ctx context.Context) error {
	b.count = 0
	return nil
}

func (b *stubBackend) Count(ctx context.Context) (int, error) {
	return b.count, b.countErr
}

func newTestFixture(t *testing.T, backend vector.Backend) (*docstore.Store, *classifier.Classifier, *search.Engine, *indexer.Manager) {
	t.Helper()

	dir := t.TempDir()
	files := map[string]string{
		"readme.md":          "# Project\n\nOverview of the project.",
		"guide/setup.md":     "# Setup\n\nStep 1: install. Step 2: configure.",
		"conventions/go.txt": "Coding standards: formatting rules for the team.",
	}
	for rel, content := range files {
		path := filepath.Join(dir, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
	store := docstore.New([]docstore.Root{{Name: "docs", Path: dir}}, logger)

	cls := classifier.New()
	engine := search.New(backend, cls)
	manager := indexer.NewManager(store, cls, backend, logger)
	return store, cls, engine, manager
}

func TestListHandler(t *testing.T) {
	store, _, _, _ := newTestFixture(t, &stubBackend{})

	handler := makeListHandler(store)
	_, out, err := handler(context.Background(), nil, ListDocsInput{})
	require.NoError(t, err)

	assert.Equal(t, 3, out.Count)
	assert.Contains(t, out.Paths, "docs/readme.md")
	assert.Contains(t, out.Paths, "docs/guide/setup.md")
}

func TestGetHandler(t *testing.T) {
	store, cls, _, _ := newTestFixture(t, &stubBackend{})
	handler := makeGetHandler(store, cls)

	t.Run("found", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, GetDocInput{Path: "docs/guide/setup.md"})
		require.NoError(t, err)
		assert.True(t, out.Found)
		assert.Contains(t, out.Content, "Step 1")
		assert.Equal(t, "guide", out.DocType)
	})

	t.Run("missing file is structured output, not an error", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, GetDocInput{Path: "docs/nope.md"})
		require.NoError(t, err)
		assert.False(t, out.Found)
		assert.NotEmpty(t, out.Error)
	})

	t.Run("malformed identifier", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, GetDocInput{Path: "no-slash"})
		require.NoError(t, err)
		assert.False(t, out.Found)
	})
}

func TestSearchHandler(t *testing.T) {
	store, cls, _, _ := newTestFixture(t, &stubBackend{})
	handler := makeSearchHandler(store, cls)

	t.Run("substring match", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, SearchDocsInput{Query: "setup"})
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/guide/setup.md"}, out.Paths)
		assert.Equal(t, 1, out.Count)
	})

	t.Run("type filter restricts candidates", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, SearchDocsInput{Query: "md", DocType: "guide"})
		require.NoError(t, err)
		assert.Equal(t, []string{"docs/guide/setup.md"}, out.Paths)
	})

	t.Run("invalid type reported in output", func(t *testing.T) {
		_, out, err := handler(context.Background(), nil, SearchDocsInput{Query: "x", DocType: "tutorial"})
		require.NoError(t, err)
		assert.NotEmpty(t, out.Error)
		assert.Zero(t, out.Count)
	})
}

func TestListByTypeHandler(t *testing.T) {
	store, cls, _, _ := newTestFixture(t, &stubBackend{})
	handler := makeListByTypeHandler(store, cls)

	_, out, err := handler(context.Background(), nil, ListByTypeInput{DocType: "convention"})
	require.NoError(t, err)
	assert.Equal(t, []string{"docs/conventions/go.txt"}, out.Paths)

	_, out, err = handler(context.Background(), nil, ListByTypeInput{DocType: "recipes"})
	require.NoError(t, err)
	assert.NotEmpty(t, out.Error)
}

func TestSemanticSearchHandler(t *testing.T) {
	t.Run("unavailable backend returns message", func(t *testing.T) {
		_, _, engine, _ := newTestFixture(t, vector.Disabled{Reason: "no api key"})
		handler := makeSemanticSearchHandler(engine)

		_, out, err := handler(context.Background(), nil, SemanticSearchInput{Query: "setup"})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.NotEmpty(t, out.Message)
	})

	t.Run("results flow through", func(t *testing.T) {
		backend := &stubBackend{
			available: true,
			candidates: []vector.Candidate{
				{Identifier: "docs/guide/setup.md", Text: "Step 1: install.", DocType: classifier.TypeGuide, Score: 0.91},
			},
		}
		_, _, engine, _ := newTestFixture(t, backend)
		handler := makeSemanticSearchHandler(engine)

		_, out, err := handler(context.Background(), nil, SemanticSearchInput{Query: "install", MaxResults: 3})
		require.NoError(t, err)
		require.Len(t, out.Results, 1)
		assert.Equal(t, "docs/guide/setup.md", out.Results[0].Identifier)
		assert.Equal(t, search.KindSemantic, out.Results[0].Kind)
	})

	t.Run("no matches includes hint", func(t *testing.T) {
		_, _, engine, _ := newTestFixture(t, &stubBackend{available: true})
		handler := makeSemanticSearchHandler(engine)

		_, out, err := handler(context.Background(), nil, SemanticSearchInput{Query: "anything"})
		require.NoError(t, err)
		assert.Empty(t, out.Results)
		assert.NotEmpty(t, out.Message)
	})
}

func TestBuildIndexHandler(t *testing.T) {
	backend := &stubBackend{available: true}
	_, _, _, manager := newTestFixture(t, backend)
	handler := makeBuildIndexHandler(manager)

	_, out, err := handler(context.Background(), nil, BuildIndexInput{})
	require.NoError(t, err)
	assert.Contains(t, out.Summary, "Successfully indexed 3 files")
	assert.Equal(t, 3, backend.count)
}

func TestCapabilitiesHandler(t *testing.T) {
	backend := &stubBackend{available: true, count: 3}
	store, _, engine, manager := newTestFixture(t, backend)
	handler := makeCapabilitiesHandler(store, engine, manager, toolNames)

	_, out, err := handler(context.Background(), nil, CapabilitiesInput{})
	require.NoError(t, err)

	assert.True(t, out.SemanticSearch)
	assert.True(t, out.PathSearch)
	assert.Equal(t, []string{"documentation", "guide", "convention"}, out.DocumentTypes)
	assert.Equal(t, 3, out.DocumentCount)
	assert.Equal(t, 3, out.IndexedCount)
	assert.Equal(t, []string{"docs"}, out.Sources)
	assert.Equal(t, toolNames, out.Tools)
}

func TestHealthHandler(t *testing.T) {
	t.Run("disabled backend is healthy", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(vector.Disabled{Reason: "off"}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"disabled"`)
	})

	t.Run("reachable backend is connected", func(t *testing.T) {
		rec := httptest.NewRecorder()
		NewHealthHandler(&stubBackend{available: true}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"connected"`)
	})

	t.Run("failing backend is 503", func(t *testing.T) {
		rec := httptest.NewRecorder()
		backend := &stubBackend{available: true, countErr: context.DeadlineExceeded}
		NewHealthHandler(backend).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}
