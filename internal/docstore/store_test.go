package docstore

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	dir := t.TempDir()
	store := New([]Root{{Name: "sources", Path: dir}}, slog.Default())
	return store, dir
}

func TestListDocuments_SortedAndFiltered(t *testing.T) {
	store, dir := newTestStore(t)
	writeFile(t, filepath.Join(dir, "b.md"), "b")
	writeFile(t, filepath.Join(dir, "a", "nested.txt"), "nested")
	writeFile(t, filepath.Join(dir, "c.mdx"), "c")
	writeFile(t, filepath.Join(dir, "ignore.go"), "not a doc")
	writeFile(t, filepath.Join(dir, "ignore.json"), "not a doc")

	got := store.ListDocuments()
	assert.Equal(t, []string{
		"sources/a/nested.txt",
		"sources/b.md",
		"sources/c.mdx",
	}, got)
}

func TestReadRoundTrip(t *testing.T) {
	store, dir := newTestStore(t)
	writeFile(t, filepath.Join(dir, "a", "b.md"), "# Title\n\nbody")

	ids := store.ListDocuments()
	require.Contains(t, ids, "sources/a/b.md")

	content, err := store.Read("sources/a/b.md")
	require.NoError(t, err)
	assert.Equal(t, "# Title\n\nbody", content)
}

func TestRead_Errors(t *testing.T) {
	store, dir := newTestStore(t)
	writeFile(t, filepath.Join(dir, "exists.md"), "hi")

	_, err := store.Read("no-separator")
	assert.ErrorIs(t, err, ErrInvalidIdentifier)

	_, err = store.Read("otherroot/exists.md")
	assert.ErrorIs(t, err, ErrUnknownRoot)

	_, err = store.Read("sources/missing.md")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRead_DirectoryIsNotFound(t *testing.T) {
	store, dir := newTestStore(t)
	writeFile(t, filepath.Join(dir, "sub", "doc.md"), "hi")

	_, err := store.Read("sources/sub")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMultipleRoots(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, filepath.Join(dirA, "one.md"), "one")
	writeFile(t, filepath.Join(dirB, "two.md"), "two")

	store := New([]Root{
		{Name: "alpha", Path: dirA},
		{Name: "beta", Path: dirB},
	}, nil)

	assert.Equal(t, []string{"alpha/one.md", "beta/two.md"}, store.ListDocuments())

	content, err := store.Read("beta/two.md")
	require.NoError(t, err)
	assert.Equal(t, "two", content)
}

// A file under two overlapping roots resolves through the
// first-declared root only.
func TestOverlappingRoots_FirstDeclaredWins(t *testing.T) {
	outer := t.TempDir()
	inner := filepath.Join(outer, "inner")
	writeFile(t, filepath.Join(inner, "doc.md"), "hi")

	store := New([]Root{
		{Name: "outer", Path: outer},
		{Name: "inner", Path: inner},
	}, nil)

	assert.Equal(t, []string{"outer/inner/doc.md"}, store.ListDocuments())
}

func TestIdentifier(t *testing.T) {
	store, dir := newTestStore(t)
	writeFile(t, filepath.Join(dir, "a", "b.md"), "x")

	id, ok := store.Identifier(filepath.Join(dir, "a", "b.md"))
	require.True(t, ok)
	assert.Equal(t, "sources/a/b.md", id)

	_, ok = store.Identifier(filepath.Join(t.TempDir(), "elsewhere.md"))
	assert.False(t, ok)
}

func TestEnsureRoots_CreatesMissing(t *testing.T) {
	base := t.TempDir()
	missing := filepath.Join(base, "docs")
	store := New([]Root{{Name: "docs", Path: missing}}, nil)

	store.EnsureRoots()

	info, err := os.Stat(missing)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSourceInfo(t *testing.T) {
	dirA := t.TempDir()
	dirB := t.TempDir()
	writeFile(t, filepath.Join(dirA, "one.md"), "one")
	writeFile(t, filepath.Join(dirA, "two.txt"), "two")
	writeFile(t, filepath.Join(dirB, "three.mdx"), "three")

	store := New([]Root{
		{Name: "alpha", Path: dirA},
		{Name: "beta", Path: dirB},
	}, nil)

	info := store.SourceInfo()
	assert.Equal(t, 3, info.TotalDocuments)
	assert.Equal(t, 2, info.DocumentsPerRoot["alpha"])
	assert.Equal(t, 1, info.DocumentsPerRoot["beta"])
	assert.Equal(t, SupportedExtensions, info.SupportedExtensions)
}
