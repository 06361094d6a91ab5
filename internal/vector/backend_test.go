package vector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SteedMonteiro/mcp-local-context/internal/classifier"
)

func TestDisabled(t *testing.T) {
	var b Backend = Disabled{Reason: "turned off"}
	ctx := context.Background()

	assert.False(t, b.Available())

	err := b.Insert(ctx, "content", Metadata{Identifier: "sources/a.md"})
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = b.Query(ctx, "query", 5)
	assert.ErrorIs(t, err, ErrUnavailable)

	assert.ErrorIs(t, b.Clear(ctx), ErrUnavailable)

	count, err := b.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestMetadataDocTypeIsClosedSet(t *testing.T) {
	meta := Metadata{Identifier: "sources/guide.md", DocType: classifier.TypeGuide}
	assert.True(t, meta.DocType.Valid())
}
