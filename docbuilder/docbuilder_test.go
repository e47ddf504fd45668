package docbuilder

import (
	"testing"

	"github.com/knode-ai-open-source/search-index-library/docimage"
	"github.com/stretchr/testify/require"
)

func TestBuilder_Global_RoundTrip(t *testing.T) {
	b := New()
	b.Term("example")
	b.TermPosition(10, "positional")
	b.TermPosition(20, "positional")
	b.TermValue(42, "vterm")

	embeddings := make([]byte, 2*512)
	embeddings[0] = 0xAB
	content := []byte("hello world")
	userData := []byte{1, 2, 3, 4}

	buf, err := b.Global(embeddings, 2, content, userData)
	require.NoError(t, err)

	img, err := docimage.Open(buf)
	require.NoError(t, err)

	require.Equal(t, []string{"example", "positional", "vterm"}, img.Terms())
	require.Equal(t, uint32(2), img.DocumentLengthForBM25())
	require.Equal(t, uint32(3), img.NumTerms())
	require.Equal(t, content, img.Content())
	require.Equal(t, userData, img.UserData())
	require.Equal(t, embeddings, img.Embeddings())

	rec, ok, err := img.Term("example")
	require.NoError(t, err)
	require.True(t, ok)
	require.False(t, rec.HasValue)
	require.Empty(t, rec.Positions)

	rec, ok, err = img.Term("POSITIONAL")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []uint32{10, 20}, rec.Positions)

	rec, ok, err = img.Term("vterm")
	require.NoError(t, err)
	require.True(t, ok)
	require.True(t, rec.HasValue)
	require.Equal(t, uint32(42), rec.Value)

	_, ok, err = img.Term("missing")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBuilder_Global_RejectsMismatchedEmbeddings(t *testing.T) {
	b := New()
	b.Term("x")
	_, err := b.Global(make([]byte, 10), 1, nil, nil)
	require.Error(t, err)
}

func TestBuilder_WTermVariantsMatchPlainVariants(t *testing.T) {
	b := New()
	b.WTerm("alpha")
	b.WTermPosition(5, "beta")
	b.WTermValue(7, "gamma")

	buf, err := b.Global(nil, 0, nil, nil)
	require.NoError(t, err)

	img, err := docimage.Open(buf)
	require.NoError(t, err)
	require.Equal(t, []string{"alpha", "beta", "gamma"}, img.Terms())
}
