package docimage_test

import (
	"testing"

	"github.com/knode-ai-open-source/search-index-library/docbuilder"
	"github.com/knode-ai-open-source/search-index-library/docimage"
	"github.com/stretchr/testify/require"
)

func buildSample(t *testing.T) *docimage.Image {
	t.Helper()
	b := docbuilder.New()
	b.TermPosition(1, "cat")
	b.TermPosition(2, "cat")
	b.TermPosition(3, "cat")
	b.TermPosition(1, "dog")

	buf, err := b.Global(nil, 0, nil, nil)
	require.NoError(t, err)

	img, err := docimage.Open(buf)
	require.NoError(t, err)
	return img
}

func TestMatchSet(t *testing.T) {
	img := buildSample(t)
	m := img.MatchSet([]string{"cat", "dog", "missing"})
	require.Len(t, m, 2)
	require.Equal(t, []uint32{1, 2, 3}, m["cat"].Positions)
	require.Equal(t, []uint32{1}, m["dog"].Positions)
}

func TestUpdateFrequencyAndAddSetFrequency(t *testing.T) {
	img := buildSample(t)

	freq := make(map[string]uint32)
	img.UpdateFrequency("cat", freq)
	require.Equal(t, uint32(3), freq["cat"])

	img.UpdateFrequency("cat", freq)
	require.Equal(t, uint32(6), freq["cat"], "accumulates across repeated calls")

	freq2 := make(map[string]uint32)
	img.AddSetFrequency([]string{"cat", "dog", "missing"}, freq2)
	require.Equal(t, uint32(3), freq2["cat"])
	require.Equal(t, uint32(1), freq2["dog"])
	require.Zero(t, freq2["missing"])
}
