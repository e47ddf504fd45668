package cursor_test

import (
	"testing"

	"github.com/knode-ai-open-source/search-index-library/cursor"
	"github.com/knode-ai-open-source/search-index-library/postings"
	"github.com/stretchr/testify/require"
)

func TestCursor_AdvanceInOrder(t *testing.T) {
	occ := []postings.Occurrence{
		{DocID: 0, Position: 1},
		{DocID: 1023, Position: 2},
		{DocID: 1024, Position: 3},
		{DocID: 262143, Position: 4},
		{DocID: 262144, Position: 5},
	}
	blob := postings.EncodeTerm(occ)

	c := cursor.New(blob, 1)
	var got []uint32
	for c.Advance() {
		got = append(got, c.DocID())
	}
	require.Equal(t, []uint32{0, 1023, 1024, 262143, 262144}, got)
}

func TestCursor_AdvanceTo(t *testing.T) {
	occ := []postings.Occurrence{
		{DocID: 0, Position: 1},
		{DocID: 1023, Position: 2},
		{DocID: 1024, Position: 3},
		{DocID: 262143, Position: 4},
		{DocID: 262144, Position: 5},
	}
	blob := postings.EncodeTerm(occ)

	c := cursor.New(blob, 1)
	require.True(t, c.AdvanceTo(1024))
	require.Equal(t, uint32(1024), c.DocID())

	require.True(t, c.AdvanceTo(1024), "advance_to(current_id) is a no-op")
	require.Equal(t, uint32(1024), c.DocID())

	require.False(t, c.AdvanceTo(300000), "no id >= 300000 exists")
	require.Equal(t, uint32(262144), c.DocID())

	require.False(t, c.AdvanceTo(1))
}

func TestCursor_PositionsAndValue(t *testing.T) {
	occ := []postings.Occurrence{
		{DocID: 5, Position: 10},
		{DocID: 5, Position: 20},
		{DocID: 6, Value: 42},
	}
	blob := postings.EncodeTerm(occ)

	c := cursor.New(blob, 2)
	require.True(t, c.Advance())
	require.Equal(t, uint32(5), c.DocID())
	require.Equal(t, []uint32{10, 20}, c.Positions())
	require.False(t, c.HasValue())

	require.True(t, c.Advance())
	require.Equal(t, uint32(6), c.DocID())
	require.True(t, c.HasValue())
	require.Equal(t, uint32(42), c.Value())
	require.Empty(t, c.Positions())

	require.False(t, c.Advance())
}

func TestCursor_EmptyBlob(t *testing.T) {
	c := cursor.New(nil, 0)
	require.False(t, c.Advance())
	require.False(t, c.AdvanceTo(5))
}
