package postings

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitJoinDocID(t *testing.T) {
	for _, id := range []uint32{0, 1, 1023, 1024, MaxDocID, 0x3FFFF, 12345678} {
		top, mid, small := SplitDocID(id)
		require.LessOrEqual(t, top, uint32(TopGroupMax))
		require.LessOrEqual(t, mid, uint32(MidGroupMax))
		require.LessOrEqual(t, small, uint32(SmallIDMax))
		require.Equal(t, id, JoinDocID(top, mid, small))
	}
}

func TestEncodeTerm_SingleOccurrenceNoPosition(t *testing.T) {
	occ := []Occurrence{{DocID: 5, Position: 0, Value: 7}}
	blob := EncodeTerm(occ)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, uint32(5), got[0].DocID)
	require.True(t, got[0].HasValue)
	require.Equal(t, uint32(7), got[0].Value)
	require.Nil(t, got[0].Positions)
}

func TestEncodeTerm_ValueOpcodeWidths(t *testing.T) {
	for _, v := range []uint32{0, 1, ValueLiteralMax, ValueLiteralMax + 1, 0xFF, 0x100, 0xFFFF, 0x10000, 0xFFFFFFFF} {
		occ := []Occurrence{{DocID: 1, Position: 0, Value: v}}
		blob := EncodeTerm(occ)
		got, err := DecodeTerm(blob)
		require.NoError(t, err)
		require.Equal(t, v, got[0].Value, "value %d round-trip", v)
	}
}

func TestEncodeTerm_MultiplePositionsSingleDoc(t *testing.T) {
	occ := []Occurrence{
		{DocID: 9, Position: 3},
		{DocID: 9, Position: 7},
		{DocID: 9, Position: 500},
	}
	blob := EncodeTerm(occ)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []uint32{3, 7, 500}, got[0].Positions)
	require.False(t, got[0].HasValue)
}

func TestEncodeTerm_LeadingValueWithPositions(t *testing.T) {
	occ := []Occurrence{
		{DocID: 2, Position: 0, Value: 42},
		{DocID: 2, Position: 10},
		{DocID: 2, Position: 20},
	}
	blob := EncodeTerm(occ)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.True(t, got[0].HasValue)
	require.Equal(t, uint32(42), got[0].Value)
	require.Equal(t, []uint32{10, 20}, got[0].Positions)
}

func TestEncodeTerm_ExtendedPositionBlob(t *testing.T) {
	positions := make([]Occurrence, 0, 40)
	for i := uint32(0); i < 40; i++ {
		positions = append(positions, Occurrence{DocID: 3, Position: i * 17})
	}
	blob := EncodeTerm(positions)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Len(t, got[0].Positions, 40)
	for i, p := range got[0].Positions {
		require.Equal(t, uint32(i)*17, p)
	}
}

func TestEncodeTerm_ThreeLevelHierarchy(t *testing.T) {
	var occ []Occurrence
	docIDs := []uint32{
		JoinDocID(0, 0, 1),
		JoinDocID(0, 0, 500),
		JoinDocID(0, 3, 2),
		JoinDocID(5, 0, 9),
		JoinDocID(200, 10, 1000),
	}
	for _, id := range docIDs {
		occ = append(occ, Occurrence{DocID: id, Position: 1, Value: 0})
	}

	blob := EncodeTerm(occ)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, len(docIDs))

	gotIDs := make([]uint32, len(got))
	for i, dp := range got {
		gotIDs[i] = dp.DocID
	}
	sortedIDs := append([]uint32(nil), docIDs...)
	for i := 1; i < len(sortedIDs); i++ {
		for j := i; j > 0 && sortedIDs[j-1] > sortedIDs[j]; j-- {
			sortedIDs[j-1], sortedIDs[j] = sortedIDs[j], sortedIDs[j-1]
		}
	}
	require.Equal(t, sortedIDs, gotIDs)
}

func TestEncodeTerm_DuplicateZeroPositions(t *testing.T) {
	occ := []Occurrence{
		{DocID: 1, Position: 0, Value: 0},
		{DocID: 1, Position: 0, Value: 0},
	}
	blob := EncodeTerm(occ)
	got, err := DecodeTerm(blob)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, []uint32{0, 0}, got[0].Positions)
}

func TestDecodeTerm_Empty(t *testing.T) {
	got, err := DecodeTerm(nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestDecodeTerm_Truncated(t *testing.T) {
	occ := []Occurrence{{DocID: 1, Position: 5}}
	blob := EncodeTerm(occ)
	_, err := DecodeTerm(blob[:len(blob)-1])
	require.Error(t, err)
}

func TestGroupLength_RoundTrip(t *testing.T) {
	for _, l := range []uint32{0, 1, Group2ByteLength - 1, Group2ByteLength, 0xFFFF, 0x10000, 0xFFFFFFFF} {
		buf := AppendGroupLength(nil, l)
		got, n, err := ReadGroupLength(buf)
		require.NoError(t, err)
		require.Equal(t, l, got)
		require.Equal(t, len(buf), n)
	}
}
