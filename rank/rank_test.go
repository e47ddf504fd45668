package rank

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestIDF_ZeroAndFullDocumentFrequency(t *testing.T) {
	n := uint32(1000)
	require.InDelta(t, math.Log((float64(n)+1)/0.5), IDF(0, n), 1e-12)

	idfFull := IDF(n, n)
	require.GreaterOrEqual(t, idfFull, 0.0)
	require.InDelta(t, math.Log((float64(n)+1)/(float64(n)+0.5)), idfFull, 1e-12)
}

func TestBM25Plus_Scenario(t *testing.T) {
	got := BM25Plus(10, 1000, 3, 2, 100, 80)
	require.InDelta(t, 16.313874, got, 1e-6)
}

func TestPairProximity_Scenario(t *testing.T) {
	got := PairProximity([]uint32{5, 20}, []uint32{3, 22})
	require.Equal(t, uint32(2), got)
}

func TestPairProximity_EmptyReturnsMax(t *testing.T) {
	require.Equal(t, uint32(math.MaxUint32), PairProximity(nil, []uint32{1}))
	require.Equal(t, uint32(math.MaxUint32), PairProximity([]uint32{1}, nil))
}

func TestPairProximity_DisjointOrderedLists(t *testing.T) {
	// min(A) > max(B): every pair is out of order (a > b), so the answer is
	// min(a-b)+1 across all pairs, achieved at the closest pair.
	a := []uint32{100, 110}
	b := []uint32{10, 90}
	got := PairProximity(a, b)
	require.Equal(t, uint32(100-90+1), got)
}

func TestSpreadScore_EmptyIsZero(t *testing.T) {
	require.Zero(t, SpreadScore(nil))
}

func TestSpreadScore_SinglePosition(t *testing.T) {
	got := SpreadScore([]uint32{10})
	require.InDelta(t, 1.0/10, got, 1e-12)
}
