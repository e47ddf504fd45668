package extsort

import (
	"fmt"
	"io"
	"testing"

	"github.com/knode-ai-open-source/search-index-library/compress"
	"github.com/stretchr/testify/require"
)

func drain(t *testing.T, it *Iterator) []Entry {
	t.Helper()
	var out []Entry
	for {
		e, err := it.Next()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		out = append(out, e)
	}
	return out
}

func TestSorter_SingleRun_SortsInMemory(t *testing.T) {
	s := New(t.TempDir(), compress.NewNoOpCompressor(), 1000)
	require.NoError(t, s.Add([]byte("banana"), []byte("2")))
	require.NoError(t, s.Add([]byte("apple"), []byte("1")))
	require.NoError(t, s.Add([]byte("cherry"), []byte("3")))

	it, err := s.Finish()
	require.NoError(t, err)

	got := drain(t, it)
	require.Len(t, got, 3)
	require.Equal(t, "apple", string(got[0].Key))
	require.Equal(t, "banana", string(got[1].Key))
	require.Equal(t, "cherry", string(got[2].Key))
}

func TestSorter_MultipleRuns_MergesSorted(t *testing.T) {
	s := New(t.TempDir(), compress.NewZstdCompressor(), 4)

	keys := []string{"m", "a", "z", "b", "y", "c", "x", "d", "w", "e"}
	for i, k := range keys {
		require.NoError(t, s.Add([]byte(k), []byte(fmt.Sprintf("%d", i))))
	}

	it, err := s.Finish()
	require.NoError(t, err)

	got := drain(t, it)
	require.Len(t, got, len(keys))
	for i := 1; i < len(got); i++ {
		require.LessOrEqual(t, string(got[i-1].Key), string(got[i].Key))
	}
}

func TestSorter_Empty(t *testing.T) {
	s := New(t.TempDir(), nil, 100)
	it, err := s.Finish()
	require.NoError(t, err)

	_, err = it.Next()
	require.ErrorIs(t, err, io.EOF)
}

func TestSorter_DedupAcrossRunsByCaller(t *testing.T) {
	s := New(t.TempDir(), compress.NewLZ4Compressor(), 2)
	require.NoError(t, s.Add([]byte("term"), []byte{1}))
	require.NoError(t, s.Add([]byte("other"), []byte{2}))
	require.NoError(t, s.Add([]byte("term"), []byte{3}))

	it, err := s.Finish()
	require.NoError(t, err)

	got := drain(t, it)
	var termValues [][]byte
	for _, e := range got {
		if string(e.Key) == "term" {
			termValues = append(termValues, e.Value)
		}
	}
	require.Len(t, termValues, 2, "caller is responsible for reducing repeated keys across runs")
}
