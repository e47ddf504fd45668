package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestByteBufferPool_GetPutReuse(t *testing.T) {
	p := NewByteBufferPool(16, 1024)

	bb := p.Get()
	bb.Write([]byte("hello"))
	require.Equal(t, 5, bb.Len())

	p.Put(bb)
	bb2 := p.Get()
	require.Equal(t, 0, bb2.Len())
}

func TestByteBufferPool_DiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(16, 8)

	bb := p.Get()
	bb.Write(make([]byte, 64))
	p.Put(bb)

	bb2 := p.Get()
	require.Equal(t, 0, bb2.Len())
}

func TestGetUint32Slice_ExactLength(t *testing.T) {
	s, cleanup := GetUint32Slice(10)
	defer cleanup()
	require.Len(t, s, 10)

	for i := range s {
		s[i] = uint32(i)
	}
	require.Equal(t, uint32(9), s[9])
}

func TestGetUint32Slice_GrowsWhenTooSmall(t *testing.T) {
	s1, cleanup1 := GetUint32Slice(2)
	cleanup1()

	s2, cleanup2 := GetUint32Slice(50)
	defer cleanup2()
	require.Len(t, s2, 50)
	require.NotNil(t, s1)
}
