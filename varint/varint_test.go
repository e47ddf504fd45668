package varint

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppendDecode_Boundaries(t *testing.T) {
	cases := []struct {
		value     uint32
		wantBytes int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{2097151, 3},
		{1<<32 - 1, 5},
	}

	for _, tc := range cases {
		buf := Append(nil, tc.value)
		require.Len(t, buf, tc.wantBytes, "value %d", tc.value)

		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, tc.value, got)
		require.Equal(t, tc.wantBytes, n)
	}
}

func TestDecode_Identity(t *testing.T) {
	values := []uint32{0, 1, 2, 3, 100, 1000, 1 << 20, 1<<26 - 1, 1<<31 + 7, 1<<32 - 1}
	for _, v := range values {
		buf := Append(nil, v)
		got, n, err := Decode(buf)
		require.NoError(t, err)
		require.Equal(t, v, got)
		require.Equal(t, len(buf), n)
	}
}

func TestDecode_Truncated(t *testing.T) {
	buf := Append(nil, 1<<20)
	_, _, err := Decode(buf[:len(buf)-1])
	require.Error(t, err)
}

func TestEncode_ScratchBuffer(t *testing.T) {
	var tmp [MaxLen32]byte
	n := Encode(&tmp, 300)
	got, m, err := Decode(tmp[:n])
	require.NoError(t, err)
	require.Equal(t, n, m)
	require.Equal(t, uint32(300), got)
}

func TestSkip(t *testing.T) {
	buf := Append(nil, 99999)
	buf = append(buf, 0xAB) // trailing sentinel byte
	n, err := Skip(buf)
	require.NoError(t, err)
	require.Less(t, n, len(buf))
	require.Equal(t, byte(0xAB), buf[n])
}
