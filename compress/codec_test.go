package compress

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func allCodecs(t *testing.T) map[string]Codec {
	t.Helper()
	return map[string]Codec{
		"NoOp": NewNoOpCompressor(),
		"LZ4":  NewLZ4Compressor(),
		"S2":   NewS2Compressor(),
		"Zstd": NewZstdCompressor(),
	}
}

func TestNewCodec(t *testing.T) {
	for _, a := range []Algorithm{AlgorithmNone, AlgorithmZstd, AlgorithmS2, AlgorithmLZ4} {
		c, err := NewCodec(a)
		require.NoError(t, err)
		require.NotNil(t, c)
	}

	_, err := NewCodec(Algorithm(0xFF))
	require.Error(t, err)
}

func TestAllCodecs_RoundTrip(t *testing.T) {
	cases := []struct {
		name string
		data []byte
	}{
		{"empty", []byte{}},
		{"small_text", []byte("search index spill run")},
		{"repeated_pattern", bytes.Repeat([]byte("ABCD"), 100)},
		{"binary", []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0xFD}},
		{"large_zeros", make([]byte, 256*1024)},
	}

	for name, codec := range allCodecs(t) {
		t.Run(name, func(t *testing.T) {
			for _, tc := range cases {
				t.Run(tc.name, func(t *testing.T) {
					compressed, err := codec.Compress(tc.data)
					require.NoError(t, err)

					decompressed, err := codec.Decompress(compressed)
					require.NoError(t, err)
					require.True(t, bytes.Equal(tc.data, decompressed))
				})
			}
		})
	}
}

func TestNoOpCompressor_NoCopy(t *testing.T) {
	c := NewNoOpCompressor()
	data := []byte("unchanged")

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Same(t, &data[0], &compressed[0])
}

func TestAllCodecs_InvalidData(t *testing.T) {
	invalid := []byte{0xFF, 0xFF, 0xFF, 0xFF}

	for name, codec := range allCodecs(t) {
		if name == "NoOp" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			_, err := codec.Decompress(invalid)
			require.Error(t, err)
		})
	}
}
