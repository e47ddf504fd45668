package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSum64_Deterministic(t *testing.T) {
	data := []byte("search-index-library")
	require.Equal(t, Sum64(data), Sum64(data))
	require.NotEqual(t, Sum64(data), Sum64([]byte("different")))
}

func TestNew_StreamingMatchesSum64(t *testing.T) {
	data := []byte("some file contents spanning multiple writes")

	d := New()
	_, err := d.Write(data[:10])
	require.NoError(t, err)
	_, err = d.Write(data[10:])
	require.NoError(t, err)

	require.Equal(t, Sum64(data), d.Sum64())
}
