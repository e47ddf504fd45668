package section

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGlobalHeader_RoundTrip(t *testing.T) {
	h := GlobalHeader{
		DocumentLength:   42,
		NumEmbeddings:    3,
		ContentOffset:    MaxContentOffset,
		EmbeddingsOffset: MaxEmbeddingsOffset,
	}
	buf, err := h.Bytes()
	require.NoError(t, err)
	require.Len(t, buf, GlobalHeaderSize)

	got, err := ParseGlobalHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestGlobalHeader_OffsetOverflow(t *testing.T) {
	h := GlobalHeader{ContentOffset: MaxContentOffset + 1}
	_, err := h.Bytes()
	require.Error(t, err)

	h2 := GlobalHeader{EmbeddingsOffset: MaxEmbeddingsOffset + 1}
	_, err = h2.Bytes()
	require.Error(t, err)
}

func TestTermHeader_RoundTrip(t *testing.T) {
	h := TermHeader{MaxPositions: 7, DocumentFrequency: 5}
	buf := h.Bytes()
	require.Len(t, buf, TermHeaderSize)

	got, err := ParseTermHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}

func TestDocumentHeader_RoundTrip(t *testing.T) {
	h := DocumentHeader{
		DocumentLengthForBM25: 10,
		TermLength:            20,
		DataLength:            30,
		ContentLength:         40,
		NumEmbeddings:         2,
		NumTerms:              3,
	}
	buf := h.Bytes()
	require.Len(t, buf, DocumentHeaderSize)

	got, err := ParseDocumentHeader(buf)
	require.NoError(t, err)
	require.Equal(t, h, got)
}
