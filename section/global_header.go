// Package section defines the fixed-size, bit-packed header structs that
// appear on disk: the per-document global header, the per-document-image
// header, and the per-term header. Each struct follows the teacher's
// Parse/Bytes pairing (see section/numeric_header.go in the teacher repo)
// rather than unsafe pointer casts, since our fields are bitfields rather
// than plain fixed-width words.
package section

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
)

// Bitfield widths for the packed 64-bit word in GlobalHeader.
const (
	ContentOffsetBits    = 36
	EmbeddingsOffsetBits = 28
	MaxContentOffset     = 1<<ContentOffsetBits - 1
	MaxEmbeddingsOffset  = 1<<EmbeddingsOffsetBits - 1
)

// GlobalHeaderSize is the on-disk size in bytes of GlobalHeader.
const GlobalHeaderSize = 16

// GlobalHeader is the per-document header stored in the *_gbl file.
//
// Wire layout (little-endian):
//
//	document_length   u32
//	num_embeddings    u32
//	packed            u64  (content_offset:36 | embeddings_offset:28)
type GlobalHeader struct {
	DocumentLength    uint32 // term count for BM25
	NumEmbeddings     uint32
	ContentOffset     uint64 // byte offset into the content file (36 bits)
	EmbeddingsOffset  uint64 // embedding index, multiply by 512 for byte offset (28 bits)
}

// Bytes serializes the header into GlobalHeaderSize bytes.
func (h *GlobalHeader) Bytes() ([]byte, error) {
	if h.ContentOffset > MaxContentOffset {
		return nil, errs.ErrOffsetTooLarge
	}
	if h.EmbeddingsOffset > MaxEmbeddingsOffset {
		return nil, errs.ErrOffsetTooLarge
	}

	buf := make([]byte, GlobalHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.DocumentLength)
	binary.LittleEndian.PutUint32(buf[4:8], h.NumEmbeddings)
	packed := h.ContentOffset | (h.EmbeddingsOffset << ContentOffsetBits)
	binary.LittleEndian.PutUint64(buf[8:16], packed)

	return buf, nil
}

// ParseGlobalHeader reads a GlobalHeader from the front of data.
func ParseGlobalHeader(data []byte) (GlobalHeader, error) {
	if len(data) < GlobalHeaderSize {
		return GlobalHeader{}, errs.ErrMalformed
	}

	packed := binary.LittleEndian.Uint64(data[8:16])

	return GlobalHeader{
		DocumentLength:   binary.LittleEndian.Uint32(data[0:4]),
		NumEmbeddings:    binary.LittleEndian.Uint32(data[4:8]),
		ContentOffset:    packed & MaxContentOffset,
		EmbeddingsOffset: (packed >> ContentOffsetBits) & MaxEmbeddingsOffset,
	}, nil
}
