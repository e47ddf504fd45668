package section

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
)

// TermHeaderSize is the on-disk size in bytes of TermHeader.
const TermHeaderSize = 8

// TermHeader precedes a term's hierarchical postings blob in *_term_data.
type TermHeader struct {
	MaxPositions      uint32
	DocumentFrequency uint32
}

// Bytes serializes the header into TermHeaderSize bytes.
func (h TermHeader) Bytes() []byte {
	buf := make([]byte, TermHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.MaxPositions)
	binary.LittleEndian.PutUint32(buf[4:8], h.DocumentFrequency)

	return buf
}

// ParseTermHeader reads a TermHeader from the front of data.
func ParseTermHeader(data []byte) (TermHeader, error) {
	if len(data) < TermHeaderSize {
		return TermHeader{}, errs.ErrMalformed
	}

	return TermHeader{
		MaxPositions:      binary.LittleEndian.Uint32(data[0:4]),
		DocumentFrequency: binary.LittleEndian.Uint32(data[4:8]),
	}, nil
}
