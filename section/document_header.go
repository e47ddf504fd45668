package section

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
)

// DocumentHeaderSize is the on-disk size in bytes of DocumentHeader.
const DocumentHeaderSize = 24

// DocumentHeader is the header embedded in a single-document image, written
// immediately after the leading u32 total-length prefix.
type DocumentHeader struct {
	DocumentLengthForBM25 uint32
	TermLength            uint32
	DataLength            uint32
	ContentLength         uint32
	NumEmbeddings         uint32
	NumTerms              uint32
}

// Bytes serializes the header into DocumentHeaderSize bytes.
func (h DocumentHeader) Bytes() []byte {
	buf := make([]byte, DocumentHeaderSize)
	binary.LittleEndian.PutUint32(buf[0:4], h.DocumentLengthForBM25)
	binary.LittleEndian.PutUint32(buf[4:8], h.TermLength)
	binary.LittleEndian.PutUint32(buf[8:12], h.DataLength)
	binary.LittleEndian.PutUint32(buf[12:16], h.ContentLength)
	binary.LittleEndian.PutUint32(buf[16:20], h.NumEmbeddings)
	binary.LittleEndian.PutUint32(buf[20:24], h.NumTerms)

	return buf
}

// ParseDocumentHeader reads a DocumentHeader from the front of data.
func ParseDocumentHeader(data []byte) (DocumentHeader, error) {
	if len(data) < DocumentHeaderSize {
		return DocumentHeader{}, errs.ErrMalformed
	}

	return DocumentHeader{
		DocumentLengthForBM25: binary.LittleEndian.Uint32(data[0:4]),
		TermLength:            binary.LittleEndian.Uint32(data[4:8]),
		DataLength:            binary.LittleEndian.Uint32(data[8:12]),
		ContentLength:         binary.LittleEndian.Uint32(data[12:16]),
		NumEmbeddings:         binary.LittleEndian.Uint32(data[16:20]),
		NumTerms:              binary.LittleEndian.Uint32(data[20:24]),
	}, nil
}
