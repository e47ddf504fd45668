package postings

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
)

// AppendGroupLength appends a self-describing length prefix for a nested
// group blob (spec.md §4.2 "Group length prefix"): lengths under
// Group2ByteLength encode as a single byte, lengths up to 65535 as a marker
// byte plus a little-endian u16, and anything larger as a marker byte plus
// a little-endian u32.
func AppendGroupLength(buf []byte, length uint32) []byte {
	switch {
	case length < Group2ByteLength:
		return append(buf, byte(length))
	case length <= 0xFFFF:
		buf = append(buf, Group2ByteLength)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(length))
		return append(buf, tmp[:]...)
	default:
		buf = append(buf, Group4ByteLength)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], length)
		return append(buf, tmp[:]...)
	}
}

// ReadGroupLength decodes a length prefix written by AppendGroupLength,
// returning the length and the number of bytes consumed.
func ReadGroupLength(p []byte) (length uint32, n int, err error) {
	if len(p) < 1 {
		return 0, 0, errs.ErrMalformed
	}
	switch p[0] {
	case Group2ByteLength:
		if len(p) < 3 {
			return 0, 0, errs.ErrMalformed
		}
		return uint32(binary.LittleEndian.Uint16(p[1:3])), 3, nil
	case Group4ByteLength:
		if len(p) < 5 {
			return 0, 0, errs.ErrMalformed
		}
		return binary.LittleEndian.Uint32(p[1:5]), 5, nil
	default:
		return uint32(p[0]), 1, nil
	}
}
