package postings

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
)

// AppendMultiDocRecord appends one inner Record to buf for use inside a
// small-id group of a multi-document posting list: a 2-byte control word
// (10-bit small id, 6-bit flags) followed by the Record body. occ must all
// share smallID as their DocID's low SmallIDBits bits.
func AppendMultiDocRecord(buf []byte, smallID uint32, occ []Occurrence) []byte {
	flags, body := encodeBody(nil, occ)
	ctrl := (uint16(smallID) << SmallIDShift) | uint16(flags)
	var tmp [2]byte
	binary.LittleEndian.PutUint16(tmp[:], ctrl)
	buf = append(buf, tmp[:]...)
	return append(buf, body...)
}

// DecodeMultiDocRecord decodes one inner Record from the front of p,
// returning the Record's small id, its body, and the number of bytes
// consumed.
func DecodeMultiDocRecord(p []byte) (smallID uint32, rec Record, n int, err error) {
	if len(p) < 2 {
		return 0, Record{}, 0, errs.ErrMalformed
	}
	ctrl := binary.LittleEndian.Uint16(p[0:2])
	smallID = uint32(ctrl>>SmallIDShift) & SmallIDMax
	flags := byte(ctrl) & FlagsMask

	rec, bodyLen, err := decodeBody(flags, p[2:])
	if err != nil {
		return 0, Record{}, 0, err
	}
	return smallID, rec, 2 + bodyLen, nil
}

// AppendSingleDocRecord appends one inner Record to buf for use inside a
// single-document image, where the document id is implicit and the
// control word is a single flags byte (no small id field).
func AppendSingleDocRecord(buf []byte, occ []Occurrence) []byte {
	flags, body := encodeBody(nil, occ)
	buf = append(buf, flags)
	return append(buf, body...)
}

// DecodeSingleDocRecord decodes one inner Record written by
// AppendSingleDocRecord from the front of p.
func DecodeSingleDocRecord(p []byte) (rec Record, n int, err error) {
	if len(p) < 1 {
		return Record{}, 0, errs.ErrMalformed
	}
	flags := p[0] & FlagsMask
	rec, bodyLen, err := decodeBody(flags, p[1:])
	if err != nil {
		return Record{}, 0, err
	}
	return rec, 1 + bodyLen, nil
}
