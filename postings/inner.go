package postings

import (
	"encoding/binary"

	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/varint"
)

// Record is the decoded body of one inner Record: the per-document value
// (if any) and the sorted positions (if any) contributed by that document.
type Record struct {
	HasValue  bool
	Value     uint32
	Positions []uint32
}

// appendValueOpcode appends a non-positional value using the 5-bit literal
// or Value1Byte/Value2Byte/Value4Byte opcode scheme (§4.2).
func appendValueOpcode(buf []byte, flags byte, value uint32) (byte, []byte) {
	switch {
	case value <= ValueLiteralMax:
		return flags | byte(value), buf
	case value <= 0xFF:
		buf = append(buf, byte(value))
		return flags | Value1Byte, buf
	case value <= 0xFFFF:
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(value))
		return flags | Value2Byte, append(buf, tmp[:]...)
	default:
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], value)
		return flags | Value4Byte, append(buf, tmp[:]...)
	}
}

// readValueOpcode decodes a non-positional value given the 5-bit opcode
// held in flags and the bytes following the control word.
func readValueOpcode(flags byte, p []byte) (value uint32, n int, err error) {
	op := flags & 0x1F
	switch op {
	case Value1Byte:
		if len(p) < 1 {
			return 0, 0, errs.ErrMalformed
		}
		return uint32(p[0]), 1, nil
	case Value2Byte:
		if len(p) < 2 {
			return 0, 0, errs.ErrMalformed
		}
		return uint32(binary.LittleEndian.Uint16(p[0:2])), 2, nil
	case Value4Byte:
		if len(p) < 4 {
			return 0, 0, errs.ErrMalformed
		}
		return binary.LittleEndian.Uint32(p[0:4]), 4, nil
	default:
		return uint32(op), 0, nil
	}
}

// appendPosValue appends the value that precedes a position blob when
// FlagValWithPos is set: values under PosValue2Byte are written literally
// as a single byte, larger values use the PosValue2Byte/PosValue4Byte
// markers.
func appendPosValue(buf []byte, value uint32) []byte {
	switch {
	case value < PosValue2Byte:
		return append(buf, byte(value))
	case value <= 0xFFFF:
		buf = append(buf, PosValue2Byte)
		var tmp [2]byte
		binary.LittleEndian.PutUint16(tmp[:], uint16(value))
		return append(buf, tmp[:]...)
	default:
		buf = append(buf, PosValue4Byte)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], value)
		return append(buf, tmp[:]...)
	}
}

func readPosValue(p []byte) (value uint32, n int, err error) {
	if len(p) < 1 {
		return 0, 0, errs.ErrMalformed
	}
	switch p[0] {
	case PosValue2Byte:
		if len(p) < 3 {
			return 0, 0, errs.ErrMalformed
		}
		return uint32(binary.LittleEndian.Uint16(p[1:3])), 3, nil
	case PosValue4Byte:
		if len(p) < 5 {
			return 0, 0, errs.ErrMalformed
		}
		return binary.LittleEndian.Uint32(p[1:5]), 5, nil
	default:
		return uint32(p[0]), 1, nil
	}
}

// encodePositionBlob encodes a sorted, non-empty slice of positions as a
// varint of the first position with its bits 7-8 cleared, followed by
// successive delta varints. It returns the blob bytes and the first
// position's bits 7-8 (the "first_base" component folded into the control
// flags).
func encodePositionBlob(positions []uint32) (blob []byte, firstBase byte) {
	first := positions[0]
	firstBase = byte((first & FirstPositionBase) >> 7)

	var tmp [varint.MaxLen32]byte
	n := varint.Encode(&tmp, first&^FirstPositionBase)
	blob = append(blob, tmp[:n]...)
	prev := first
	for _, p := range positions[1:] {
		delta := p - prev
		n := varint.Encode(&tmp, delta)
		blob = append(blob, tmp[:n]...)
		prev = p
	}
	return blob, firstBase
}

// decodePositionBlob reverses encodePositionBlob given the blob bytes and
// the first_base bits extracted from the control flags. It decodes as many
// positions as the blob holds, since the blob is delimited by its byte
// length alone.
func decodePositionBlob(blob []byte, firstBase byte) ([]uint32, error) {
	if len(blob) < 1 {
		return nil, errs.ErrMalformed
	}
	v, n, err := varint.Decode(blob)
	if err != nil {
		return nil, err
	}
	first := v | (uint32(firstBase) << 7)
	positions := []uint32{first}

	p := blob[n:]
	prev := first
	for len(p) > 0 {
		delta, n, err := varint.Decode(p)
		if err != nil {
			return nil, err
		}
		prev += delta
		positions = append(positions, prev)
		p = p[n:]
	}
	return positions, nil
}

// encodeBody appends the flags byte (without the POS/VAL bits, which the
// caller ORs into the returned control-flags value) and any trailing bytes
// for one document's occurrences. occ must be sorted by Position and share
// a single DocID.
func encodeBody(buf []byte, occ []Occurrence) (flags byte, out []byte) {
	if len(occ) == 1 && occ[0].Position == 0 {
		flags, out = appendValueOpcode(buf, 0, occ[0].Value)
		return flags, out
	}

	positions := occ
	flags = FlagPos
	if occ[0].Position == 0 && occ[0].Value != 0 {
		flags |= FlagValWithPos
		buf = appendPosValue(buf, occ[0].Value)
		positions = occ[1:]
	}

	vals := make([]uint32, len(positions))
	for i, o := range positions {
		vals[i] = o.Position
	}
	blob, firstBase := encodePositionBlob(vals)
	flags |= firstBase

	switch {
	case len(blob) <= 3:
		flags |= byte(len(blob)-1) << 2
	default:
		flags |= ExtendedPosLength << 2
		var tmp [varint.MaxLen32]byte
		n := varint.Encode(&tmp, uint32(len(blob)-4))
		buf = append(buf, tmp[:n]...)
	}
	buf = append(buf, blob...)
	return flags, buf
}

// decodeBody parses one inner Record's body given its flags byte and the
// bytes following the control word. It returns the Record and the number
// of bytes consumed from p.
func decodeBody(flags byte, p []byte) (Record, int, error) {
	if flags&FlagPos == 0 {
		value, n, err := readValueOpcode(flags, p)
		if err != nil {
			return Record{}, 0, err
		}
		return Record{HasValue: value != 0, Value: value}, n, nil
	}

	total := 0
	var rec Record
	if flags&FlagValWithPos != 0 {
		value, n, err := readPosValue(p)
		if err != nil {
			return Record{}, 0, err
		}
		rec.HasValue = true
		rec.Value = value
		p = p[n:]
		total += n
	}

	lengthCode := (flags >> 2) & 0x3
	firstBase := flags & 0x3

	var blobLen int
	if lengthCode == ExtendedPosLength {
		v, n, err := varint.Decode(p)
		if err != nil {
			return Record{}, 0, err
		}
		p = p[n:]
		total += n
		blobLen = int(v) + 4
	} else {
		blobLen = int(lengthCode) + 1
	}

	if len(p) < blobLen {
		return Record{}, 0, errs.ErrMalformed
	}
	positions, err := decodePositionBlob(p[:blobLen], firstBase)
	if err != nil {
		return Record{}, 0, err
	}
	rec.Positions = positions
	total += blobLen

	return rec, total, nil
}
