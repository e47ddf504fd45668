// Package varint implements the 7-bits-per-byte little-endian variable-length
// unsigned integer codec used for posting-list group id deltas, position
// deltas, extended position-blob lengths, and the external sort's run
// framing. Group length prefixes use their own marker-byte scheme
// (postings.AppendGroupLength), not this codec.
//
// Encoding emits the low 7 bits of the value per byte, setting the high bit
// of every byte except the last to signal continuation. 32-bit values take
// at most 5 bytes. There is no sign handling; all encodings are unsigned.
package varint

import "github.com/knode-ai-open-source/search-index-library/errs"

// MaxLen32 is the maximum number of bytes needed to encode a uint32.
const MaxLen32 = 5

// Append encodes v and appends its bytes to buf, returning the grown slice.
func Append(buf []byte, v uint32) []byte {
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			b |= 0x80
			buf = append(buf, b)

			continue
		}
		buf = append(buf, b)

		return buf
	}
}

// Encode writes v into the fixed-size scratch array tmp and returns the
// number of bytes written (1..5).
func Encode(tmp *[MaxLen32]byte, v uint32) int {
	n := 0
	for {
		b := byte(v & 0x7F)
		v >>= 7
		if v != 0 {
			tmp[n] = b | 0x80
			n++

			continue
		}
		tmp[n] = b
		n++

		return n
	}
}

// Decode reads a varint from the front of p, returning the decoded value and
// the number of bytes consumed. It returns errs.ErrMalformed if p runs out
// before a terminating byte (high bit clear) is found within 5 bytes.
func Decode(p []byte) (uint32, int, error) {
	var v uint32
	for i := 0; i < MaxLen32; i++ {
		if i >= len(p) {
			return 0, 0, errs.ErrMalformed
		}
		b := p[i]
		v |= uint32(b&0x7F) << (7 * uint(i))
		if b&0x80 == 0 {
			return v, i + 1, nil
		}
	}

	return 0, 0, errs.ErrMalformed
}

// Skip returns the number of bytes occupied by the varint at the front of p,
// without materializing the decoded value.
func Skip(p []byte) (int, error) {
	for i := 0; i < MaxLen32 && i < len(p); i++ {
		if p[i]&0x80 == 0 {
			return i + 1, nil
		}
	}

	return 0, errs.ErrMalformed
}
