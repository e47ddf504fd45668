package postings

// Bit layout of an inner record's 6-bit flags field (spec.md §4.2), mirrored
// from original_source/include/search-index-library/impl/sil_constants.h.
const (
	// SmallIDMask extracts the 10-bit small-id from a multi-document control word.
	SmallIDMask = 0x3FF
	// SmallIDShift is the number of flag bits below the small-id in a control word.
	SmallIDShift = 6
	// FlagsMask is the 6-bit flags mask within a control byte/word.
	FlagsMask = 0x3F

	// FlagPos marks that per-occurrence positions are present (bit 5).
	FlagPos = 0x20
	// FlagValWithPos marks that a value accompanies positional data (bit 4).
	FlagValWithPos = 0x10

	// Value opcodes used when FlagPos is clear (bits 0..4 as a 5-bit field).
	Value1Byte = 0x1D
	Value2Byte = 0x1E
	Value4Byte = 0x1F
	// ValueLiteralMax is the largest value that can be stored literally in
	// the opcode bits themselves.
	ValueLiteralMax = Value1Byte - 1

	// Position-scoped value length markers (first byte of the value blob
	// that follows the control word when FlagValWithPos is set).
	PosValue2Byte = 0xFE
	PosValue4Byte = 0xFF

	// PosLengthMask is the low 4 bits of flags once FlagPos is set: bits 0-1
	// hold the high two bits of the first position, bits 2-3 hold the
	// positions-blob length class.
	PosLengthMask = 0xF
	// ExtendedPosLength is the length-class value (after shifting out the
	// first-base bits) signaling an extended varint-encoded blob length.
	ExtendedPosLength = 0x3

	// FirstPositionBase masks bits 7-8 of a real position value — the bits
	// cheaply folded into the control flags for the first positional delta.
	FirstPositionBase = 0x180

	// Group length-prefix markers (§4.2 "Group length prefix").
	Group2ByteLength = 0xFE
	Group4ByteLength = 0xFF
)
