// Package cursor exposes a term's hierarchical posting-list blob (as
// produced by postings.EncodeTerm) as a forward-only iterator: advance to
// the next document id, or seek ahead to the least id ≥ some target,
// without materializing the whole posting list up front (spec.md §4.5).
//
// The three nesting levels of the wire format (top-group, mid-group,
// inner record) are modeled as explicit sub-iterator state rather than raw
// pointer pairs, per spec.md §9's tagged-variant guidance: topRemaining
// tracks the remaining top-group blob, midRemaining tracks the remaining
// body of the current top group, and the current inner record's decode is
// folded directly into the Cursor's exposed fields.
package cursor

import (
	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/internal/pool"
	"github.com/knode-ai-open-source/search-index-library/postings"
	"github.com/knode-ai-open-source/search-index-library/varint"
)

// Cursor is a single-threaded forward iterator over one term's posting
// list. The zero value is not usable; construct with New.
type Cursor struct {
	topRemaining []byte
	topID        uint32
	haveTop      bool

	midRemaining []byte
	midID        uint32
	haveMid      bool

	valid    bool
	docID    uint32
	hasValue bool
	value    uint32

	positions    []uint32
	releasePos   func()
	maxPositions int
}

// New creates a Cursor over blob (a term's complete posting-list bytes).
// maxPositions should be the term's max_positions header field; it sizes
// the cursor's scratch position buffer so Positions never reallocates
// across Advance calls.
func New(blob []byte, maxPositions uint32) *Cursor {
	c := &Cursor{topRemaining: blob, maxPositions: int(maxPositions) + 1}
	return c
}

// Close releases the cursor's pooled scratch buffer. Callers that drive a
// cursor to exhaustion via Advance need not call Close, but should call it
// if abandoning a cursor early.
func (c *Cursor) Close() {
	if c.releasePos != nil {
		c.releasePos()
		c.releasePos = nil
		c.positions = nil
	}
}

// DocID returns the document id of the current record. Valid only after
// Advance or AdvanceTo has returned true.
func (c *Cursor) DocID() uint32 { return c.docID }

// HasValue reports whether the current record carries a value.
func (c *Cursor) HasValue() bool { return c.hasValue }

// Value returns the current record's value (0 if HasValue is false).
func (c *Cursor) Value() uint32 { return c.value }

// Positions returns the current record's decoded positions, backed by the
// cursor's reusable scratch buffer: the slice is only valid until the next
// Advance/AdvanceTo call.
func (c *Cursor) Positions() []uint32 { return c.positions }

// Advance decodes the next record in ascending doc-id order and reports
// whether one was found.
func (c *Cursor) Advance() bool {
	for {
		if len(c.midRemaining) > 0 {
			ok, err := c.decodeNextInner()
			if err != nil {
				c.valid = false
				return false
			}
			if ok {
				return true
			}
			continue
		}
		if !c.advanceGroup() {
			c.valid = false
			return false
		}
	}
}

// advanceGroup decodes the next top-group header from topRemaining,
// populating midRemaining and resetting per-top-group mid state. Returns
// false once topRemaining is exhausted.
func (c *Cursor) advanceGroup() bool {
	if len(c.topRemaining) == 0 {
		return false
	}

	delta, n, err := varint.Decode(c.topRemaining)
	if err != nil {
		return false
	}
	c.topRemaining = c.topRemaining[n:]
	if c.haveTop {
		c.topID += delta
	} else {
		c.topID = delta
		c.haveTop = true
	}

	groupLen, n, err := postings.ReadGroupLength(c.topRemaining)
	if err != nil {
		return false
	}
	c.topRemaining = c.topRemaining[n:]
	if uint32(len(c.topRemaining)) < groupLen {
		return false
	}
	c.midRemaining = c.topRemaining[:groupLen]
	c.topRemaining = c.topRemaining[groupLen:]
	c.haveMid = false
	return true
}

// decodeNextInner decodes one (mid-delta, inner-record) pair from the
// front of midRemaining.
func (c *Cursor) decodeNextInner() (bool, error) {
	if len(c.midRemaining) == 0 {
		return false, nil
	}

	mdelta, n, err := varint.Decode(c.midRemaining)
	if err != nil {
		return false, err
	}
	c.midRemaining = c.midRemaining[n:]
	if c.haveMid {
		c.midID += mdelta
	} else {
		c.midID = mdelta
		c.haveMid = true
	}

	small, rec, n, err := postings.DecodeMultiDocRecord(c.midRemaining)
	if err != nil {
		return false, err
	}
	c.midRemaining = c.midRemaining[n:]

	c.docID = postings.JoinDocID(c.topID, c.midID, small)
	c.hasValue = rec.HasValue
	c.value = rec.Value
	c.setPositions(rec.Positions)
	c.valid = true
	return true, nil
}

func (c *Cursor) setPositions(decoded []uint32) {
	if c.releasePos == nil {
		c.positions, c.releasePos = pool.GetUint32Slice(c.maxPositions)
	}
	n := len(decoded)
	if n > cap(c.positions) {
		n = cap(c.positions)
	}
	scratch := c.positions[:cap(c.positions)]
	copy(scratch, decoded[:n])
	c.positions = scratch[:n]
}

// AdvanceTo seeks the cursor to the least doc id ≥ target. If the cursor
// is already positioned at an id ≥ target, it is a no-op returning true.
// Returns false once the posting list is exhausted before reaching target.
func (c *Cursor) AdvanceTo(target uint32) bool {
	if c.valid && c.docID >= target {
		return true
	}
	for c.Advance() {
		if c.docID >= target {
			return true
		}
	}
	return false
}

// ErrExhausted is returned by callers that attempt to read a cursor's
// fields before any successful Advance/AdvanceTo call.
var ErrExhausted = errs.ErrNotFound
