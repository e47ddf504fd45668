// Package docbuilder builds a single, self-contained document image: one
// buffer holding a document's term postings, user data, raw content, and
// embedding block, with no external sort or side files (spec.md §4.3).
// It is grounded on original_source/src/sil_document_builder.c's
// compress_term/sil_document_builder_global shape, adapted to the
// postings package's inner-record codec instead of hand-rolled C bit
// twiddling.
package docbuilder

import (
	"encoding/binary"
	"sort"

	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/postings"
	"github.com/knode-ai-open-source/search-index-library/section"
)

type pendingOccurrence struct {
	term     string
	position uint32
	value    uint32
}

// Builder accumulates term occurrences for exactly one document between
// construction and a call to Global, mirroring the original library's
// "build state created empty, destroyed after producing output" lifecycle.
type Builder struct {
	pending        []pendingOccurrence
	documentLength uint32
}

// New creates an empty single-document Builder.
func New() *Builder {
	return &Builder{}
}

func foldLower(s string) string {
	b := []byte(s)
	changed := false
	for i, c := range b {
		if c >= 'A' && c <= 'Z' {
			b[i] = c + ('a' - 'A')
			changed = true
		}
	}
	if !changed {
		return s
	}
	return string(b)
}

// Term adds a doc-level occurrence of s: no position, no value.
func (b *Builder) Term(s string) {
	b.pending = append(b.pending, pendingOccurrence{term: foldLower(s)})
}

// TermPosition adds an occurrence of s at position p and increments the
// document's BM25 token length.
func (b *Builder) TermPosition(p uint32, s string) {
	b.pending = append(b.pending, pendingOccurrence{term: foldLower(s), position: p})
	b.documentLength++
}

// TermValue adds a doc-level occurrence of s carrying value v.
func (b *Builder) TermValue(v uint32, s string) {
	b.pending = append(b.pending, pendingOccurrence{term: foldLower(s), value: v})
}

// WTerm, WTermPosition, and WTermValue are the wildcard-expansion entry
// points. The original library gates expansion behind a predicate that
// always returns false, making these identical to the non-W variants; we
// preserve that dead-code shape rather than synthesizing an expansion
// behavior (spec.md §9).
func (b *Builder) WTerm(s string)                  { b.Term(s) }
func (b *Builder) WTermPosition(p uint32, s string) { b.TermPosition(p, s) }
func (b *Builder) WTermValue(v uint32, s string)    { b.TermValue(v, s) }

const alignment = 64

func padTo(n int) int {
	rem := n % alignment
	if rem == 0 {
		return 0
	}
	return alignment - rem
}

// Global finalizes the document: sorts pending occurrences by (term,
// position), groups them by term, encodes each term's single-doc inner
// record, and emits the complete self-delimiting buffer described in
// spec.md §4.3. embeddings must hold exactly numEmbeddings*512 bytes.
func (b *Builder) Global(embeddings []byte, numEmbeddings uint32, content []byte, userData []byte) ([]byte, error) {
	if uint64(len(embeddings)) != uint64(numEmbeddings)*512 {
		return nil, errs.ErrMalformed
	}

	sort.SliceStable(b.pending, func(i, j int) bool {
		if b.pending[i].term != b.pending[j].term {
			return b.pending[i].term < b.pending[j].term
		}
		return b.pending[i].position < b.pending[j].position
	})

	terms := make([]string, 0)
	byTerm := make(map[string][]postings.Occurrence)
	for _, p := range b.pending {
		if _, ok := byTerm[p.term]; !ok {
			terms = append(terms, p.term)
		}
		byTerm[p.term] = append(byTerm[p.term], postings.Occurrence{Position: p.position, Value: p.value})
	}
	sort.Strings(terms)

	var termBlock []byte
	for _, term := range terms {
		termBlock = append(termBlock, []byte(term)...)
		termBlock = append(termBlock, 0)
		termBlock = postings.AppendSingleDocRecord(termBlock, byTerm[term])
	}

	header := section.DocumentHeader{
		DocumentLengthForBM25: b.documentLength,
		TermLength:            uint32(len(termBlock)),
		DataLength:            uint32(len(userData)),
		ContentLength:         uint32(len(content)),
		NumEmbeddings:         numEmbeddings,
		NumTerms:              uint32(len(terms)),
	}

	headerBytes := header.Bytes()
	bodyLen := len(headerBytes) + len(userData) + len(termBlock) + len(content)
	pad := padTo(bodyLen)

	out := make([]byte, 0, 4+bodyLen+pad+len(embeddings))
	var totalLen [4]byte
	binary.LittleEndian.PutUint32(totalLen[:], uint32(bodyLen+pad+len(embeddings)))
	out = append(out, totalLen[:]...)
	out = append(out, headerBytes...)
	out = append(out, userData...)
	out = append(out, termBlock...)
	out = append(out, content...)
	out = append(out, make([]byte, pad)...)
	out = append(out, embeddings...)

	return out, nil
}
