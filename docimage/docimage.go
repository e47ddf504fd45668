// Package docimage reads a single-document image produced by docbuilder:
// the term block, user data, content, and embeddings packed by
// docbuilder.Builder.Global. It also supplies the batch-query layer
// (MatchSet, UpdateFrequency, AddSetFrequency) that SPEC_FULL.md §3 adds on
// top of spec.md's single-term lookup, grounded on
// original_source/src/sil_document_image.c's term-frequency accumulation
// helpers used by the scoring pipeline.
package docimage

import (
	"encoding/binary"
	"sort"

	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/postings"
	"github.com/knode-ai-open-source/search-index-library/section"
)

// Image is a read-only view over one document image buffer.
type Image struct {
	header     section.DocumentHeader
	userData   []byte
	termBlock  []byte
	content    []byte
	embeddings []byte

	termOffsets map[string]int // offset of the record immediately after the NUL within termBlock
}

// Open parses buf (as produced by docbuilder.Builder.Global) into an Image.
func Open(buf []byte) (*Image, error) {
	if len(buf) < 4 {
		return nil, errs.ErrMalformed
	}
	totalLen := binary.LittleEndian.Uint32(buf[0:4])
	body := buf[4:]
	if uint64(len(body)) < uint64(totalLen) {
		return nil, errs.ErrMalformed
	}
	body = body[:totalLen]

	header, err := section.ParseDocumentHeader(body)
	if err != nil {
		return nil, err
	}
	p := body[section.DocumentHeaderSize:]

	if uint64(len(p)) < uint64(header.DataLength)+uint64(header.TermLength)+uint64(header.ContentLength) {
		return nil, errs.ErrMalformed
	}
	userData := p[:header.DataLength]
	p = p[header.DataLength:]
	termBlock := p[:header.TermLength]
	p = p[header.TermLength:]
	content := p[:header.ContentLength]
	p = p[header.ContentLength:]

	embeddingsLen := uint64(header.NumEmbeddings) * 512
	if uint64(len(p)) < embeddingsLen {
		return nil, errs.ErrMalformed
	}
	embeddings := p[uint64(len(p))-embeddingsLen:]

	img := &Image{
		header:      header,
		userData:    userData,
		termBlock:   termBlock,
		content:     content,
		embeddings:  embeddings,
		termOffsets: make(map[string]int),
	}
	if err := img.indexTerms(); err != nil {
		return nil, err
	}
	return img, nil
}

func (img *Image) indexTerms() error {
	p := img.termBlock
	base := 0
	for len(p) > 0 {
		nul := indexByte(p, 0)
		if nul < 0 {
			return errs.ErrMalformed
		}
		term := string(p[:nul])
		recStart := base + nul + 1
		p = p[nul+1:]

		_, n, err := postings.DecodeSingleDocRecord(p)
		if err != nil {
			return err
		}
		img.termOffsets[term] = recStart
		p = p[n:]
		base = recStart + n
	}
	return nil
}

func indexByte(p []byte, b byte) int {
	for i, c := range p {
		if c == b {
			return i
		}
	}
	return -1
}

// DocumentLengthForBM25 returns the document's BM25 token length: the
// count of term_position occurrences recorded at build time.
func (img *Image) DocumentLengthForBM25() uint32 { return img.header.DocumentLengthForBM25 }

// NumTerms returns the number of distinct terms the document carries.
func (img *Image) NumTerms() uint32 { return img.header.NumTerms }

// UserData returns the document's opaque user-data block.
func (img *Image) UserData() []byte { return img.userData }

// Content returns the document's raw content block.
func (img *Image) Content() []byte { return img.content }

// Embeddings returns the document's embedding block, num_embeddings*512
// bytes.
func (img *Image) Embeddings() []byte { return img.embeddings }

// Term looks up s (folded through the same lowercasing the builder applies)
// and reports whether it occurs, along with its decoded Record.
func (img *Image) Term(s string) (postings.Record, bool, error) {
	s = foldLower(s)
	off, ok := img.termOffsets[s]
	if !ok {
		return postings.Record{}, false, nil
	}
	rec, _, err := postings.DecodeSingleDocRecord(img.termBlock[off:])
	if err != nil {
		return postings.Record{}, false, err
	}
	return rec, true, nil
}

// Terms returns every distinct term the document carries, in sorted order.
func (img *Image) Terms() []string {
	out := make([]string, 0, len(img.termOffsets))
	for t := range img.termOffsets {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
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

// MatchSet reports, for each query term, whether it occurs in the document
// and its decoded Record — a batch form of repeated Term calls. Terms that
// are absent, or whose record fails to decode, are left out of the map.
func (img *Image) MatchSet(terms []string) map[string]postings.Record {
	out := make(map[string]postings.Record, len(terms))
	for _, t := range terms {
		rec, ok, err := img.Term(t)
		if err != nil || !ok {
			continue
		}
		out[t] = rec
	}
	return out
}

// UpdateFrequency adds the term-frequency (occurrence count) of term to an
// accumulator map, creating the entry if absent. It is the per-document
// step of building a corpus-wide term-frequency table incrementally; a
// term with no positions counts as one occurrence.
func (img *Image) UpdateFrequency(term string, freq map[string]uint32) {
	rec, ok, err := img.Term(term)
	if err != nil || !ok {
		return
	}
	n := uint32(len(rec.Positions))
	if n == 0 {
		n = 1
	}
	freq[term] += n
}

// AddSetFrequency runs UpdateFrequency over every term in terms.
func (img *Image) AddSetFrequency(terms []string, freq map[string]uint32) {
	for _, t := range terms {
		img.UpdateFrequency(t, freq)
	}
}
