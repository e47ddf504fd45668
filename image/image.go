// Package image loads a multi-document index built by indexbuilder: the
// six on-disk files are read fully into memory once, a doc_id→global
// header pointer table and a sorted term-pointer array are built for O(1)
// and O(log n) lookups respectively, and cursors are handed out over the
// term-data blob. Grounded on original_source/src/sil_search_image.c's
// load-then-binary-search design.
package image

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"sort"

	"github.com/knode-ai-open-source/search-index-library/cursor"
	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/internal/checksum"
	"github.com/knode-ai-open-source/search-index-library/section"
)

type termEntry struct {
	term   string
	offset uint64
}

// Image is a loaded, read-only view over one index.
type Image struct {
	termIdx    []byte
	termData   []byte
	gbl        []byte
	embeddings []byte
	content    []byte

	terms              []termEntry
	docToGbl           map[uint32]gblPointer
	contentLenByOffset map[uint64]uint32

	totalTerms            int
	totalDocuments        int
	totalTermsInDocuments int
	maxID                 uint32
}

type gblPointer struct {
	offset int
	length int
}

// Open loads all six files named with base as a path prefix and verifies
// the stats.txt checksum line against the five binary files.
func Open(base string) (*Image, error) {
	termIdx, err := os.ReadFile(base + "_term_idx")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}
	termData, err := os.ReadFile(base + "_term_data")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}
	gbl, err := os.ReadFile(base + "_gbl")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}
	embeddings, err := os.ReadFile(base + "_embeddings")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}
	content, err := os.ReadFile(base + "_content")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}
	stats, err := os.ReadFile(base + "_stats.txt")
	if err != nil {
		return nil, fmt.Errorf("image: %w: %v", errs.ErrNotFound, err)
	}

	totalTerms, totalDocuments, totalTermsInDocuments, maxID, wantSum, err := parseStats(stats)
	if err != nil {
		return nil, err
	}

	sum := checksum.New()
	sum.Write(termIdx)
	sum.Write(termData)
	sum.Write(gbl)
	sum.Write(embeddings)
	sum.Write(content)
	if wantSum != 0 && sum.Sum64() != wantSum {
		return nil, fmt.Errorf("image: %w: checksum mismatch", errs.ErrMalformed)
	}

	img := &Image{
		termIdx:               termIdx,
		termData:              termData,
		gbl:                   gbl,
		embeddings:            embeddings,
		content:               content,
		totalTerms:            totalTerms,
		totalDocuments:        totalDocuments,
		totalTermsInDocuments: totalTermsInDocuments,
		maxID:                 maxID,
	}

	if err := img.buildTermIndex(); err != nil {
		return nil, err
	}
	if err := img.buildGlobalIndex(); err != nil {
		return nil, err
	}
	return img, nil
}

func parseStats(data []byte) (totalTerms, totalDocuments, totalTermsInDocuments int, maxID uint32, wantSum uint64, err error) {
	lines := bytes.SplitN(data, []byte("\n"), 3)
	if len(lines) < 1 {
		return 0, 0, 0, 0, 0, errs.ErrMalformed
	}
	var n int
	_, scanErr := fmt.Sscanf(string(lines[0]), "%d %d %d %d", &totalTerms, &totalDocuments, &totalTermsInDocuments, &n)
	if scanErr != nil {
		return 0, 0, 0, 0, 0, fmt.Errorf("image: %w: %v", errs.ErrMalformed, scanErr)
	}
	maxID = uint32(n)
	if len(lines) >= 2 {
		fmt.Sscanf(string(bytes.TrimSpace(lines[1])), "%d", &wantSum)
	}
	return totalTerms, totalDocuments, totalTermsInDocuments, maxID, wantSum, nil
}

func (img *Image) buildTermIndex() error {
	p := img.termIdx
	for len(p) > 0 {
		nul := bytes.IndexByte(p, 0)
		if nul < 0 || len(p) < nul+1+8 {
			return errs.ErrMalformed
		}
		term := string(p[:nul])
		offset := binary.LittleEndian.Uint64(p[nul+1 : nul+9])
		img.terms = append(img.terms, termEntry{term: term, offset: offset})
		p = p[nul+9:]
	}
	return nil
}

func (img *Image) buildGlobalIndex() error {
	img.docToGbl = make(map[uint32]gblPointer)
	img.contentLenByOffset = make(map[uint64]uint32)
	p := img.gbl
	base := 0
	for len(p) > 0 {
		if len(p) < 4 {
			return errs.ErrMalformed
		}
		mainLen := binary.LittleEndian.Uint32(p[0:4])
		if uint64(len(p)) < 4+uint64(mainLen) {
			return errs.ErrMalformed
		}
		rec := p[4 : 4+mainLen]
		header, err := section.ParseGlobalHeader(rec)
		if err != nil {
			return err
		}
		if len(rec) < section.GlobalHeaderSize+4 {
			return errs.ErrMalformed
		}
		dataLen := binary.LittleEndian.Uint32(rec[section.GlobalHeaderSize : section.GlobalHeaderSize+4])
		tail := rec[section.GlobalHeaderSize+4:]
		if uint64(len(tail)) < uint64(dataLen)+4 {
			return errs.ErrMalformed
		}
		if dataLen < 4 {
			return errs.ErrMalformed
		}
		docID := binary.LittleEndian.Uint32(tail[:4])
		contentLen := binary.LittleEndian.Uint32(tail[dataLen : dataLen+4])

		img.docToGbl[docID] = gblPointer{offset: base + 4, length: int(mainLen)}
		img.contentLenByOffset[header.ContentOffset] = contentLen

		p = p[4+mainLen:]
		base += 4 + int(mainLen)
	}
	return nil
}

// TotalTerms, TotalDocuments, TotalTermsInDocuments, and MaxID report the
// corpus-level totals recorded in stats.txt.
func (img *Image) TotalTerms() int            { return img.totalTerms }
func (img *Image) TotalDocuments() int        { return img.totalDocuments }
func (img *Image) TotalTermsInDocuments() int { return img.totalTermsInDocuments }
func (img *Image) MaxID() uint32              { return img.maxID }

// Global looks up document id, returning its GlobalHeader and user_data
// (the opaque blob the builder passed to Global), or ok=false if id has no
// document.
func (img *Image) Global(id uint32) (section.GlobalHeader, []byte, bool, error) {
	ptr, ok := img.docToGbl[id]
	if !ok {
		return section.GlobalHeader{}, nil, false, nil
	}
	rec := img.gbl[ptr.offset : ptr.offset+ptr.length]
	header, err := section.ParseGlobalHeader(rec)
	if err != nil {
		return section.GlobalHeader{}, nil, false, err
	}
	if len(rec) < section.GlobalHeaderSize+4 {
		return section.GlobalHeader{}, nil, false, errs.ErrMalformed
	}
	dataLen := binary.LittleEndian.Uint32(rec[section.GlobalHeaderSize : section.GlobalHeaderSize+4])
	tail := rec[section.GlobalHeaderSize+4:]
	if uint64(len(tail)) < uint64(dataLen) {
		return section.GlobalHeader{}, nil, false, errs.ErrMalformed
	}
	userData := tail[:dataLen]
	return header, userData, true, nil
}

// Embeddings returns the embedding block (num_embeddings*512 bytes)
// referenced by header, sliced out of the loaded *_embeddings blob.
func (img *Image) Embeddings(header section.GlobalHeader) []byte {
	start := header.EmbeddingsOffset * 512
	length := uint64(header.NumEmbeddings) * 512
	return img.embeddings[start : start+length]
}

// Content returns the raw content bytes referenced by header, sliced out
// of the loaded *_content blob.
func (img *Image) Content(header section.GlobalHeader) []byte {
	start := header.ContentOffset
	length := uint64(img.contentLenByOffset[header.ContentOffset])
	return img.content[start : start+length]
}

// Term looks up s in the sorted term dictionary via binary search. If s is
// absent and ends in '*', the lookup retries with the trailing '*'
// stripped; the stripped term must match exactly, no prefix expansion is
// done. Returns a Cursor over the term's
// postings and its TermHeader, or ok=false if no match exists either way.
func (img *Image) Term(s string) (*cursor.Cursor, section.TermHeader, bool, error) {
	c, h, ok, err := img.lookupTerm(s)
	if err != nil || ok {
		return c, h, ok, err
	}
	if len(s) > 0 && s[len(s)-1] == '*' {
		return img.lookupTerm(s[:len(s)-1])
	}
	return nil, section.TermHeader{}, false, nil
}

func (img *Image) lookupTerm(s string) (*cursor.Cursor, section.TermHeader, bool, error) {
	i := sort.Search(len(img.terms), func(i int) bool { return img.terms[i].term >= s })
	if i >= len(img.terms) || img.terms[i].term != s {
		return nil, section.TermHeader{}, false, nil
	}
	offset := img.terms[i].offset
	if offset+4 > uint64(len(img.termData)) {
		return nil, section.TermHeader{}, false, errs.ErrMalformed
	}
	recordLen := binary.LittleEndian.Uint32(img.termData[offset : offset+4])
	p := img.termData[offset+4:]
	if uint64(len(p)) < uint64(recordLen) {
		return nil, section.TermHeader{}, false, errs.ErrMalformed
	}
	p = p[:recordLen]

	header, err := section.ParseTermHeader(p)
	if err != nil {
		return nil, section.TermHeader{}, false, err
	}
	blob := p[section.TermHeaderSize:]
	return cursor.New(blob, header.MaxPositions), header, true, nil
}

// TermF is an alias for Term, matching the original library's pair of
// entry points (the non-f and f-suffixed variants differ only in argument
// packaging upstream of this layer); here a single signature covers both.
func (img *Image) TermF(s string) (*cursor.Cursor, section.TermHeader, bool, error) {
	return img.Term(s)
}
