// Package indexbuilder builds a multi-document index: the same term
// operations as docbuilder, plus global() to start/finish each document,
// externally sorted and coalesced into the six on-disk files described in
// spec.md §4.4 and §6. It is grounded on
// original_source/src/sil_search_builder.c's two-external-sort design
// (one stream for term occurrences, one for per-document global records),
// adapted to use the project's own internal/extsort collaborator instead
// of hand-rolled tmp-file merge code.
package indexbuilder

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/knode-ai-open-source/search-index-library/compress"
	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/internal/checksum"
	"github.com/knode-ai-open-source/search-index-library/internal/extsort"
	"github.com/knode-ai-open-source/search-index-library/postings"
	"github.com/knode-ai-open-source/search-index-library/section"
)

// DefaultRunSize is the number of buffered entries an external sort holds
// in memory before spilling a run to disk.
const DefaultRunSize = 1 << 16

type pendingGlobal struct {
	docID         uint32
	numEmbeddings uint32
	embeddings    []byte
	content       []byte
	userData      []byte
}

// Builder accumulates term occurrences and per-document global records
// for an entire corpus, draining both into the six-file layout on Destroy.
type Builder struct {
	tmpDir  string
	runSize int

	terms   *extsort.Sorter
	globals *extsort.Sorter

	currentDocID   uint32
	documentLength uint32
	havePending    bool
	pending        pendingGlobal
}

// New creates a Builder that spills external-sort runs under tmpDir,
// compressed with codec (nil selects no compression).
func New(tmpDir string, codec compress.Codec, runSize int) *Builder {
	if runSize <= 0 {
		runSize = DefaultRunSize
	}
	return &Builder{
		tmpDir:  tmpDir,
		runSize: runSize,
		terms:   extsort.New(tmpDir, codec, runSize),
		globals: extsort.New(tmpDir, codec, runSize),
	}
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

// termKey builds the external-sort key that orders entries by
// term ASC, doc_id ASC, position ASC: a NUL-terminated term followed by
// big-endian doc_id and position so byte-comparison matches numeric order.
func termKey(term string, docID, position uint32) []byte {
	key := make([]byte, 0, len(term)+9)
	key = append(key, term...)
	key = append(key, 0)
	var be [8]byte
	binary.BigEndian.PutUint32(be[0:4], docID)
	binary.BigEndian.PutUint32(be[4:8], position)
	return append(key, be[:]...)
}

func (b *Builder) addTerm(s string, position, value uint32) error {
	key := termKey(foldLower(s), b.currentDocID, position)
	var val [4]byte
	binary.LittleEndian.PutUint32(val[:], value)
	return b.terms.Add(key, val[:])
}

// Term adds a doc-level occurrence of s to the current document.
func (b *Builder) Term(s string) error { return b.addTerm(s, 0, 0) }

// TermPosition adds an occurrence of s at position p to the current
// document and increments its BM25 token length.
func (b *Builder) TermPosition(p uint32, s string) error {
	if err := b.addTerm(s, p, 0); err != nil {
		return err
	}
	b.documentLength++
	return nil
}

// TermValue adds a doc-level occurrence of s carrying value v to the
// current document.
func (b *Builder) TermValue(v uint32, s string) error { return b.addTerm(s, 0, v) }

// WTerm, WTermPosition, and WTermValue mirror docbuilder's dead
// wildcard-expansion hook (spec.md §9): identical to the non-W variants.
func (b *Builder) WTerm(s string) error                  { return b.Term(s) }
func (b *Builder) WTermPosition(p uint32, s string) error { return b.TermPosition(p, s) }
func (b *Builder) WTermValue(v uint32, s string) error    { return b.TermValue(v, s) }

// Global finalizes the current document (if any) using the accumulated
// document_length, then starts a new document identified by the first 4
// bytes of userData. embeddings must hold exactly numEmbeddings*512 bytes.
func (b *Builder) Global(embeddings []byte, numEmbeddings uint32, content []byte, userData []byte) error {
	if uint64(len(embeddings)) != uint64(numEmbeddings)*512 {
		return errs.ErrMalformed
	}
	if len(userData) < 4 {
		return errs.ErrMalformed
	}
	if numEmbeddings > section.MaxEmbeddingsOffset {
		return fmt.Errorf("%w: num_embeddings %d", errs.ErrEmbeddingCountTooLarge, numEmbeddings)
	}
	if id := binary.LittleEndian.Uint32(userData[:4]); id > postings.MaxDocID {
		return fmt.Errorf("%w: doc_id %d", errs.ErrDocIDTooLarge, id)
	}

	if b.havePending {
		if err := b.flushPending(); err != nil {
			return err
		}
	}

	b.currentDocID = binary.LittleEndian.Uint32(userData[:4])
	b.documentLength = 0
	b.pending = pendingGlobal{
		docID:         b.currentDocID,
		numEmbeddings: numEmbeddings,
		embeddings:    append([]byte(nil), embeddings...),
		content:       append([]byte(nil), content...),
		userData:      append([]byte(nil), userData...),
	}
	b.havePending = true
	return nil
}

func (b *Builder) flushPending() error {
	key := make([]byte, 4)
	binary.BigEndian.PutUint32(key, b.pending.docID)
	val := encodeGlobalValue(b.documentLength, b.pending.numEmbeddings, b.pending.content, b.pending.userData, b.pending.embeddings)
	return b.globals.Add(key, val)
}

func encodeGlobalValue(documentLength, numEmbeddings uint32, content, userData, embeddings []byte) []byte {
	var buf []byte
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], documentLength)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], numEmbeddings)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(content)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, content...)
	binary.LittleEndian.PutUint32(tmp[:], uint32(len(userData)))
	buf = append(buf, tmp[:]...)
	buf = append(buf, userData...)
	buf = append(buf, embeddings...)
	return buf
}

type decodedGlobal struct {
	documentLength uint32
	numEmbeddings  uint32
	content        []byte
	userData       []byte
	embeddings     []byte
}

func decodeGlobalValue(buf []byte) (decodedGlobal, error) {
	if len(buf) < 12 {
		return decodedGlobal{}, errs.ErrMalformed
	}
	documentLength := binary.LittleEndian.Uint32(buf[0:4])
	numEmbeddings := binary.LittleEndian.Uint32(buf[4:8])
	contentLen := binary.LittleEndian.Uint32(buf[8:12])
	p := buf[12:]
	if uint64(len(p)) < uint64(contentLen) {
		return decodedGlobal{}, errs.ErrMalformed
	}
	content := p[:contentLen]
	p = p[contentLen:]

	if len(p) < 4 {
		return decodedGlobal{}, errs.ErrMalformed
	}
	userDataLen := binary.LittleEndian.Uint32(p[0:4])
	p = p[4:]
	if uint64(len(p)) < uint64(userDataLen) {
		return decodedGlobal{}, errs.ErrMalformed
	}
	userData := p[:userDataLen]
	p = p[userDataLen:]

	embeddingsLen := uint64(numEmbeddings) * 512
	if uint64(len(p)) < embeddingsLen {
		return decodedGlobal{}, errs.ErrMalformed
	}
	embeddings := p[:embeddingsLen]

	return decodedGlobal{
		documentLength: documentLength,
		numEmbeddings:  numEmbeddings,
		content:        content,
		userData:       userData,
		embeddings:     embeddings,
	}, nil
}

// Destroy finalizes any pending document and drains both external sorts
// into the six files named with base as a path prefix:
// <base>_term_idx, <base>_term_data, <base>_gbl, <base>_embeddings,
// <base>_content, <base>_stats.txt.
func (b *Builder) Destroy(base string) error {
	if b.havePending {
		if err := b.flushPending(); err != nil {
			return err
		}
		b.havePending = false
	}

	totalDocuments, maxID, err := b.writeGlobals(base)
	if err != nil {
		return err
	}

	totalTerms, totalTermsInDocuments, err := b.writeTerms(base)
	if err != nil {
		return err
	}

	return writeStats(base, totalTerms, totalDocuments, totalTermsInDocuments, maxID)
}

func (b *Builder) writeGlobals(base string) (totalDocuments int, maxID uint32, err error) {
	it, err := b.globals.Finish()
	if err != nil {
		return 0, 0, err
	}

	gblFile, err := os.Create(base + "_gbl")
	if err != nil {
		return 0, 0, fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer gblFile.Close()
	embFile, err := os.Create(base + "_embeddings")
	if err != nil {
		return 0, 0, fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer embFile.Close()
	contentFile, err := os.Create(base + "_content")
	if err != nil {
		return 0, 0, fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer contentFile.Close()

	gblW := bufio.NewWriter(gblFile)
	embW := bufio.NewWriter(embFile)
	contentW := bufio.NewWriter(contentFile)

	var contentOffset uint64
	var embeddingsOffset uint64

	for {
		e, derr := it.Next()
		if derr == io.EOF {
			break
		}
		if derr != nil {
			return 0, 0, derr
		}
		if len(e.Key) < 4 {
			return 0, 0, errs.ErrMalformed
		}
		docID := binary.BigEndian.Uint32(e.Key[:4])
		if totalDocuments == 0 || docID > maxID {
			maxID = docID
		}

		g, derr := decodeGlobalValue(e.Value)
		if derr != nil {
			return 0, 0, derr
		}

		header := section.GlobalHeader{
			DocumentLength:   g.documentLength,
			NumEmbeddings:    g.numEmbeddings,
			ContentOffset:    contentOffset,
			EmbeddingsOffset: embeddingsOffset,
		}
		headerBytes, herr := header.Bytes()
		if herr != nil {
			return 0, 0, herr
		}

		// A u32 data_length precedes user_data: GlobalHeader carries no
		// field recording it, and content_length alone cannot be located
		// within the record without first knowing where user_data ends.
		body := len(headerBytes) + 4 + len(g.userData) + 4 + len(g.content)
		var tmp [4]byte
		binary.LittleEndian.PutUint32(tmp[:], uint32(body))
		if _, werr := gblW.Write(tmp[:]); werr != nil {
			return 0, 0, werr
		}
		if _, werr := gblW.Write(headerBytes); werr != nil {
			return 0, 0, werr
		}
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(g.userData)))
		if _, werr := gblW.Write(tmp[:]); werr != nil {
			return 0, 0, werr
		}
		if _, werr := gblW.Write(g.userData); werr != nil {
			return 0, 0, werr
		}
		binary.LittleEndian.PutUint32(tmp[:], uint32(len(g.content)))
		if _, werr := gblW.Write(tmp[:]); werr != nil {
			return 0, 0, werr
		}
		if _, werr := gblW.Write(g.content); werr != nil {
			return 0, 0, werr
		}

		if _, werr := embW.Write(g.embeddings); werr != nil {
			return 0, 0, werr
		}
		if _, werr := contentW.Write(g.content); werr != nil {
			return 0, 0, werr
		}

		contentOffset += uint64(len(g.content))
		embeddingsOffset += uint64(g.numEmbeddings)
		totalDocuments++
	}

	if err := gblW.Flush(); err != nil {
		return 0, 0, err
	}
	if err := embW.Flush(); err != nil {
		return 0, 0, err
	}
	if err := contentW.Flush(); err != nil {
		return 0, 0, err
	}
	return totalDocuments, maxID, nil
}

type termOccurrence struct {
	docID    uint32
	position uint32
	value    uint32
}

func (b *Builder) writeTerms(base string) (totalTerms int, totalTermsInDocuments int, err error) {
	it, err := b.terms.Finish()
	if err != nil {
		return 0, 0, err
	}

	idxFile, err := os.Create(base + "_term_idx")
	if err != nil {
		return 0, 0, fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer idxFile.Close()
	dataFile, err := os.Create(base + "_term_data")
	if err != nil {
		return 0, 0, fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer dataFile.Close()

	idxW := bufio.NewWriter(idxFile)
	dataW := bufio.NewWriter(dataFile)

	var offset uint64
	var currentTerm string
	var haveTerm bool
	var occ []termOccurrence
	var lastKey []byte

	flush := func() error {
		if !haveTerm || len(occ) == 0 {
			return nil
		}
		n, err := writeTermRecord(idxW, dataW, currentTerm, occ, offset)
		if err != nil {
			return err
		}
		offset += uint64(n)
		totalTerms++
		totalTermsInDocuments += len(occ)
		return nil
	}

	for {
		e, derr := it.Next()
		if derr == io.EOF {
			break
		}
		if derr != nil {
			return 0, 0, derr
		}
		if lastKey != nil && bytesEqual(lastKey, e.Key) {
			continue // dedup on exact (term, doc_id, position) equality, keep first
		}
		lastKey = append([]byte(nil), e.Key...)

		term, docID, position, perr := parseTermKey(e.Key)
		if perr != nil {
			return 0, 0, perr
		}
		if !haveTerm || term != currentTerm {
			if err := flush(); err != nil {
				return 0, 0, err
			}
			currentTerm = term
			haveTerm = true
			occ = occ[:0]
		}

		value := uint32(0)
		if len(e.Value) >= 4 {
			value = binary.LittleEndian.Uint32(e.Value[:4])
		}
		occ = append(occ, termOccurrence{docID: docID, position: position, value: value})
	}
	if err := flush(); err != nil {
		return 0, 0, err
	}

	if err := idxW.Flush(); err != nil {
		return 0, 0, err
	}
	if err := dataW.Flush(); err != nil {
		return 0, 0, err
	}
	return totalTerms, totalTermsInDocuments, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func parseTermKey(key []byte) (term string, docID, position uint32, err error) {
	nul := -1
	for i, c := range key {
		if c == 0 {
			nul = i
			break
		}
	}
	if nul < 0 || len(key) < nul+9 {
		return "", 0, 0, errs.ErrMalformed
	}
	term = string(key[:nul])
	docID = binary.BigEndian.Uint32(key[nul+1 : nul+5])
	position = binary.BigEndian.Uint32(key[nul+5 : nul+9])
	return term, docID, position, nil
}

func writeTermRecord(idxW, dataW *bufio.Writer, term string, occ []termOccurrence, offset uint64) (int, error) {
	byDoc := make(map[uint32][]postings.Occurrence)
	order := make([]uint32, 0)
	for _, o := range occ {
		if _, ok := byDoc[o.docID]; !ok {
			order = append(order, o.docID)
		}
		byDoc[o.docID] = append(byDoc[o.docID], postings.Occurrence{DocID: o.docID, Position: o.position, Value: o.value})
	}

	// A doc contributes a "positions" count matching how postings.EncodeTerm
	// will represent it: more than one occurrence is always positional;
	// exactly one occurrence is positional only if its position is nonzero.
	maxPositions := uint32(0)
	for _, docID := range order {
		docOcc := byDoc[docID]
		var count uint32
		switch {
		case len(docOcc) > 1:
			count = uint32(len(docOcc))
			if docOcc[0].Position == 0 && docOcc[0].Value != 0 {
				count-- // stored as the record's value, not as a position
			}
		case len(docOcc) == 1 && docOcc[0].Position != 0:
			count = 1
		}
		if count > maxPositions {
			maxPositions = count
		}
	}

	var all []postings.Occurrence
	for _, docID := range order {
		all = append(all, byDoc[docID]...)
	}
	blob := postings.EncodeTerm(all)

	header := section.TermHeader{MaxPositions: maxPositions, DocumentFrequency: uint32(len(order))}
	headerBytes := header.Bytes()

	var tmp [8]byte
	binary.LittleEndian.PutUint64(tmp[:], offset)
	if _, err := idxW.Write([]byte(term)); err != nil {
		return 0, err
	}
	if err := idxW.WriteByte(0); err != nil {
		return 0, err
	}
	if _, err := idxW.Write(tmp[:]); err != nil {
		return 0, err
	}

	var lenBuf [4]byte
	recordLen := uint32(len(headerBytes) + len(blob))
	binary.LittleEndian.PutUint32(lenBuf[:], recordLen)
	if _, err := dataW.Write(lenBuf[:]); err != nil {
		return 0, err
	}
	if _, err := dataW.Write(headerBytes); err != nil {
		return 0, err
	}
	if _, err := dataW.Write(blob); err != nil {
		return 0, err
	}

	return 4 + int(recordLen), nil
}

func writeStats(base string, totalTerms, totalDocuments, totalTermsInDocuments int, maxID uint32) error {
	sum := checksum.New()
	for _, name := range []string{"_term_idx", "_term_data", "_gbl", "_embeddings", "_content"} {
		data, err := os.ReadFile(base + name)
		if err != nil {
			return fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
		}
		sum.Write(data)
	}

	f, err := os.Create(base + "_stats.txt")
	if err != nil {
		return fmt.Errorf("indexbuilder: %w: %v", errs.ErrIO, err)
	}
	defer f.Close()

	line1 := fmt.Sprintf("%d %d %d %d\n", totalTerms, totalDocuments, totalTermsInDocuments, maxID)
	line2 := strconv.FormatUint(sum.Sum64(), 10) + "\n"
	if _, err := f.WriteString(line1); err != nil {
		return err
	}
	if _, err := f.WriteString(line2); err != nil {
		return err
	}
	return nil
}
