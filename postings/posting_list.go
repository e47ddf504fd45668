package postings

import (
	"sort"

	"github.com/knode-ai-open-source/search-index-library/errs"
	"github.com/knode-ai-open-source/search-index-library/varint"
)

// EncodeTerm builds the complete three-level hierarchical posting-list blob
// for a term given every occurrence across every document, per spec.md
// §4.2 and §3 (document ID grouping). occurrences need not be pre-sorted.
//
// Layout: a sequence of top-groups, each a varint delta on the previous
// top-group id followed by a length-prefixed blob; inside that blob every
// document of the top-group, in ascending doc-id order, is written as a
// varint delta on the previous document's mid-group id (absolute for the
// first document of the top-group, 0 for a document in the same mid-group)
// followed by its inner record. Mid-groups carry no length prefix of their
// own.
func EncodeTerm(occurrences []Occurrence) []byte {
	if len(occurrences) == 0 {
		return nil
	}

	byDoc := groupByDoc(occurrences)
	docIDs := make([]uint32, 0, len(byDoc))
	for id := range byDoc {
		docIDs = append(docIDs, id)
	}
	sort.Slice(docIDs, func(i, j int) bool { return docIDs[i] < docIDs[j] })

	var out []byte
	var lastTop uint32
	haveTop := false

	i := 0
	for i < len(docIDs) {
		top, _, _ := SplitDocID(docIDs[i])

		var midBlob []byte
		var lastMid uint32
		haveMid := false

		for i < len(docIDs) {
			curTop, mid, small := SplitDocID(docIDs[i])
			if curTop != top {
				break
			}

			var tmp [varint.MaxLen32]byte
			if !haveMid {
				n := varint.Encode(&tmp, mid)
				midBlob = append(midBlob, tmp[:n]...)
			} else {
				n := varint.Encode(&tmp, mid-lastMid)
				midBlob = append(midBlob, tmp[:n]...)
			}
			lastMid = mid
			haveMid = true

			midBlob = AppendMultiDocRecord(midBlob, small, byDoc[docIDs[i]])
			i++
		}

		var tmp [varint.MaxLen32]byte
		if !haveTop {
			n := varint.Encode(&tmp, top)
			out = append(out, tmp[:n]...)
		} else {
			n := varint.Encode(&tmp, top-lastTop)
			out = append(out, tmp[:n]...)
		}
		lastTop = top
		haveTop = true

		out = AppendGroupLength(out, uint32(len(midBlob)))
		out = append(out, midBlob...)
	}

	return out
}

func groupByDoc(occurrences []Occurrence) map[uint32][]Occurrence {
	byDoc := make(map[uint32][]Occurrence)
	for _, o := range occurrences {
		byDoc[o.DocID] = append(byDoc[o.DocID], o)
	}
	for id, occ := range byDoc {
		sort.SliceStable(occ, func(i, j int) bool { return occ[i].Position < occ[j].Position })
		byDoc[id] = occ
	}
	return byDoc
}

// DocPosting is one decoded document's contribution to a term, as produced
// by DecodeTerm.
type DocPosting struct {
	DocID     uint32
	HasValue  bool
	Value     uint32
	Positions []uint32
}

// DecodeTerm parses a blob written by EncodeTerm back into one DocPosting
// per document, in ascending DocID order.
func DecodeTerm(blob []byte) ([]DocPosting, error) {
	var out []DocPosting

	p := blob
	var top uint32
	haveTop := false

	for len(p) > 0 {
		delta, n, err := varint.Decode(p)
		if err != nil {
			return nil, err
		}
		p = p[n:]
		if haveTop {
			top += delta
		} else {
			top = delta
			haveTop = true
		}

		groupLen, n, err := ReadGroupLength(p)
		if err != nil {
			return nil, err
		}
		p = p[n:]
		if uint32(len(p)) < groupLen {
			return nil, errs.ErrMalformed
		}
		midBlob := p[:groupLen]
		p = p[groupLen:]

		var mid uint32
		haveMid := false
		for len(midBlob) > 0 {
			mdelta, n, err := varint.Decode(midBlob)
			if err != nil {
				return nil, err
			}
			midBlob = midBlob[n:]
			if haveMid {
				mid += mdelta
			} else {
				mid = mdelta
				haveMid = true
			}

			small, rec, n, err := DecodeMultiDocRecord(midBlob)
			if err != nil {
				return nil, err
			}
			midBlob = midBlob[n:]

			out = append(out, DocPosting{
				DocID:     JoinDocID(top, mid, small),
				HasValue:  rec.HasValue,
				Value:     rec.Value,
				Positions: rec.Positions,
			})
		}
	}

	return out, nil
}
