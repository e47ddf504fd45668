// Package snippet extracts highlighted text windows from a document given
// the sorted, per-query-tagged term-occurrence positions the ranking layer
// collected during retrieval: positions are clustered, each cluster is
// recursively segmented into maximum-scoring windows, and the resulting
// snippets are diversified across queries before the caller's requested
// top-k are kept (spec.md §4.8). Grounded on
// original_source/src/sil_snippet.c's clustering/best-window/top-k
// pipeline.
package snippet

import (
	"math"
	"sort"
)

// Summary is the position (in tokens) beyond which a snippet's start no
// longer receives a position-ratio boost.
const Summary = 250.0

// Position is one term occurrence considered for snippet extraction.
// TermIndex identifies the distinct query term (0..63) that matched at
// Position; QueryMask has one bit set per query (of up to 32) this
// occurrence satisfies.
type Position struct {
	Position  uint32
	Weight    float64
	TermIndex uint32
	QueryMask uint32
}

// Snippet is one emitted text window.
type Snippet struct {
	Start         uint32
	End           uint32
	Score         float64
	FirstWeight   float64
	MatchCount    int
	DistinctCount int
	Density       float64
	QueryIndex    uint32
	Mask          uint64
	NextInCluster bool
	Index         int
}

// SortAndMerge sorts positions by (Position, TermIndex) and collapses
// entries sharing both into one, OR-ing their QueryMasks (spec.md §4.8:
// the caller-side preprocessing step before clustering).
func SortAndMerge(positions []Position) []Position {
	sorted := append([]Position(nil), positions...)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Position != sorted[j].Position {
			return sorted[i].Position < sorted[j].Position
		}
		return sorted[i].TermIndex < sorted[j].TermIndex
	})

	out := sorted[:0:0]
	for _, p := range sorted {
		if n := len(out); n > 0 && out[n-1].Position == p.Position && out[n-1].TermIndex == p.TermIndex {
			out[n-1].QueryMask |= p.QueryMask
			continue
		}
		out = append(out, p)
	}
	return out
}

func ratio(start float64) float64 {
	if start >= Summary {
		return 1.0
	}
	return 1.0 + (Summary-start)/Summary
}

func adjustedMaxSnippet(start float64, maxSnippet int) int {
	if start >= Summary {
		return maxSnippet
	}
	return int(math.Round(ratio(start) * float64(maxSnippet)))
}

// Extract clusters positions and recursively segments each cluster into
// maximum-scoring snippets, per spec.md §4.8.
func Extract(positions []Position, maxSnippet int) []Snippet {
	merged := SortAndMerge(positions)
	if len(merged) == 0 {
		return nil
	}

	var all []Snippet
	for _, cl := range clusterPositions(merged, maxSnippet) {
		segs := segmentRange(cl, 0, len(cl)-1, maxSnippet)
		for i := range segs {
			segs[i].NextInCluster = i < len(segs)-1
			segs[i].Score *= ratio(float64(segs[i].Start))
		}
		all = append(all, segs...)
	}

	for i := range all {
		all[i].Index = i
	}
	return all
}

// clusterPositions walks merged positions and groups them into maximal
// runs whose inter-position gap stays under the adjusted snippet budget.
func clusterPositions(merged []Position, maxSnippet int) [][]Position {
	var clusters [][]Position
	start := 0
	for i := 1; i < len(merged); i++ {
		gap := merged[i].Position - merged[i-1].Position
		if float64(gap) >= float64(adjustedMaxSnippet(float64(merged[i-1].Position), maxSnippet)) {
			clusters = append(clusters, merged[start:i])
			start = i
		}
	}
	clusters = append(clusters, merged[start:])
	return clusters
}

// windowMetrics accumulates one query's score, first-occurrence weight,
// match count, distinct-term count, and matched-term bitmask within a
// candidate window.
type windowMetrics struct {
	score         float64
	firstWeight   float64
	matchCount    int
	distinctCount int
	mask          uint64
}

// evaluateWindow scores every query with at least one matching position
// in positions[l:r+1], per the first/second-occurrence weighting rule in
// spec.md §4.8.
func evaluateWindow(positions []Position, l, r int) map[uint32]*windowMetrics {
	metrics := make(map[uint32]*windowMetrics)
	firstSeen := make(map[uint32]uint64)
	secondSeen := make(map[uint32]uint64)

	for i := l; i <= r; i++ {
		p := positions[i]
		tBit := uint64(1) << p.TermIndex
		for q := uint32(0); q < 32; q++ {
			bit := uint32(1) << q
			if p.QueryMask&bit == 0 {
				continue
			}
			m, ok := metrics[q]
			if !ok {
				m = &windowMetrics{}
				metrics[q] = m
			}
			switch {
			case firstSeen[q]&tBit == 0:
				m.score += p.Weight
				m.firstWeight += p.Weight
				m.matchCount++
				m.distinctCount++
				m.mask |= tBit
				firstSeen[q] |= tBit
			case secondSeen[q]&tBit == 0:
				m.score += p.Weight * 0.15
				m.matchCount++
				secondSeen[q] |= tBit
			}
		}
	}
	return metrics
}

func density(score float64, snippetLen uint32) float64 {
	return score / math.Log(float64(snippetLen)+1)
}

// bestQueryForWindow picks the query maximizing first match_count then
// combined score among every query with matches in [l, r].
func bestQueryForWindow(positions []Position, l, r int) (uint32, windowMetrics, bool) {
	metrics := evaluateWindow(positions, l, r)
	if len(metrics) == 0 {
		return 0, windowMetrics{}, false
	}
	snippetLen := positions[r].Position - positions[l].Position + 1

	var bestQ uint32
	var bestM windowMetrics
	haveBest := false
	for q, m := range metrics {
		d := density(m.score, snippetLen)
		combined := (d + m.firstWeight) * float64(m.distinctCount)
		if !haveBest {
			bestQ, bestM, haveBest = q, *m, true
			continue
		}
		bd := density(bestM.score, snippetLen)
		bestCombined := (bd + bestM.firstWeight) * float64(bestM.distinctCount)
		if m.matchCount > bestM.matchCount || (m.matchCount == bestM.matchCount && combined > bestCombined) {
			bestQ, bestM, haveBest = q, *m, true
		}
	}
	return bestQ, bestM, haveBest
}

func makeSnippet(positions []Position, l, r int, q uint32, m windowMetrics) Snippet {
	snippetLen := positions[r].Position - positions[l].Position + 1
	return Snippet{
		Start:         positions[l].Position,
		End:           positions[r].Position,
		Score:         m.score,
		FirstWeight:   m.firstWeight,
		MatchCount:    m.matchCount,
		DistinctCount: m.distinctCount,
		Density:       density(m.score, snippetLen),
		QueryIndex:    q,
		Mask:          m.mask,
	}
}

// segmentRange implements the recursive best-window segmentation over
// positions[l:r+1]: if the whole region fits the snippet budget it is
// emitted as one snippet, otherwise the best window inside it is found,
// emitted, and the regions to its left and right are segmented in turn.
func segmentRange(positions []Position, l, r, maxSnippet int) []Snippet {
	regionLen := positions[r].Position - positions[l].Position + 1
	if int(regionLen) <= adjustedMaxSnippet(float64(positions[l].Position), maxSnippet) {
		q, m, ok := bestQueryForWindow(positions, l, r)
		if !ok {
			return nil
		}
		return []Snippet{makeSnippet(positions, l, r, q, m)}
	}

	bestL, bestR, bestQ, bestM, found := findBestSnippetForRangeMulti(positions, l, r, maxSnippet)
	if !found {
		return nil
	}

	var out []Snippet
	if bestL > l {
		out = append(out, segmentRange(positions, l, bestL-1, maxSnippet)...)
	}
	out = append(out, makeSnippet(positions, bestL, bestR, bestQ, bestM))
	if bestR < r {
		out = append(out, segmentRange(positions, bestR+1, r, maxSnippet)...)
	}
	return out
}

// findBestSnippetForRangeMulti scans every anchor in [l, r] and, for each,
// every forward window the snippet budget allows, choosing the
// (anchor, curr, query) maximizing first match_count then combined score.
func findBestSnippetForRangeMulti(positions []Position, l, r, maxSnippet int) (bestL, bestR int, bestQ uint32, bestM windowMetrics, found bool) {
	for anchor := l; anchor <= r; anchor++ {
		budget := adjustedMaxSnippet(float64(positions[anchor].Position), maxSnippet)
		for curr := anchor; curr <= r; curr++ {
			if int(positions[curr].Position-positions[anchor].Position+1) > budget {
				break
			}
			q, m, ok := bestQueryForWindow(positions, anchor, curr)
			if !ok {
				continue
			}
			if !found {
				bestL, bestR, bestQ, bestM, found = anchor, curr, q, m, true
				continue
			}
			if m.matchCount > bestM.matchCount {
				bestL, bestR, bestQ, bestM = anchor, curr, q, m
				continue
			}
			if m.matchCount == bestM.matchCount {
				snippetLen := positions[curr].Position - positions[anchor].Position + 1
				bestLen := positions[bestR].Position - positions[bestL].Position + 1
				combined := (density(m.score, snippetLen) + m.firstWeight) * float64(m.distinctCount)
				bestCombined := (density(bestM.score, bestLen) + bestM.firstWeight) * float64(bestM.distinctCount)
				if combined > bestCombined {
					bestL, bestR, bestQ, bestM = anchor, curr, q, m
				}
			}
		}
	}
	return bestL, bestR, bestQ, bestM, found
}

func popcount64(x uint64) int {
	n := 0
	for x != 0 {
		x &= x - 1
		n++
	}
	return n
}

// snippetLess orders by score desc; ties break by distinct_count,
// match_count, density, first_weight (all desc), then Start asc.
func snippetLess(a, b Snippet) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.DistinctCount != b.DistinctCount {
		return a.DistinctCount > b.DistinctCount
	}
	if a.MatchCount != b.MatchCount {
		return a.MatchCount > b.MatchCount
	}
	if a.Density != b.Density {
		return a.Density > b.Density
	}
	if a.FirstWeight != b.FirstWeight {
		return a.FirstWeight > b.FirstWeight
	}
	return a.Start < b.Start
}

// SnippetsTop selects up to k snippets from snippets, diversifying across
// queries: once a snippet is picked, any later snippet sharing its
// QueryIndex has its Score discounted in proportion to the matched-term
// bits the two share, and those shared bits are cleared from its Mask so
// they cannot discount it again. The result is re-sorted by original
// Index before being returned.
func SnippetsTop(snippets []Snippet, k int) []Snippet {
	remaining := append([]Snippet(nil), snippets...)
	sort.Slice(remaining, func(i, j int) bool { return snippetLess(remaining[i], remaining[j]) })

	seenMaskByQuery := make(map[uint32]uint64)
	var kept []Snippet

	for len(kept) < k && len(remaining) > 0 {
		top := remaining[0]
		remaining = remaining[1:]
		kept = append(kept, top)

		seen := seenMaskByQuery[top.QueryIndex] | top.Mask
		seenMaskByQuery[top.QueryIndex] = seen

		for i := range remaining {
			if remaining[i].QueryIndex != top.QueryIndex {
				continue
			}
			common := remaining[i].Mask & seen
			if common == 0 {
				continue
			}
			total := popcount64(remaining[i].Mask)
			if total > 0 {
				remaining[i].Score *= 1 - float64(popcount64(common))/float64(total)
			}
			remaining[i].Mask &^= common
		}
		sort.Slice(remaining, func(i, j int) bool { return snippetLess(remaining[i], remaining[j]) })
	}

	sort.Slice(kept, func(i, j int) bool { return kept[i].Index < kept[j].Index })
	return kept
}
