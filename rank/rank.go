// Package rank implements the stateless scoring primitives the query layer
// composes into a final document score: IDF, BM25 and BM25+ variants, a
// positional spread bonus, and cross-term pair proximity (spec.md §4.7).
// Formulas are grounded on original_source/src/sil_rank.c and kept as
// free functions with no shared state, matching that file's design.
package rank

import "math"

// Tuning constants fixed by the wire-format contract (spec.md §4.7).
const (
	K1    = 1.2
	B     = 0.75
	K3    = 8.0
	Delta = 1.0
)

// IDF computes the inverse document frequency of a term appearing in n of
// N total documents.
func IDF(n, docCount uint32) float64 {
	return math.Log((float64(docCount) + 1) / (float64(n) + 0.5))
}

// QTFWeight computes the query-term-frequency saturation weight for a term
// occurring qtf times in the query.
func QTFWeight(qtf uint32) float64 {
	q := float64(qtf)
	return q * (K3 + 1) / (q + K3)
}

// BM25DocNorm computes the document-length normalization term for a
// document of length docLen against corpus average length avgDocLen.
func BM25DocNorm(docLen, avgDocLen float64) float64 {
	return K1 * (1 - B + B*docLen/avgDocLen)
}

// BM25TF computes the BM25 term-frequency saturation factor.
func BM25TF(tf uint32, docNorm float64) float64 {
	t := float64(tf)
	return t * (K1 + 1) / (t + docNorm)
}

// BM25 computes the classic BM25 score contribution of one term.
func BM25(n, docCount uint32, tf uint32, docLen, avgDocLen float64) float64 {
	return IDF(n, docCount) * BM25TF(tf, BM25DocNorm(docLen, avgDocLen))
}

// BM25PlusTF computes the BM25+ term-frequency saturation factor (the
// Delta-shifted variant of BM25TF).
func BM25PlusTF(tf uint32, docNorm float64) float64 {
	t := float64(tf)
	return (t + Delta) * (K1 + 1) / (t + docNorm)
}

// BM25Plus computes the BM25+ score contribution of one term, folding in
// the query-term-frequency weight.
func BM25Plus(n, docCount uint32, tf, qtf uint32, docLen, avgDocLen float64) float64 {
	return IDF(n, docCount) * QTFWeight(qtf) * BM25PlusTF(tf, BM25DocNorm(docLen, avgDocLen))
}

// BM25PlusSpread folds a positional spread bonus into BM25+: the plain
// BM25+ term-frequency factor is boosted by (1 + spread) before being
// scaled by idf and qtf_weight.
func BM25PlusSpread(n, docCount uint32, tf, qtf uint32, docLen, avgDocLen, spread float64) float64 {
	plusTF := BM25PlusTF(tf, BM25DocNorm(docLen, avgDocLen))
	return IDF(n, docCount) * QTFWeight(qtf) * (plusTF * (1 + spread))
}

// spreadDecay and spreadThresholds are fixed per spec.md §4.7.
var spreadDecay = [5]float64{1.0, 0.7, 0.5, 0.3, 0.2}
var spreadThresholds = [4]float64{30, 70, 200, 400}

// SpreadScore rewards term occurrences that cluster tightly together near
// the start of a document. positions must be sorted ascending; only the
// first 5 are considered.
func SpreadScore(positions []uint32) float64 {
	n := len(positions)
	if n == 0 {
		return 0.0
	}
	if n > 5 {
		n = 5
	}

	score := spreadDecay[0] / float64(positions[0])
	for i := 1; i < n; i++ {
		d := float64(positions[i]) - float64(positions[i-1])
		t := spreadThresholds[i-1]
		ratio := d
		if ratio > t {
			ratio = t
		}
		score += spreadDecay[i] * (ratio / t) / float64(positions[i])
	}
	return score / float64(n)
}

// PairProximity returns the minimum distance between any two distinct
// positions a ∈ A, b ∈ B, penalizing out-of-order pairs (a > b) by adding
// 1 to the raw gap. Returns math.MaxUint32 if either list is empty. A and
// B must be sorted ascending.
func PairProximity(a, b []uint32) uint32 {
	if len(a) == 0 || len(b) == 0 {
		return math.MaxUint32
	}

	best := uint32(math.MaxUint32)
	for _, x := range a {
		for _, y := range b {
			if x == y {
				continue
			}
			var d uint32
			if x < y {
				d = y - x
			} else {
				d = (x - y) + 1
			}
			if d < best {
				best = d
			}
		}
	}
	return best
}
