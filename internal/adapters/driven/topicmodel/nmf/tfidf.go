package nmf

import (
	"math"
	"sort"

	"github.com/custodia-labs/themescope/internal/textnorm"
)

// entry is one non-zero cell of a sparse row.
type entry struct {
	col int
	val float64
}

// sparse is a row-compressed document-term matrix.
type sparse struct {
	rows [][]entry
	cols int
}

// vectorize builds a TF-IDF matrix over docs. Terms must appear in at least
// minDF documents; when more than maxFeatures survive, those with the highest
// total count across the corpus are kept, ties by term. The vocabulary is
// sorted alphabetically.
// Rows are L2-normalised; documents with no surviving terms stay empty.
func vectorize(docs []string, minDF, maxFeatures int) (*sparse, []string) {
	tokenised := make([]map[string]int, len(docs))
	df := make(map[string]int)
	tf := make(map[string]int)
	for i, doc := range docs {
		counts := make(map[string]int)
		for _, tok := range textnorm.Tokens(doc) {
			counts[tok]++
			tf[tok]++
		}
		for tok := range counts {
			df[tok]++
		}
		tokenised[i] = counts
	}

	terms := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDF {
			terms = append(terms, term)
		}
	}
	if maxFeatures > 0 && len(terms) > maxFeatures {
		sort.Slice(terms, func(i, j int) bool {
			if tf[terms[i]] != tf[terms[j]] {
				return tf[terms[i]] > tf[terms[j]]
			}
			return terms[i] < terms[j]
		})
		terms = terms[:maxFeatures]
	}
	sort.Strings(terms)

	index := make(map[string]int, len(terms))
	idf := make([]float64, len(terms))
	n := float64(len(docs))
	for col, term := range terms {
		index[term] = col
		// Smoothed IDF: ln((1+n)/(1+df)) + 1.
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	m := &sparse{rows: make([][]entry, len(docs)), cols: len(terms)}
	for i, counts := range tokenised {
		var row []entry
		var norm float64
		for tok, c := range counts {
			col, ok := index[tok]
			if !ok {
				continue
			}
			v := float64(c) * idf[col]
			row = append(row, entry{col: col, val: v})
			norm += v * v
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for j := range row {
				row[j].val /= norm
			}
		}
		sort.Slice(row, func(a, b int) bool { return row[a].col < row[b].col })
		m.rows[i] = row
	}
	return m, terms
}

// sumSquares returns the squared Frobenius norm.
func (s *sparse) sumSquares() float64 {
	var total float64
	for _, row := range s.rows {
		for _, e := range row {
			total += e.val * e.val
		}
	}
	return total
}

// mean returns the average over all cells, zeros included.
func (s *sparse) mean() float64 {
	cells := len(s.rows) * s.cols
	if cells == 0 {
		return 0
	}
	var total float64
	for _, row := range s.rows {
		for _, e := range row {
			total += e.val
		}
	}
	return total / float64(cells)
}
