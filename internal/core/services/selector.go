package services

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// DuplicatePenalty is subtracted from a candidate's score when its top terms
// overlap a selected topic at or above the Jaccard threshold. It is large
// enough to push near-duplicates behind every distinct topic without banning
// them outright, so selection never starves below the requested count.
const DuplicatePenalty = 10.0

// SelectionParams configures SelectDiverseTopics.
type SelectionParams struct {
	DesiredK         int
	Lambda           float64
	JaccardThreshold float64
}

// SelectDiverseTopics greedily picks up to DesiredK topics trading prevalence
// against distinctiveness (maximal marginal relevance):
//
//	score(t) = lambda*prevalence(t) - (1-lambda)*max_sim(t, selected)
//
// Prevalence is counts normalised to sum to one (uniform when all zero) and
// similarity is the cosine of L2-normalised term-weight rows. The most
// prevalent topic seeds the selection. Candidates whose top terms reach the
// Jaccard threshold against any selected topic lose DuplicatePenalty. Ties go
// to the lowest topic index. The result is in selection order.
//
// A nil topTerms disables the duplicate penalty.
func SelectDiverseTopics(weights [][]float64, counts []int, topTerms [][]string, p SelectionParams) []int {
	n := len(weights)
	k := min(p.DesiredK, n)
	if k <= 0 {
		return nil
	}

	prevalence := normalisedPrevalence(counts, n)
	sim := CosineSimilarityMatrix(weights)

	selected := make([]int, 0, k)
	taken := make([]bool, n)

	seed := 0
	for t := 1; t < n; t++ {
		if prevalence[t] > prevalence[seed] {
			seed = t
		}
	}
	selected = append(selected, seed)
	taken[seed] = true

	for len(selected) < k {
		best, bestScore := -1, math.Inf(-1)
		for t := 0; t < n; t++ {
			if taken[t] {
				continue
			}
			maxSim := math.Inf(-1)
			duplicate := false
			for _, s := range selected {
				maxSim = math.Max(maxSim, sim[t][s])
				if topTerms != nil && t < len(topTerms) && s < len(topTerms) &&
					Jaccard(topTerms[t], topTerms[s]) >= p.JaccardThreshold {
					duplicate = true
				}
			}
			score := p.Lambda*prevalence[t] - (1-p.Lambda)*maxSim
			if duplicate {
				score -= DuplicatePenalty
			}
			if score > bestScore {
				best, bestScore = t, score
			}
		}
		if best < 0 {
			break
		}
		selected = append(selected, best)
		taken[best] = true
	}
	return selected
}

func normalisedPrevalence(counts []int, n int) []float64 {
	prevalence := make([]float64, n)
	total := 0.0
	for t := 0; t < n && t < len(counts); t++ {
		if counts[t] > 0 {
			prevalence[t] = float64(counts[t])
			total += prevalence[t]
		}
	}
	if total == 0 {
		for t := range prevalence {
			prevalence[t] = 1 / float64(n)
		}
		return prevalence
	}
	for t := range prevalence {
		prevalence[t] /= total
	}
	return prevalence
}

// CosineSimilarityMatrix returns pairwise cosine similarity of rows. Rows may
// be ragged; shorter rows are zero-padded. A zero row has similarity 0 to
// every row, itself included.
func CosineSimilarityMatrix(rows [][]float64) [][]float64 {
	n := len(rows)
	if n == 0 {
		return nil
	}
	dim := 0
	for _, r := range rows {
		dim = max(dim, len(r))
	}
	out := make([][]float64, n)
	if dim == 0 {
		for i := range out {
			out[i] = make([]float64, n)
		}
		return out
	}

	normed := mat.NewDense(n, dim, nil)
	for i, r := range rows {
		row := make([]float64, dim)
		copy(row, r)
		v := mat.NewVecDense(dim, row)
		if norm := mat.Norm(v, 2); norm > 0 {
			v.ScaleVec(1/norm, v)
		}
		normed.SetRow(i, v.RawVector().Data)
	}

	var gram mat.Dense
	gram.Mul(normed, normed.T())
	for i := range out {
		out[i] = mat.Row(nil, i, &gram)
	}
	return out
}

// Jaccard returns |a∩b| / |a∪b| over the distinct terms of a and b, or 0
// when both are empty.
func Jaccard(a, b []string) float64 {
	setA := make(map[string]struct{}, len(a))
	for _, s := range a {
		setA[s] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, s := range b {
		setB[s] = struct{}{}
	}
	if len(setA) == 0 && len(setB) == 0 {
		return 0
	}
	inter := 0
	for s := range setA {
		if _, ok := setB[s]; ok {
			inter++
		}
	}
	union := len(setA) + len(setB) - inter
	return float64(inter) / float64(union)
}
