package services

import (
	"sort"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// TopTerms returns, per topic, the k vocabulary terms with the largest weight.
// Ties are broken by vocabulary index so the result is deterministic for a
// fixed vocabulary order. Terms with zero weight are never top terms, so a
// sparse topic row yields fewer than k terms instead of being padded with
// arbitrary zero-weight vocabulary.
func TopTerms(fit *domain.TopicFit, k int) [][]string {
	if fit == nil || k <= 0 {
		return nil
	}
	out := make([][]string, len(fit.TopicTerms))
	for t, row := range fit.TopicTerms {
		idx := make([]int, len(row))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(a, b int) bool {
			return row[idx[a]] > row[idx[b]]
		})
		n := min(k, len(idx), len(fit.Vocabulary))
		terms := make([]string, 0, n)
		for _, i := range idx {
			if len(terms) == n {
				break
			}
			if row[i] <= 0 {
				break
			}
			if i < len(fit.Vocabulary) {
				terms = append(terms, fit.Vocabulary[i])
			}
		}
		out[t] = terms
	}
	return out
}

// DominantTopics returns, per document, the index of its heaviest topic.
// Ties go to the lowest index; a document with no topics gets -1.
func DominantTopics(fit *domain.TopicFit) []int {
	if fit == nil {
		return nil
	}
	out := make([]int, len(fit.DocumentTopics))
	for d, row := range fit.DocumentTopics {
		best := -1
		for t, w := range row {
			if best < 0 || w > row[best] {
				best = t
			}
		}
		out[d] = best
	}
	return out
}

// TopicCounts tallies how many documents are assigned to each of n topics.
// Out-of-range assignments are ignored.
func TopicCounts(assignments []int, n int) []int {
	counts := make([]int, n)
	for _, a := range assignments {
		if a >= 0 && a < n {
			counts[a]++
		}
	}
	return counts
}

// Topics pairs top terms with their weights for each fitted topic.
func Topics(fit *domain.TopicFit, k int) []domain.Topic {
	terms := TopTerms(fit, k)
	out := make([]domain.Topic, len(terms))
	for t, ts := range terms {
		out[t] = domain.Topic{ID: t, TopTerms: ts, Weights: fit.TopicTerms[t]}
	}
	return out
}
