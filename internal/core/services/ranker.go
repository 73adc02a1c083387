package services

import (
	"sort"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// Ranking weights.
const (
	popularityWeight = 0.7
	timeWeight       = 0.3
)

// RankRepresentatives orders a theme's visits by
//
//	0.7*popularity + 0.3*time
//
// where popularity is the visit count and time is recency normalised to
// [0,1] over the items (negated when prefer is oldest). Items are first sorted
// by ascending timestamp, which is also the tie-break order. At most
// domain.MaxRepresentatives items are returned.
func RankRepresentatives(items []domain.Visit, prefer domain.Prefer) []domain.Visit {
	if len(items) == 0 {
		return nil
	}
	sorted := make([]domain.Visit, len(items))
	copy(sorted, items)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Time.Before(sorted[j].Time)
	})

	tmin := sorted[0].Time
	span := sorted[len(sorted)-1].Time.Sub(tmin).Seconds()

	type scored struct {
		visit domain.Visit
		score float64
	}
	ranked := make([]scored, len(sorted))
	for i, v := range sorted {
		recency := 0.0
		if span > 0 {
			recency = v.Time.Sub(tmin).Seconds() / span
		}
		if prefer == domain.PreferOldest {
			recency = -recency
		}
		popularity := float64(max(v.VisitCount, 0))
		ranked[i] = scored{visit: v, score: popularityWeight*popularity + timeWeight*recency}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	n := min(len(ranked), domain.MaxRepresentatives)
	out := make([]domain.Visit, n)
	for i := range out {
		out[i] = ranked[i].visit
	}
	return out
}
