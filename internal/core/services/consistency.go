package services

import (
	"math"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// Consistency scores how evenly a theme is spread over time:
//
//	min(1, distinct_months / max(3, visits/20))
//
// rounded to three decimals. A burst inside one month scores low; a theme
// sustained over many months approaches 1. No visits scores 0.
func Consistency(visits []domain.Visit) float64 {
	if len(visits) == 0 {
		return 0
	}
	months := make(map[string]struct{})
	for _, v := range visits {
		months[MonthBucket(v)] = struct{}{}
	}
	denom := math.Max(3, float64(len(visits))/20)
	score := math.Min(1, float64(len(months))/denom)
	return math.Round(score*1000) / 1000
}
