package services

import (
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// IsGenericLink reports whether a visit is logistics rather than interest:
// an excluded domain, or an excluded keyword anywhere in title or URL.
func IsGenericLink(rawURL, title string) bool {
	if _, ok := domain.ExcludedDomains[ExtractDomain(rawURL)]; ok {
		return true
	}
	text := strings.ToLower(title + " " + rawURL)
	for _, k := range domain.ExcludedKeywords {
		if strings.Contains(text, k) {
			return true
		}
	}
	return false
}

// InterestScore counts interest keywords found in title or URL, across all buckets.
func InterestScore(rawURL, title string) int {
	text := strings.ToLower(title + " " + rawURL)
	score := 0
	for _, b := range domain.InterestBuckets {
		for _, k := range b.Keywords {
			if strings.Contains(text, k) {
				score++
			}
		}
	}
	return score
}

// Categorize returns the first interest bucket matched by keywords, or
// domain.CategoryGeneral.
func Categorize(keywords []string) string {
	text := strings.ToLower(strings.Join(keywords, " "))
	for _, b := range domain.InterestBuckets {
		for _, k := range b.Keywords {
			if strings.Contains(text, k) {
				return b.Name
			}
		}
	}
	return domain.CategoryGeneral
}

// FilterInterests drops generic links and visits scoring below minScore.
func FilterInterests(visits []domain.Visit, minScore int) []domain.Visit {
	out := make([]domain.Visit, 0, len(visits))
	for _, v := range visits {
		if IsGenericLink(v.URL, v.Title) {
			continue
		}
		if InterestScore(v.URL, v.Title) < minScore {
			continue
		}
		out = append(out, v)
	}
	return out
}
