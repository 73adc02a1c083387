package domain

import "time"

// Visit is a single browsing-history record as delivered by a HistoryReader.
// Visits are immutable once read. Identity is (URL, Time); two visits are only
// ever merged through explicit deduplication.
type Visit struct {
	// URL is the visited address exactly as recorded by the browser.
	URL string `json:"url" yaml:"url"`

	// Title is the page title, possibly empty.
	Title string `json:"title" yaml:"title"`

	// Time is the visit timestamp in UTC.
	Time time.Time `json:"visit_time" yaml:"visit_time"`

	// VisitCount is the browser's total visit counter for the URL.
	VisitCount int `json:"visit_count" yaml:"visit_count"`

	// TypedCount is how often the URL was typed into the address bar.
	TypedCount int `json:"typed_count" yaml:"typed_count"`
}

// Prefer selects which end of the timeline wins when ordering or deduplicating.
type Prefer string

// Available ordering preferences.
const (
	// PreferNewest favours the most recent visits.
	PreferNewest Prefer = "newest"

	// PreferOldest favours the earliest visits.
	PreferOldest Prefer = "oldest"
)

// IsValid returns true if the preference is recognised.
func (p Prefer) IsValid() bool {
	return p == PreferNewest || p == PreferOldest
}

// String returns the string representation.
func (p Prefer) String() string {
	return string(p)
}

// Before reports whether a should be ordered before b under this preference.
// Equal timestamps are never "before" each other so stable sorts keep input order.
func (p Prefer) Before(a, b time.Time) bool {
	if p == PreferOldest {
		return a.Before(b)
	}
	return a.After(b)
}

// HistoryQuery narrows what a HistoryReader returns.
type HistoryQuery struct {
	// Since drops visits before this instant when set.
	Since *time.Time

	// Until drops visits after this instant when set.
	Until *time.Time

	// IncludeArchived also reads the archived record set, concatenated
	// before canonicalisation.
	IncludeArchived bool
}

// Contains reports whether t lies inside the query's date range (inclusive).
func (q HistoryQuery) Contains(t time.Time) bool {
	if q.Since != nil && t.Before(*q.Since) {
		return false
	}
	if q.Until != nil && t.After(*q.Until) {
		return false
	}
	return true
}
