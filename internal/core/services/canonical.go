package services

import (
	"net/url"
	"regexp"
	"sort"
	"strings"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

var repeatedSlashes = regexp.MustCompile(`/+`)

// Canonicalize reduces a URL to the key used for deduplication:
// scheme://host/path with the host lower-cased, a leading "www." removed,
// repeated slashes collapsed and any trailing slash trimmed. Query strings
// and fragments are dropped.
//
// Empty, unparseable or scheme-less URLs all map to the empty key, so every
// such visit collapses into a single group. This is coarse but never fails.
func Canonicalize(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" {
		return ""
	}
	scheme := strings.ToLower(u.Scheme)
	if u.Opaque != "" {
		// about:blank, mailto:x and friends have no host or path to normalise.
		return scheme + ":" + u.Opaque
	}

	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	path = repeatedSlashes.ReplaceAllString(path, "/")
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}

	return scheme + "://" + host + path
}

// ExtractDomain returns the lower-cased host of rawURL without a leading
// "www.", or "" when the URL has no host.
func ExtractDomain(rawURL string) string {
	if rawURL == "" {
		return ""
	}
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}

// Dedupe keeps one visit per canonical URL: the latest when prefer is
// newest, the earliest when prefer is oldest. Equal timestamps keep the
// visit seen first. The result is ordered by prefer, newest or oldest first.
func Dedupe(visits []domain.Visit, prefer domain.Prefer) []domain.Visit {
	if len(visits) == 0 {
		return nil
	}

	index := make(map[string]int, len(visits))
	out := make([]domain.Visit, 0, len(visits))
	for _, v := range visits {
		key := Canonicalize(v.URL)
		i, seen := index[key]
		if !seen {
			index[key] = len(out)
			out = append(out, v)
			continue
		}
		if prefer.Before(v.Time, out[i].Time) {
			out[i] = v
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return prefer.Before(out[i].Time, out[j].Time)
	})
	return out
}
