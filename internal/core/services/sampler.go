package services

import (
	"math"
	"sort"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

// Sampler floors.
const (
	minBucketCap = 200
	minDomainCap = 50
)

// SampleParams configures Sample.
type SampleParams struct {
	// PerBucketCap limits visits kept from one time bucket.
	PerBucketCap int

	// PerDomainCap limits visits kept from one domain within a bucket.
	PerDomainCap int

	// GlobalCap truncates the concatenated result.
	GlobalCap int

	// Prefer orders visits inside each bucket before capping.
	Prefer domain.Prefer

	// BucketKey maps a visit to its time bucket. Defaults to MonthBucket.
	BucketKey func(domain.Visit) string
}

// MonthBucket returns the visit's UTC calendar month as YYYY-MM.
func MonthBucket(v domain.Visit) string {
	return v.Time.UTC().Format("2006-01")
}

// DeriveSampleParams turns the diversity dial into concrete caps:
//
//	per_bucket_cap = max(200, floor(max_rows / buckets * (0.5 + 0.5*diversity)))
//	per_domain_cap = max(50,  floor(150 - 100*diversity))
//	global_cap     = max_rows
//
// Higher diversity lowers the per-domain cap and raises each bucket's budget.
func DeriveSampleParams(visits []domain.Visit, diversity float64, maxRows int, prefer domain.Prefer) SampleParams {
	buckets := make(map[string]struct{})
	for _, v := range visits {
		buckets[MonthBucket(v)] = struct{}{}
	}
	count := max(1, len(buckets))

	perBucket := int(math.Floor(float64(maxRows) / float64(count) * (0.5 + 0.5*diversity)))
	perDomain := int(math.Floor(150 - 100*diversity))

	return SampleParams{
		PerBucketCap: max(minBucketCap, perBucket),
		PerDomainCap: max(minDomainCap, perDomain),
		GlobalCap:    maxRows,
		Prefer:       prefer,
		BucketKey:    MonthBucket,
	}
}

// Sample caps visits per bucket and per domain so one prolific site or month
// cannot dominate topic modelling. Within a bucket visits are ordered by
// prefer and each domain keeps its first PerDomainCap visits; the bucket then
// keeps its first PerBucketCap survivors. Buckets are concatenated in key
// order and the result is truncated to GlobalCap.
//
// The output order differs from the input order.
func Sample(visits []domain.Visit, p SampleParams) []domain.Visit {
	if len(visits) == 0 {
		return nil
	}
	bucketKey := p.BucketKey
	if bucketKey == nil {
		bucketKey = MonthBucket
	}

	buckets := make(map[string][]domain.Visit)
	keys := make([]string, 0)
	for _, v := range visits {
		k := bucketKey(v)
		if _, ok := buckets[k]; !ok {
			keys = append(keys, k)
		}
		buckets[k] = append(buckets[k], v)
	}
	sort.Strings(keys)

	out := make([]domain.Visit, 0, len(visits))
	for _, k := range keys {
		out = append(out, sampleBucket(buckets[k], p)...)
		if p.GlobalCap > 0 && len(out) >= p.GlobalCap {
			return out[:p.GlobalCap]
		}
	}
	return out
}

func sampleBucket(bucket []domain.Visit, p SampleParams) []domain.Visit {
	sorted := make([]domain.Visit, len(bucket))
	copy(sorted, bucket)
	sort.SliceStable(sorted, func(i, j int) bool {
		return p.Prefer.Before(sorted[i].Time, sorted[j].Time)
	})

	perDomain := make(map[string]int)
	kept := make([]domain.Visit, 0, min(len(sorted), max(p.PerBucketCap, 0)))
	for _, v := range sorted {
		if len(kept) >= p.PerBucketCap {
			break
		}
		d := ExtractDomain(v.URL)
		if perDomain[d] >= p.PerDomainCap {
			continue
		}
		perDomain[d]++
		kept = append(kept, v)
	}
	return kept
}
