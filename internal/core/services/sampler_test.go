package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

func visitsIn(month time.Month, domainName string, n int) []domain.Visit {
	out := make([]domain.Visit, n)
	for i := range out {
		out[i] = domain.Visit{
			URL:  fmt.Sprintf("https://%s/p/%d", domainName, i),
			Time: time.Date(2024, month, 1, 0, i, 0, 0, time.UTC),
		}
	}
	return out
}

func TestMonthBucket(t *testing.T) {
	v := domain.Visit{Time: time.Date(2023, time.November, 30, 23, 0, 0, 0, time.UTC)}
	assert.Equal(t, "2023-11", MonthBucket(v))
}

func TestDeriveSampleParams(t *testing.T) {
	visits := append(visitsIn(time.January, "a.com", 1), visitsIn(time.February, "a.com", 1)...)

	tests := []struct {
		name       string
		diversity  float64
		maxRows    int
		wantBucket int
		wantDomain int
	}{
		{name: "zero diversity", diversity: 0, maxRows: 100000, wantBucket: 25000, wantDomain: 150},
		{name: "half diversity", diversity: 0.5, maxRows: 100000, wantBucket: 37500, wantDomain: 100},
		{name: "full diversity", diversity: 1, maxRows: 100000, wantBucket: 50000, wantDomain: 50},
		{name: "floors apply", diversity: 1, maxRows: 100, wantBucket: 200, wantDomain: 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DeriveSampleParams(visits, tt.diversity, tt.maxRows, domain.PreferNewest)
			assert.Equal(t, tt.wantBucket, p.PerBucketCap)
			assert.Equal(t, tt.wantDomain, p.PerDomainCap)
			assert.Equal(t, tt.maxRows, p.GlobalCap)
		})
	}
}

func TestDeriveSampleParams_HigherDiversityShrinksDomainCap(t *testing.T) {
	visits := visitsIn(time.March, "a.com", 3)

	low := DeriveSampleParams(visits, 0.2, 10000, domain.PreferNewest)
	high := DeriveSampleParams(visits, 0.8, 10000, domain.PreferNewest)

	assert.Greater(t, low.PerDomainCap, high.PerDomainCap)
	assert.Less(t, low.PerBucketCap, high.PerBucketCap)
}

func TestSample_CapsPerDomain(t *testing.T) {
	visits := append(visitsIn(time.January, "big.com", 10), visitsIn(time.January, "small.com", 2)...)

	got := Sample(visits, SampleParams{PerBucketCap: 100, PerDomainCap: 3, GlobalCap: 100, Prefer: domain.PreferNewest})

	counts := map[string]int{}
	for _, v := range got {
		counts[ExtractDomain(v.URL)]++
	}
	assert.Equal(t, 3, counts["big.com"])
	assert.Equal(t, 2, counts["small.com"])
}

func TestSample_KeepsPreferredEndOfDomain(t *testing.T) {
	visits := visitsIn(time.January, "a.com", 5)

	newest := Sample(visits, SampleParams{PerBucketCap: 10, PerDomainCap: 2, GlobalCap: 10, Prefer: domain.PreferNewest})
	oldest := Sample(visits, SampleParams{PerBucketCap: 10, PerDomainCap: 2, GlobalCap: 10, Prefer: domain.PreferOldest})

	require.Len(t, newest, 2)
	require.Len(t, oldest, 2)
	assert.Equal(t, 4, newest[0].Time.Minute())
	assert.Equal(t, 3, newest[1].Time.Minute())
	assert.Equal(t, 0, oldest[0].Time.Minute())
	assert.Equal(t, 1, oldest[1].Time.Minute())
}

func TestSample_CapsPerBucketAndGlobal(t *testing.T) {
	var visits []domain.Visit
	visits = append(visits, visitsIn(time.March, "a.com", 5)...)
	visits = append(visits, visitsIn(time.January, "b.com", 5)...)
	visits = append(visits, visitsIn(time.February, "c.com", 5)...)

	got := Sample(visits, SampleParams{PerBucketCap: 2, PerDomainCap: 10, GlobalCap: 5, Prefer: domain.PreferNewest})

	require.Len(t, got, 5)
	// Buckets in chronological order, two from each until the global cap.
	assert.Equal(t, time.January, got[0].Time.Month())
	assert.Equal(t, time.January, got[1].Time.Month())
	assert.Equal(t, time.February, got[2].Time.Month())
	assert.Equal(t, time.February, got[3].Time.Month())
	assert.Equal(t, time.March, got[4].Time.Month())
}

func TestSample_CustomBucketKey(t *testing.T) {
	visits := visitsIn(time.January, "a.com", 4)

	got := Sample(visits, SampleParams{
		PerBucketCap: 1,
		PerDomainCap: 10,
		GlobalCap:    10,
		Prefer:       domain.PreferNewest,
		BucketKey:    func(v domain.Visit) string { return fmt.Sprint(v.Time.Minute() % 2) },
	})

	assert.Len(t, got, 2)
}

func TestSample_Empty(t *testing.T) {
	assert.Empty(t, Sample(nil, SampleParams{PerBucketCap: 1, PerDomainCap: 1, GlobalCap: 1}))
}
