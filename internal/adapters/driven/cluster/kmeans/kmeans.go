// Package kmeans groups embedding vectors with seeded k-means++.
package kmeans

import (
	"context"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/custodia-labs/themescope/internal/core/domain"
	"github.com/custodia-labs/themescope/internal/core/ports/driven"
)

// Ensure Clusterer implements the interface.
var _ driven.Clusterer = (*Clusterer)(nil)

// Defaults used by the CLI.
const (
	DefaultSeed          = 42
	DefaultMaxIterations = 50
)

// Clusterer partitions L2-normalised vectors, so Euclidean distance ranks
// points the same way cosine distance would.
type Clusterer struct {
	seed    uint64
	maxIter int
}

// New creates a clusterer with a fixed seed.
func New(seed uint64, maxIter int) *Clusterer {
	if maxIter <= 0 {
		maxIter = DefaultMaxIterations
	}
	return &Clusterer{seed: seed, maxIter: maxIter}
}

// Cluster assigns each vector to one of at most k clusters.
func (c *Clusterer) Cluster(ctx context.Context, vectors [][]float32, k int) ([]int, error) {
	if len(vectors) == 0 || k <= 0 {
		return nil, domain.ErrInsufficientData
	}
	k = min(k, len(vectors))

	data := toMatrix(vectors)
	centroids := c.seedCentroids(data, k)
	assign := make([]int, len(vectors))
	for i := range assign {
		assign[i] = -1
	}

	for it := 0; it < c.maxIter; it++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !assignPoints(data, centroids, assign) {
			break
		}
		updateCentroids(data, centroids, assign)
	}
	return assign, nil
}

func toMatrix(vectors [][]float32) *mat.Dense {
	dim := 0
	for _, v := range vectors {
		dim = max(dim, len(v))
	}
	dim = max(dim, 1)

	data := mat.NewDense(len(vectors), dim, nil)
	for i, v := range vectors {
		row := data.RawRowView(i)
		for j, x := range v {
			row[j] = float64(x)
		}
		if n := floats.Norm(row, 2); n > 0 {
			floats.Scale(1/n, row)
		}
	}
	return data
}

// seedCentroids picks k starting points with k-means++ weighting.
func (c *Clusterer) seedCentroids(data *mat.Dense, k int) *mat.Dense {
	n, d := data.Dims()
	rng := rand.New(rand.NewPCG(c.seed, c.seed))
	centroids := mat.NewDense(k, d, nil)
	centroids.SetRow(0, data.RawRowView(rng.IntN(n)))

	dist := make([]float64, n)
	for chosen := 1; chosen < k; chosen++ {
		for i := 0; i < n; i++ {
			nearest := math.Inf(1)
			for cIdx := 0; cIdx < chosen; cIdx++ {
				nearest = math.Min(nearest, floats.Distance(data.RawRowView(i), centroids.RawRowView(cIdx), 2))
			}
			dist[i] = nearest * nearest
		}

		total := floats.Sum(dist)
		if total == 0 {
			// All remaining points coincide with a centroid.
			centroids.SetRow(chosen, data.RawRowView(rng.IntN(n)))
			continue
		}
		target := rng.Float64() * total
		pick := n - 1
		var cum float64
		for i, w := range dist {
			cum += w
			if cum >= target {
				pick = i
				break
			}
		}
		centroids.SetRow(chosen, data.RawRowView(pick))
	}
	return centroids
}

// assignPoints moves each point to its nearest centroid and reports whether
// any assignment changed. Ties go to the lowest centroid index.
func assignPoints(data, centroids *mat.Dense, assign []int) bool {
	k, _ := centroids.Dims()
	changed := false
	for i := range assign {
		point := data.RawRowView(i)
		best, bestDist := 0, math.Inf(1)
		for cIdx := 0; cIdx < k; cIdx++ {
			if d := floats.Distance(point, centroids.RawRowView(cIdx), 2); d < bestDist {
				best, bestDist = cIdx, d
			}
		}
		if assign[i] != best {
			assign[i] = best
			changed = true
		}
	}
	return changed
}

// updateCentroids recomputes means; empty clusters keep their position.
func updateCentroids(data, centroids *mat.Dense, assign []int) {
	k, d := centroids.Dims()
	sums := mat.NewDense(k, d, nil)
	counts := make([]int, k)
	for i, cIdx := range assign {
		floats.Add(sums.RawRowView(cIdx), data.RawRowView(i))
		counts[cIdx]++
	}
	for cIdx := 0; cIdx < k; cIdx++ {
		if counts[cIdx] == 0 {
			continue
		}
		row := sums.RawRowView(cIdx)
		floats.Scale(1/float64(counts[cIdx]), row)
		centroids.SetRow(cIdx, row)
	}
}
