package kmeans

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

func blobs() [][]float32 {
	return [][]float32{
		{1, 0.05, 0}, {0.95, 0, 0.05}, {1, 0.1, 0},
		{0, 1, 0.05}, {0.05, 0.9, 0}, {0, 1, 0.1},
		{0, 0.05, 1}, {0.1, 0, 0.95}, {0, 0, 1},
	}
}

func TestCluster_SeparatesBlobs(t *testing.T) {
	assign, err := New(DefaultSeed, DefaultMaxIterations).Cluster(context.Background(), blobs(), 3)

	require.NoError(t, err)
	require.Len(t, assign, 9)
	for g := 0; g < 3; g++ {
		assert.Equal(t, assign[g*3], assign[g*3+1])
		assert.Equal(t, assign[g*3], assign[g*3+2])
	}
	assert.NotEqual(t, assign[0], assign[3])
	assert.NotEqual(t, assign[3], assign[6])
	assert.NotEqual(t, assign[0], assign[6])
}

func TestCluster_Deterministic(t *testing.T) {
	c := New(DefaultSeed, DefaultMaxIterations)

	a, err := c.Cluster(context.Background(), blobs(), 3)
	require.NoError(t, err)
	b, err := c.Cluster(context.Background(), blobs(), 3)
	require.NoError(t, err)

	assert.Equal(t, a, b)
}

func TestCluster_ScaleInvariant(t *testing.T) {
	vectors := [][]float32{{1, 0}, {10, 0}, {0, 2}, {0, 20}}

	assign, err := New(DefaultSeed, 0).Cluster(context.Background(), vectors, 2)

	require.NoError(t, err)
	assert.Equal(t, assign[0], assign[1])
	assert.Equal(t, assign[2], assign[3])
	assert.NotEqual(t, assign[0], assign[2])
}

func TestCluster_KCappedAtPoints(t *testing.T) {
	assign, err := New(DefaultSeed, DefaultMaxIterations).Cluster(context.Background(), [][]float32{{1, 0}, {0, 1}}, 8)

	require.NoError(t, err)
	for _, a := range assign {
		assert.Less(t, a, 2)
	}
}

func TestCluster_Empty(t *testing.T) {
	_, err := New(DefaultSeed, DefaultMaxIterations).Cluster(context.Background(), nil, 3)

	assert.ErrorIs(t, err, domain.ErrInsufficientData)
}

func TestCluster_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(DefaultSeed, DefaultMaxIterations).Cluster(ctx, blobs(), 3)

	assert.ErrorIs(t, err, context.Canceled)
}
