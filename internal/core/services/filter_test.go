package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/themescope/internal/core/domain"
)

func TestIsGenericLink(t *testing.T) {
	tests := []struct {
		name  string
		url   string
		title string
		want  bool
	}{
		{name: "excluded domain", url: "https://mail.google.com/mail/u/0", title: "Gmail", want: true},
		{name: "excluded domain with www", url: "https://www.paypal.com/", title: "PayPal", want: true},
		{name: "keyword in title", url: "https://example.com/x", title: "Sign in to continue", want: true},
		{name: "keyword in url", url: "https://shop.example.com/checkout", title: "Shop", want: true},
		{name: "interest page", url: "https://arxiv.org/abs/1706.03762", title: "Attention Is All You Need", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsGenericLink(tt.url, tt.title))
		})
	}
}

func TestInterestScore(t *testing.T) {
	assert.Equal(t, 0, InterestScore("https://example.com/", "Weather today"))
	assert.GreaterOrEqual(t, InterestScore("https://arxiv.org/abs/1", "Deep learning with PyTorch"), 3)
	assert.GreaterOrEqual(t, InterestScore("https://plato.stanford.edu/", "Kant on moral philosophy"), 3)
}

func TestCategorize(t *testing.T) {
	assert.Equal(t, "math_ai", Categorize([]string{"neural", "networks"}))
	assert.Equal(t, "philosophy_ethics", Categorize([]string{"stoicism", "seneca"}))
	assert.Equal(t, "arts_gaming", Categorize([]string{"nintendo", "switch"}))
	assert.Equal(t, domain.CategoryGeneral, Categorize([]string{"weather", "forecast"}))
	assert.Equal(t, domain.CategoryGeneral, Categorize(nil))
}

func TestFilterInterests(t *testing.T) {
	visits := []domain.Visit{
		{URL: "https://accounts.google.com/", Title: "Deep learning account"},
		{URL: "https://arxiv.org/abs/1", Title: "Bayesian optimization"},
		{URL: "https://news.example.com/", Title: "Local weather"},
	}

	got := FilterInterests(visits, 1)

	require.Len(t, got, 1)
	assert.Equal(t, "https://arxiv.org/abs/1", got[0].URL)
	assert.Len(t, FilterInterests(visits, 0), 2)
}
