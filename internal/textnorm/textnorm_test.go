package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "lower cases", in: "Deep Learning", want: "deep learning"},
		{name: "strips urls", in: "see https://arxiv.org/abs/1234 now", want: "see now"},
		{name: "punctuation to spaces", in: "C++ & Rust: a tour!", want: "c rust a tour"},
		{name: "folds accents", in: "Café Müller", want: "cafe muller"},
		{name: "collapses whitespace", in: "  a \t b\n\nc ", want: "a b c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestTokens_DropsStopWordsAndShortTokens(t *testing.T) {
	got := Tokens("The Art of Computer Programming - www.example.com")

	assert.Equal(t, []string{"art", "computer", "programming", "example"}, got)
}

func TestIsStopWord(t *testing.T) {
	assert.True(t, IsStopWord("the"))
	assert.True(t, IsStopWord("https"))
	assert.False(t, IsStopWord("philosophy"))
}
