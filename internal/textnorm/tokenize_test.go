package textnorm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"lowercases and splits", "Sony WH-1000XM5 Headphones", []string{"1000xm5", "headphones", "sony", "wh"}},
		{"drops stopwords", "The New Phone with Black Case", []string{"case"}},
		{"drops single chars", "a b c 5G x", []string{"5g"}},
		{"collapses duplicates", "Pro pro PRO max", []string{"max", "pro"}},
		{"punctuation boundaries", "iPhone15,128GB/(Blue)", []string{"128gb", "iphone15"}},
		{"unicode letters", "Café Crème", []string{"café", "crème"}},
		{"numeric symbols", "2½ inch pipe 10m²", []string{"10m²", "2½", "pipe"}},
		{"empty", "", []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.input).Sorted())
		})
	}
}

func TestTokenizeIdempotent(t *testing.T) {
	inputs := []string{
		"Sony WH-1000XM5 Wireless Noise Cancelling Headphones",
		"Apple iPhone 15 (128 GB) - Black",
		"  ",
	}
	for _, in := range inputs {
		first := Tokenize(in)
		assert.True(t, first.Equal(Tokenize(in)), "tokenize must be deterministic for %q", in)

		again := Tokenize(strings.Join(first.Sorted(), " "))
		assert.True(t, first.Equal(again), "re-tokenizing tokens of %q changed the set", in)
	}
}

func TestTitleSimilarity(t *testing.T) {
	t.Run("identical titles", func(t *testing.T) {
		title := "Sony WH-1000XM5 Headphones"
		assert.Equal(t, 1.0, TitleSimilarity(title, title))
	})

	t.Run("empty base", func(t *testing.T) {
		assert.Zero(t, TitleSimilarity("the new", "Sony Headphones"))
	})

	t.Run("empty candidate", func(t *testing.T) {
		assert.Zero(t, TitleSimilarity("Sony Headphones", ""))
	})

	t.Run("asymmetric", func(t *testing.T) {
		base := "Sony WH-1000XM5 Headphones"
		cand := "Sony WH-1000XM4 Headphones Silver Edition"
		assert.InDelta(t, 0.75, TitleSimilarity(base, cand), 1e-9)
		assert.InDelta(t, 0.5, TitleSimilarity(cand, base), 1e-9)
	})
}

func TestFirstWords(t *testing.T) {
	assert.Equal(t, "Sony WH-1000XM5 Wireless Noise", FirstWords("Sony  WH-1000XM5 Wireless Noise Cancelling", 4))
	assert.Equal(t, "Sony", FirstWords("Sony", 4))
	assert.Equal(t, "a b", Clean(" a \n\t b "))
}
