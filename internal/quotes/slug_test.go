package quotes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/quotes"
)

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Casablanca":                     "casablanca",
		"The Good, the Bad and the Ugly": "the-good-the-bad-and-the-ugly",
		"Amélie":                         "amelie",
		"  WALL-E  ":                     "wall-e",
		"What's Eating Gilbert Grape?":   "whats-eating-gilbert-grape",
		"Léon: The Professional":         "leon-the-professional",
		"8½":                             "812",
		"":                               "",
		"!!!":                            "",
	}

	for in, want := range tests {
		require.Equal(t, want, quotes.Slugify(in), "input %q", in)
	}
}
