package game_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/game"
)

func TestFormatDollars(t *testing.T) {
	tests := map[int]string{
		0:       "$0",
		500:     "$500",
		1000:    "$1,000",
		7000:    "$7,000",
		50000:   "$50,000",
		1000000: "$1,000,000",
		-2500:   "-$2,500",
	}

	for amount, want := range tests {
		require.Equal(t, want, game.FormatDollars(amount))
	}
}

func TestLifeline(t *testing.T) {
	require.True(t, game.AllLifelines.Has(game.FiftyFifty))
	require.True(t, game.AllLifelines.Has(game.DoubleDip))

	spent := game.AllLifelines.Without(game.FiftyFifty)
	require.False(t, spent.Has(game.FiftyFifty))
	require.True(t, spent.Has(game.DoubleDip))

	require.Equal(t, "!50/50", game.FiftyFifty.Keyword())
	require.Equal(t, "!dd", game.DoubleDip.Keyword())
	require.Equal(t, "50/50, double-dip", game.AllLifelines.String())
	require.Equal(t, "none", game.Lifeline(0).String())
}
