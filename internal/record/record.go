// Package record persists completed ladder games and reads them back for
// the leaderboard.
package record

import (
	"context"
	"strings"

	"github.com/vectorious/lilbot/internal/game"
)

// Game is one finished ladder game. Immutable after completion: stores
// only ever append whole games.
type Game struct {
	// User is the player's display name at game time.
	User string
	// Lifelines granted at game start.
	Lifelines game.Lifeline
	// Rounds in game-chronological order.
	Rounds []game.CompletedRound
	// Timestamp is the game start, unix seconds.
	Timestamp int64
	// AmountEarned is the final amount, set once at game end.
	AmountEarned int
}

// Store is the persisted game history, one ordered list per player.
// Player keys are slugs (PlayerKey); the display name lives inside each
// game.
type Store interface {
	Append(ctx context.Context, g Game) error
	History(ctx context.Context, player string) ([]Game, error)
	Players(ctx context.Context) ([]string, error)
}

// PlayerKey derives the stable store key for a user display name.
func PlayerKey(user string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(user) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteByte('-')
		}
	}
	return b.String()
}
