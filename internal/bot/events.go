package bot

import "github.com/vectorious/lilbot/internal/record"

const EventNameGameCompleted = "game.completed"

// EventGameCompleted is published after a ladder game's record has been
// persisted. Subscribers bump metrics and invalidate the leaderboard.
type EventGameCompleted struct {
	ChannelID string
	Mode      string
	Game      record.Game
}

func (EventGameCompleted) Name() string { return EventNameGameCompleted }
