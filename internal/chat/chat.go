// Package chat defines the transport capabilities the game engines consume.
// Implementations own all platform concerns: markup, rate limits, retries.
package chat

import (
	"context"
	"time"
)

// Message is one incoming chat message.
type Message struct {
	AuthorID   string
	AuthorName string
	Content    string
}

// Presenter sends a message to a channel. Fire-and-forget from the
// engine's point of view: an error means the transport is broken, not that
// delivery should be retried here.
type Presenter interface {
	Present(ctx context.Context, channelID, text string) error
}

// Waiter blocks until a message in the channel satisfies match, the
// timeout elapses, or ctx is canceled. A nil message with a nil error is
// the timeout sentinel. At most one message is returned per call.
type Waiter interface {
	Await(ctx context.Context, channelID string, timeout time.Duration, match func(Message) bool) (*Message, error)
}

// Chat bundles the two capabilities a game needs.
type Chat interface {
	Presenter
	Waiter
}
