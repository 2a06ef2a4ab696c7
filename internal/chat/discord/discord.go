// Package discord adapts a discordgo session to the chat capabilities.
package discord

import (
	"context"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/vectorious/lilbot/internal/chat"
)

type waiter struct {
	match func(chat.Message) bool
	ch    chan chat.Message
}

// Adapter implements chat.Chat over a Discord session. Incoming messages
// are fanned out to per-channel waiters; each message satisfies at most
// one waiter.
type Adapter struct {
	session *discordgo.Session

	mu      sync.Mutex
	waiters map[string][]*waiter
}

func New(session *discordgo.Session) *Adapter {
	a := &Adapter{
		session: session,
		waiters: make(map[string][]*waiter),
	}

	session.AddHandler(a.onMessageCreate)
	return a
}

func (a *Adapter) Present(_ context.Context, channelID, text string) error {
	_, err := a.session.ChannelMessageSend(channelID, text)
	return err
}

// Await registers a waiter for the channel and blocks until a matching
// message arrives, the timeout elapses (nil, nil), or ctx is canceled.
func (a *Adapter) Await(ctx context.Context, channelID string, timeout time.Duration, match func(chat.Message) bool) (*chat.Message, error) {
	w := &waiter{
		match: match,
		ch:    make(chan chat.Message, 1),
	}

	a.mu.Lock()
	a.waiters[channelID] = append(a.waiters[channelID], w)
	a.mu.Unlock()
	defer a.remove(channelID, w)

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case msg := <-w.ch:
		return &msg, nil
	case <-timer.C:
		return nil, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (a *Adapter) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}

	msg := chat.Message{
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for i, w := range a.waiters[m.ChannelID] {
		if !w.match(msg) {
			continue
		}

		// Buffered: delivery never blocks the gateway handler.
		w.ch <- msg
		a.waiters[m.ChannelID] = append(a.waiters[m.ChannelID][:i], a.waiters[m.ChannelID][i+1:]...)
		return
	}
}

func (a *Adapter) remove(channelID string, target *waiter) {
	a.mu.Lock()
	defer a.mu.Unlock()

	ws := a.waiters[channelID]
	for i, w := range ws {
		if w == target {
			a.waiters[channelID] = append(ws[:i], ws[i+1:]...)
			return
		}
	}
}
