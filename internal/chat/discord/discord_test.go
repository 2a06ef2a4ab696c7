package discord

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/chat"
)

func makeAdapter() *Adapter {
	return &Adapter{waiters: make(map[string][]*waiter)}
}

func incoming(channelID, authorID, content string) (*discordgo.Session, *discordgo.MessageCreate) {
	return &discordgo.Session{}, &discordgo.MessageCreate{
		Message: &discordgo.Message{
			ChannelID: channelID,
			Content:   content,
			Author:    &discordgo.User{ID: authorID, Username: "user-" + authorID},
		},
	}
}

func TestAdapter_AwaitReceivesMatchingMessage(t *testing.T) {
	a := makeAdapter()

	done := make(chan *chat.Message, 1)
	go func() {
		msg, _ := a.Await(context.Background(), "ch", time.Second, func(m chat.Message) bool {
			return m.Content == "yes"
		})
		done <- msg
	}()

	// Wait for the waiter to register before feeding messages.
	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.waiters["ch"]) == 1
	}, time.Second, time.Millisecond)

	a.onMessageCreate(incoming("ch", "p1", "no"))
	a.onMessageCreate(incoming("ch", "p2", "yes"))

	msg := <-done
	require.NotNil(t, msg)
	require.Equal(t, "p2", msg.AuthorID)
	require.Equal(t, "user-p2", msg.AuthorName)
}

func TestAdapter_AwaitTimesOut(t *testing.T) {
	a := makeAdapter()

	msg, err := a.Await(context.Background(), "ch", 10*time.Millisecond, func(chat.Message) bool {
		return true
	})
	require.NoError(t, err)
	require.Nil(t, msg, "nil message is the timeout sentinel")

	a.mu.Lock()
	defer a.mu.Unlock()
	require.Empty(t, a.waiters["ch"], "timed-out waiters are deregistered")
}

func TestAdapter_AwaitHonorsContext(t *testing.T) {
	a := makeAdapter()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.Await(ctx, "ch", time.Second, func(chat.Message) bool { return true })
	require.ErrorIs(t, err, context.Canceled)
}

func TestAdapter_MessageSatisfiesOneWaiter(t *testing.T) {
	a := makeAdapter()

	results := make(chan *chat.Message, 2)
	for i := 0; i < 2; i++ {
		go func() {
			msg, _ := a.Await(context.Background(), "ch", 100*time.Millisecond, func(chat.Message) bool {
				return true
			})
			results <- msg
		}()
	}

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.waiters["ch"]) == 2
	}, time.Second, time.Millisecond)

	a.onMessageCreate(incoming("ch", "p1", "hello"))

	var delivered int
	for i := 0; i < 2; i++ {
		if <-results != nil {
			delivered++
		}
	}
	require.Equal(t, 1, delivered, "each message satisfies at most one waiter")
}

func TestAdapter_ChannelsAreIsolated(t *testing.T) {
	a := makeAdapter()

	done := make(chan *chat.Message, 1)
	go func() {
		msg, _ := a.Await(context.Background(), "ch-a", 50*time.Millisecond, func(chat.Message) bool {
			return true
		})
		done <- msg
	}()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.waiters["ch-a"]) == 1
	}, time.Second, time.Millisecond)

	a.onMessageCreate(incoming("ch-b", "p1", "hello"))

	require.Nil(t, <-done, "messages in other channels never match")
}

func TestAdapter_IgnoresOwnMessages(t *testing.T) {
	a := makeAdapter()

	done := make(chan *chat.Message, 1)
	go func() {
		msg, _ := a.Await(context.Background(), "ch", 50*time.Millisecond, func(chat.Message) bool {
			return true
		})
		done <- msg
	}()

	require.Eventually(t, func() bool {
		a.mu.Lock()
		defer a.mu.Unlock()
		return len(a.waiters["ch"]) == 1
	}, time.Second, time.Millisecond)

	s := &discordgo.Session{State: discordgo.NewState()}
	s.State.User = &discordgo.User{ID: "bot"}
	_, m := incoming("ch", "bot", "hello")
	a.onMessageCreate(s, m)

	require.Nil(t, <-done)
}
