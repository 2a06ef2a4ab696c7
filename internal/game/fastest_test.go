package game_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/trivia"
)

func makeFastestFinger(c *scriptedChat, s *stubSource) *game.FastestFinger {
	return game.NewFastestFinger(game.FastestFingerConfig{
		Chat:   c,
		Source: s,
		Rand:   rand.New(rand.NewSource(1)),
	})
}

func TestFastestFinger_FirstCorrectWins(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a", "wrong-1-b", "wrong-1-c")}

	c := &scriptedChat{replies: []reply{
		sayAnswer(t, "p1", "alice", "wrong-1-a"),
		sayAnswer(t, "p2", "bob", "right-1"),
		sayAnswer(t, "p3", "carol", "right-1"),
	}}

	result, err := makeFastestFinger(c, &stubSource{queue: questions}).Run(context.Background(), "ch")
	require.NoError(t, err)

	require.Equal(t, "p2", result.WinnerID)
	require.Equal(t, "bob", result.WinnerName)
	require.Equal(t, map[string]bool{"p1": false, "p2": true}, result.Answered,
		"the round ends at the first correct answer")
	require.Contains(t, c.transcript(), "bob got it. **right-1**.")
}

func TestFastestFinger_PaddedAnswerWins(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a", "wrong-1-b", "wrong-1-c")}

	c := &scriptedChat{replies: []reply{
		sayPaddedAnswer(t, "p1", "alice", "right-1"),
	}}

	result, err := makeFastestFinger(c, &stubSource{queue: questions}).Run(context.Background(), "ch")
	require.NoError(t, err)

	require.Equal(t, "alice", result.WinnerName)
	require.Equal(t, map[string]bool{"p1": true}, result.Answered)
}

func TestFastestFinger_OneAnswerPerRespondent(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a", "wrong-1-b", "wrong-1-c")}

	c := &scriptedChat{replies: []reply{
		sayAnswer(t, "p1", "alice", "wrong-1-a"),
		sayAnswer(t, "p1", "alice", "right-1"),
	}}

	result, err := makeFastestFinger(c, &stubSource{queue: questions}).Run(context.Background(), "ch")
	require.NoError(t, err)

	require.Empty(t, result.WinnerID, "a second answer from the same respondent never counts")
	require.Equal(t, map[string]bool{"p1": false}, result.Answered)

	transcript := c.transcript()
	require.Equal(t, "No takers. The correct answer was **right-1**.", transcript[len(transcript)-1])
}

func TestFastestFinger_NoAnswers(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a")}
	c := &scriptedChat{}

	result, err := makeFastestFinger(c, &stubSource{queue: questions}).Run(context.Background(), "ch")
	require.NoError(t, err)

	require.Empty(t, result.WinnerID)
	require.Empty(t, result.Answered)
}
