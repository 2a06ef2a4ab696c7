package game_test

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/trivia"
)

func makeQuiz(c *scriptedChat, s *stubSource) *game.Quiz {
	return game.NewQuiz(game.QuizConfig{
		Chat:   c,
		Source: s,
		Rand:   rand.New(rand.NewSource(1)),
		Sleep:  noSleep,
	})
}

func TestQuiz_ScoresFirstQualifyingAnswer(t *testing.T) {
	questions := []trivia.Question{
		question("q1", "right-1", "wrong-1-a", "wrong-1-b", "wrong-1-c"),
		question("q2", "right-2", "wrong-2-a", "wrong-2-b", "wrong-2-c"),
		question("q3", "right-3", "wrong-3-a", "wrong-3-b", "wrong-3-c"),
	}

	c := &scriptedChat{replies: []reply{
		sayAnswer(t, "p1", "alice", "right-1"),
		sayAnswer(t, "p2", "bob", "wrong-2-a"),
		sayAnswer(t, "p1", "alice", "right-3"),
	}}

	result, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 3)
	require.NoError(t, err)

	require.Len(t, result.Rounds, 3)
	require.Equal(t, game.AnsweredCorrectly, result.Rounds[0].Outcome)
	require.Equal(t, game.AnsweredIncorrectly, result.Rounds[1].Outcome)
	require.Equal(t, map[string]int{"alice": 2}, result.Scores)
	require.False(t, result.Stopped)

	transcript := c.transcript()
	require.Contains(t, transcript, "alice got it. **right-1**.")
	require.Contains(t, transcript, "Wrong. **right-2**.")
	require.Equal(t, "alice: 2", transcript[len(transcript)-1], "final standings")
}

func TestQuiz_TimeoutRevealsAnswer(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a")}
	c := &scriptedChat{}

	result, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 1)
	require.NoError(t, err)

	require.Len(t, result.Rounds, 1)
	require.Equal(t, game.TimedOut, result.Rounds[0].Outcome)
	require.Contains(t, c.transcript(), "Noobs. **right-1**.")
}

func TestQuiz_StopEndsEarly(t *testing.T) {
	questions := []trivia.Question{
		question("q1", "right-1", "wrong-1-a"),
		question("q2", "right-2", "wrong-2-a"),
		question("q3", "right-3", "wrong-3-a"),
	}

	c := &scriptedChat{replies: []reply{
		sayAnswer(t, "p1", "alice", "right-1"),
		say("p2", "bob", "!stop"),
	}}

	result, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 3)
	require.NoError(t, err)

	require.True(t, result.Stopped)
	require.Len(t, result.Rounds, 1, "the stopped round produces no record")
	require.Contains(t, c.transcript(), "k.")
}

func TestQuiz_PaddedRepliesResolve(t *testing.T) {
	questions := []trivia.Question{
		question("q1", "right-1", "wrong-1-a", "wrong-1-b", "wrong-1-c"),
		question("q2", "right-2", "wrong-2-a"),
	}

	c := &scriptedChat{replies: []reply{
		sayPaddedAnswer(t, "p1", "alice", "right-1"),
		say("p1", "alice", "  !stop"),
	}}

	result, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 2)
	require.NoError(t, err)

	require.Equal(t, map[string]int{"alice": 1}, result.Scores)
	require.Len(t, result.Rounds, 1)
	require.Equal(t, game.AnsweredCorrectly, result.Rounds[0].Outcome)
	require.Equal(t, "right-1", result.Rounds[0].GivenAnswer)
	require.True(t, result.Stopped)
}

func TestQuiz_SingleQuestionSkipsNumberAndStandings(t *testing.T) {
	questions := []trivia.Question{question("q1", "right-1", "wrong-1-a")}
	c := &scriptedChat{replies: []reply{sayAnswer(t, "p1", "alice", "right-1")}}

	_, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 1)
	require.NoError(t, err)

	transcript := c.transcript()
	require.NotContains(t, transcript[0], "#1")
	require.Equal(t, "alice got it. **right-1**.", transcript[len(transcript)-1])
}

func TestQuiz_FetchFailure(t *testing.T) {
	c := &scriptedChat{}

	_, err := makeQuiz(c, &stubSource{failures: 1}).Run(context.Background(), "ch", 1)
	require.Error(t, err)
	require.Contains(t, c.transcript(), "Unable to retrieve questions.")
}

func TestFormatScores(t *testing.T) {
	scores := map[string]int{"carol": 2, "alice": 5, "bob": 2}
	require.Equal(t, "alice: 5, bob: 2, carol: 2", game.FormatScores(scores))
}

func TestQuiz_IgnoresFreeTextAnswers(t *testing.T) {
	questions := []trivia.Question{question("capital of Spain?", "Madrid", "Lisbon", "Paris")}

	c := &scriptedChat{replies: []reply{
		say("p1", "alice", "madrid"),
		say("p1", "alice", "it is B right?"),
		sayAnswer(t, "p2", "bob", "Madrid"),
	}}

	result, err := makeQuiz(c, &stubSource{queue: questions}).Run(context.Background(), "ch", 1)
	require.NoError(t, err)

	require.Equal(t, map[string]int{"bob": 1}, result.Scores)

	for _, text := range c.transcript() {
		require.False(t, strings.Contains(text, "alice"), "free text never resolves a round")
	}
}
