package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/trivia"
)

// FastestFinger broadcasts a single qualifier question to the channel.
// Every respondent gets exactly one answer; the first correct answer by
// arrival order wins the hot seat.
type FastestFinger struct {
	chat    chat.Chat
	source  trivia.Source
	rnd     *rand.Rand
	timeout time.Duration
	now     func() time.Time
}

type FastestFingerConfig struct {
	Chat    chat.Chat
	Source  trivia.Source
	Rand    *rand.Rand
	Timeout time.Duration
	Now     func() time.Time
}

func NewFastestFinger(c FastestFingerConfig) *FastestFinger {
	g := &FastestFinger{
		chat:    c.Chat,
		source:  c.Source,
		rnd:     c.Rand,
		timeout: c.Timeout,
		now:     c.Now,
	}

	if g.timeout == 0 {
		g.timeout = quizTimeout
	}
	if g.now == nil {
		g.now = time.Now
	}

	return g
}

// FastestResult names the winner, if any, and records per-respondent
// whether their single answer was correct.
type FastestResult struct {
	WinnerID   string
	WinnerName string
	Answered   map[string]bool
}

func (g *FastestFinger) Run(ctx context.Context, channelID string) (*FastestResult, error) {
	qs, err := g.source.Questions(ctx, 1, trivia.WithDifficulty(trivia.DifficultyMedium))
	if err != nil {
		if perr := g.chat.Present(ctx, channelID, "Unable to retrieve questions."); perr != nil {
			return nil, perr
		}
		return nil, errors.Convert(err)
	}
	q := qs[0]

	key := BuildAnswerKey(q, g.rnd)
	text := fmt.Sprintf("**Fastest finger!** First correct answer takes the hot seat.\n%q\n%s", q.Prompt, key.Render())
	if err := g.chat.Present(ctx, channelID, text); err != nil {
		return nil, err
	}

	result := &FastestResult{Answered: make(map[string]bool)}
	deadline := g.now().Add(g.timeout)

	for {
		remaining := deadline.Sub(g.now())
		if remaining <= 0 {
			break
		}

		// Respondents who already answered, correct or not, are invisible
		// for the rest of the round.
		msg, err := g.chat.Await(ctx, channelID, remaining, func(m chat.Message) bool {
			if _, seen := result.Answered[m.AuthorID]; seen {
				return false
			}
			return matchesLetter(strings.TrimSpace(m.Content), key)
		})
		if err != nil {
			return nil, err
		}
		if msg == nil {
			break
		}

		answer, _ := key.Answer(firstLetter(msg.Content))
		correct := answer == q.Correct
		result.Answered[msg.AuthorID] = correct

		if correct {
			result.WinnerID = msg.AuthorID
			result.WinnerName = msg.AuthorName
			text := fmt.Sprintf("%s got it. **%s**.", msg.AuthorName, q.Correct)
			return result, g.chat.Present(ctx, channelID, text)
		}
	}

	text = fmt.Sprintf("No takers. The correct answer was **%s**.", q.Correct)
	return result, g.chat.Present(ctx, channelID, text)
}
