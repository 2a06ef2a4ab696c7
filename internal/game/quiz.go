package game

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/trivia"
)

const (
	quizTimeout  = 30 * time.Second
	quizBreather = 2 * time.Second

	stopKeyword = "!stop"
)

// Quiz runs a fixed-count open quiz: N independent rounds, any respondent,
// one point per correct answer, no lifelines.
type Quiz struct {
	chat    chat.Chat
	source  trivia.Source
	rnd     *rand.Rand
	sleep   SleepFunc
	timeout time.Duration
}

type QuizConfig struct {
	Chat    chat.Chat
	Source  trivia.Source
	Rand    *rand.Rand
	Sleep   SleepFunc
	Timeout time.Duration
}

func NewQuiz(c QuizConfig) *Quiz {
	g := &Quiz{
		chat:    c.Chat,
		source:  c.Source,
		rnd:     c.Rand,
		sleep:   c.Sleep,
		timeout: c.Timeout,
	}

	if g.sleep == nil {
		g.sleep = defaultSleep
	}
	if g.timeout == 0 {
		g.timeout = quizTimeout
	}

	return g
}

// QuizResult aggregates a finished quiz. Scores are keyed by respondent
// display name; the score belongs to whoever supplied the first qualifying
// answer each round.
type QuizResult struct {
	Rounds  []CompletedRound
	Scores  map[string]int
	Stopped bool
}

// Run plays count rounds, or fewer on !stop. Produces at most one
// CompletedRound per question fetched, never more.
func (g *Quiz) Run(ctx context.Context, channelID string, count int, opts ...trivia.QueryOption) (*QuizResult, error) {
	questions, err := g.source.Questions(ctx, count, opts...)
	if err != nil {
		if perr := g.chat.Present(ctx, channelID, "Unable to retrieve questions."); perr != nil {
			return nil, perr
		}
		return nil, errors.Convert(err)
	}

	result := &QuizResult{Scores: make(map[string]int)}

	for i, q := range questions {
		key := BuildAnswerKey(q, g.rnd)

		prefix := ""
		if count > 1 {
			prefix = fmt.Sprintf("#%d  ", i+1)
		}
		text := fmt.Sprintf("**%s_%s_ (%s)**\n%q\n%s", prefix, q.Category, q.Difficulty, q.Prompt, key.Render())
		if err := g.chat.Present(ctx, channelID, text); err != nil {
			return nil, err
		}

		msg, err := g.chat.Await(ctx, channelID, g.timeout, quizPredicate(key))
		if err != nil {
			return nil, err
		}

		switch {
		case msg == nil:
			if err := g.chat.Present(ctx, channelID, fmt.Sprintf("Noobs. **%s**.", q.Correct)); err != nil {
				return nil, err
			}
			result.Rounds = append(result.Rounds, CompletedRound{Question: q, Outcome: TimedOut})

		case isStop(msg.Content):
			if err := g.chat.Present(ctx, channelID, "k."); err != nil {
				return nil, err
			}
			result.Stopped = true

		default:
			answer, _ := key.Answer(firstLetter(msg.Content))
			if answer == q.Correct {
				text := fmt.Sprintf("%s got it. **%s**.", msg.AuthorName, q.Correct)
				if err := g.chat.Present(ctx, channelID, text); err != nil {
					return nil, err
				}
				result.Scores[msg.AuthorName]++
				result.Rounds = append(result.Rounds, CompletedRound{Question: q, Outcome: AnsweredCorrectly, GivenAnswer: answer})
			} else {
				if err := g.chat.Present(ctx, channelID, fmt.Sprintf("Wrong. **%s**.", q.Correct)); err != nil {
					return nil, err
				}
				result.Rounds = append(result.Rounds, CompletedRound{Question: q, Outcome: AnsweredIncorrectly, GivenAnswer: answer})
			}
		}

		if result.Stopped {
			break
		}
		if i < len(questions)-1 {
			g.sleep(ctx, quizBreather)
		}
	}

	if len(result.Scores) > 0 && count > 1 {
		if err := g.chat.Present(ctx, channelID, FormatScores(result.Scores)); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// quizPredicate admits !stop and letter answers from anyone.
func quizPredicate(key *AnswerKey) func(chat.Message) bool {
	return func(m chat.Message) bool {
		if isStop(m.Content) {
			return true
		}
		return matchesLetter(strings.TrimSpace(m.Content), key)
	}
}

func isStop(content string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(content)), stopKeyword)
}

// FormatScores renders "name: score" pairs, highest first, ties by name.
func FormatScores(scores map[string]int) string {
	names := make([]string, 0, len(scores))
	for name := range scores {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %d", name, scores[name]))
	}
	return strings.Join(parts, ", ")
}
