package game

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/trivia"
)

const (
	ladderTimeout = 120 * time.Second

	fetchAttempts = 3
	fetchBackoff  = 10 * time.Second
)

var ladderStakes = []int{
	500,
	1000,
	2000,
	3000,
	5000,
	7000,
	10000,
	20000,
	30000,
	50000,
	100000,
	250000,
	500000,
	1000000,
}

// checkpoints: reaching one by a correct answer raises the guaranteed
// walk-away floor even if a later round is missed.
var checkpoints = map[int]bool{
	5000:    true,
	50000:   true,
	1000000: true,
}

// ladderBatches are the question batches fetched before the game starts,
// consumed in increasing-stake order.
var ladderBatches = []struct {
	count      int
	difficulty trivia.Difficulty
}{
	{5, trivia.DifficultyEasy},
	{5, trivia.DifficultyMedium},
	{4, trivia.DifficultyHard},
}

// SleepFunc pauses between retries and rounds; injectable for tests.
type SleepFunc func(ctx context.Context, d time.Duration)

func defaultSleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
	case <-ctx.Done():
	}
}

// Millionaire runs the elimination ladder for a single player: 14 stakes,
// shared lifeline budget, checkpoint floors.
type Millionaire struct {
	chat    chat.Chat
	source  trivia.Source
	rnd     *rand.Rand
	sleep   SleepFunc
	timeout time.Duration
}

type MillionaireConfig struct {
	Chat    chat.Chat
	Source  trivia.Source
	Rand    *rand.Rand
	Sleep   SleepFunc
	Timeout time.Duration
}

func NewMillionaire(c MillionaireConfig) *Millionaire {
	g := &Millionaire{
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
		g.timeout = ladderTimeout
	}

	return g
}

// LadderResult is the completed game, ready to be recorded.
type LadderResult struct {
	PlayerID         string
	PlayerName       string
	LifelinesGranted Lifeline
	Rounds           []CompletedRound
	AmountEarned     int
}

// Run plays a full ladder game. The game terminates on the first walk,
// wrong answer or timeout, or after the last stake is answered correctly.
func (g *Millionaire) Run(ctx context.Context, channelID, playerID, playerName string) (*LadderResult, error) {
	questions, err := g.fetchQuestions(ctx, channelID)
	if err != nil {
		return nil, err
	}

	result := &LadderResult{
		PlayerID:         playerID,
		PlayerName:       playerName,
		LifelinesGranted: AllLifelines,
	}

	intro := fmt.Sprintf("**%s** takes the hot seat. Lifelines: %s (%s, %s). %s to leave with your winnings.",
		playerName, AllLifelines, FiftyFifty.Keyword(), DoubleDip.Keyword(), walkKeyword)
	if err := g.chat.Present(ctx, channelID, intro); err != nil {
		return nil, err
	}

	remaining := AllLifelines
	walkAway := 0 // amount locked in by the last correct answer
	floor := 0    // guaranteed amount from the last checkpoint reached

	gameOver := false
	for i, q := range questions {
		if i >= len(ladderStakes) {
			break
		}
		stake := ladderStakes[i]

		rd := &round{
			chat:      g.chat,
			channelID: channelID,
			playerID:  playerID,
			question:  q,
			stake:     stake,
			timeout:   g.timeout,
			remaining: &remaining,
			rnd:       g.rnd,
		}

		cr, err := rd.run(ctx)
		if err != nil {
			return nil, err
		}
		result.Rounds = append(result.Rounds, cr)

		switch cr.Outcome {
		case AnsweredCorrectly:
			walkAway = stake
			if checkpoints[stake] {
				floor = stake
			}

		case Walked:
			result.AmountEarned = walkAway
			gameOver = true

		default: // AnsweredIncorrectly, TimedOut
			result.AmountEarned = floor
			gameOver = true
		}

		if gameOver {
			break
		}
	}

	if !gameOver {
		result.AmountEarned = walkAway
	}

	text := fmt.Sprintf("%s walks away with %s.", playerName, FormatDollars(result.AmountEarned))
	if err := g.chat.Present(ctx, channelID, text); err != nil {
		return nil, err
	}

	return result, nil
}

// fetchQuestions pre-fetches all three difficulty batches. A batch is
// retried with a fixed backoff; if it still fails the whole game creation
// aborts, so a game can never start with a missing tier.
func (g *Millionaire) fetchQuestions(ctx context.Context, channelID string) ([]trivia.Question, error) {
	var questions []trivia.Question
	for _, batch := range ladderBatches {
		var (
			fetched []trivia.Question
			lastErr error
		)

		for attempt := 1; attempt <= fetchAttempts; attempt++ {
			fetched, lastErr = g.source.Questions(ctx, batch.count, trivia.WithDifficulty(batch.difficulty))
			if lastErr == nil {
				break
			}

			if attempt < fetchAttempts {
				text := fmt.Sprintf("Unable to retrieve questions, please wait... (%d/%d)", attempt, fetchAttempts)
				if err := g.chat.Present(ctx, channelID, text); err != nil {
					return nil, err
				}
				g.sleep(ctx, fetchBackoff)
			}
		}

		if lastErr != nil {
			if err := g.chat.Present(ctx, channelID, "Unable to generate game. Try again later."); err != nil {
				return nil, err
			}
			return nil, errors.New(errors.CodeUnavailable,
				errors.WithMessagef("fetch %s questions: %v", batch.difficulty, lastErr),
				errors.WithCause(lastErr))
		}

		questions = append(questions, fetched...)
	}

	return questions, nil
}
