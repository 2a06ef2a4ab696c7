package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/quotes"
)

// QuoteQuiz runs fixed-count quote trivia: the bot posts a quote, the
// first respondent to name the speaking character scores. Matching is on
// slugs, so case, diacritics and punctuation don't matter.
type QuoteQuiz struct {
	chat    chat.Chat
	rnd     *rand.Rand
	sleep   SleepFunc
	timeout time.Duration
}

type QuoteQuizConfig struct {
	Chat    chat.Chat
	Rand    *rand.Rand
	Sleep   SleepFunc
	Timeout time.Duration
}

func NewQuoteQuiz(c QuoteQuizConfig) *QuoteQuiz {
	g := &QuoteQuiz{
		chat:    c.Chat,
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

type QuoteResult struct {
	Asked   int
	Scores  map[string]int
	Stopped bool
}

// Run asks up to count quotes sampled from pool. Quotes without a named
// character must be filtered out by the caller.
func (g *QuoteQuiz) Run(ctx context.Context, channelID string, count int, pool []quotes.Quote) (*QuoteResult, error) {
	if count > len(pool) {
		count = len(pool)
	}

	perm := g.rnd.Perm(len(pool))
	picked := make([]quotes.Quote, 0, count)
	for _, i := range perm[:count] {
		picked = append(picked, pool[i])
	}

	result := &QuoteResult{Scores: make(map[string]int)}

	for i, quote := range picked {
		prefix := ""
		if count > 1 {
			prefix = fmt.Sprintf("#%d  ", i+1)
		}
		text := fmt.Sprintf("**%s_%s_**\n%q", prefix, quote.Title, quote.Text)
		if err := g.chat.Present(ctx, channelID, text); err != nil {
			return nil, err
		}

		msg, err := g.chat.Await(ctx, channelID, g.timeout, quotePredicate(quote))
		if err != nil {
			return nil, err
		}
		result.Asked++

		switch {
		case msg == nil:
			text := fmt.Sprintf("Noobs. **%s** - *%s*.", quote.Character, quote.Title)
			if err := g.chat.Present(ctx, channelID, text); err != nil {
				return nil, err
			}

		case isStop(msg.Content):
			if err := g.chat.Present(ctx, channelID, "k."); err != nil {
				return nil, err
			}
			result.Stopped = true

		default:
			text := fmt.Sprintf("%s got it. **%s** - *%s*.", msg.AuthorName, quote.Character, quote.Title)
			if err := g.chat.Present(ctx, channelID, text); err != nil {
				return nil, err
			}
			result.Scores[msg.AuthorName]++
		}

		if result.Stopped {
			break
		}
		if i < len(picked)-1 {
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

// quotePredicate admits !stop and any message naming the quote's
// character, slug-normalized containment.
func quotePredicate(quote quotes.Quote) func(chat.Message) bool {
	characterSlug := quotes.Slugify(quote.Character)

	return func(m chat.Message) bool {
		if isStop(m.Content) {
			return true
		}
		if characterSlug == "" {
			return false
		}
		return strings.Contains(quotes.Slugify(m.Content), characterSlug)
	}
}
