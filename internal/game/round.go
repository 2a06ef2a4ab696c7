package game

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"time"
	"unicode"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/trivia"
)

// Outcome is the single result of a completed round. The ordinals are part
// of the persisted record format and must not change.
type Outcome uint8

const (
	Walked Outcome = iota
	AnsweredCorrectly
	AnsweredIncorrectly
	TimedOut
)

var outcome2string = map[Outcome]string{
	Walked:              "walked",
	AnsweredCorrectly:   "correct",
	AnsweredIncorrectly: "incorrect",
	TimedOut:            "timed out",
}

func (o Outcome) String() string {
	if s, ok := outcome2string[o]; ok {
		return s
	}
	return "unknown"
}

// CompletedRound is the immutable result of one resolved round.
type CompletedRound struct {
	Question      trivia.Question
	Stake         int
	LifelinesUsed Lifeline
	Outcome       Outcome

	// GivenAnswer is the answer the player picked, empty for timeouts and
	// walks. Under DoubleDip it is the final pick.
	GivenAnswer string
}

const walkKeyword = "!walk"

// round runs exactly one ladder question to completion:
// Presented -> AwaitingResponse -> (LifelineHandling)* -> Resolved.
type round struct {
	chat      chat.Chat
	channelID string
	playerID  string
	question  trivia.Question
	stake     int
	timeout   time.Duration
	remaining *Lifeline
	rnd       *rand.Rand
}

func (r *round) run(ctx context.Context) (CompletedRound, error) {
	key := BuildAnswerKey(r.question, r.rnd)

	text := fmt.Sprintf("**%s**\n%q\n%s", FormatDollars(r.stake), r.question.Prompt, key.Render())
	if err := r.chat.Present(ctx, r.channelID, text); err != nil {
		return CompletedRound{}, err
	}

	var used Lifeline
	for {
		// Each wait is a fresh bounded wait; lifeline activity does not
		// accumulate timeout budget.
		msg, err := r.chat.Await(ctx, r.channelID, r.timeout, r.predicate(key))
		if err != nil {
			return CompletedRound{}, err
		}
		if msg == nil {
			if err := r.revealTimeout(ctx); err != nil {
				return CompletedRound{}, err
			}
			return r.resolved(used, TimedOut, ""), nil
		}

		content := strings.TrimSpace(msg.Content)
		if strings.HasPrefix(strings.ToLower(content), walkKeyword) {
			return r.resolved(used, Walked, ""), nil
		}

		if lifeline, ok := matchLifeline(content, *r.remaining); ok {
			*r.remaining = r.remaining.Without(lifeline)
			used = used.Union(lifeline)

			switch lifeline {
			case FiftyFifty:
				if err := r.applyFiftyFifty(ctx, key); err != nil {
					return CompletedRound{}, err
				}
				continue

			case DoubleDip:
				outcome, given, err := r.doubleDip(ctx, key)
				if err != nil {
					return CompletedRound{}, err
				}
				return r.resolved(used, outcome, given), nil
			}
		}

		outcome, given, err := r.resolveAnswer(ctx, key, content)
		if err != nil {
			return CompletedRound{}, err
		}
		return r.resolved(used, outcome, given), nil
	}
}

// applyFiftyFifty removes two incorrect answers chosen uniformly from the
// question's original incorrect set. The lifeline is usable once per game,
// so the picks can never have been removed already.
func (r *round) applyFiftyFifty(ctx context.Context, key *AnswerKey) error {
	incorrect := r.question.Incorrect
	if len(incorrect) < 2 {
		panic(fmt.Sprintf("game: 50/50 with %d incorrect answers", len(incorrect)))
	}

	perm := r.rnd.Perm(len(incorrect))
	key.Remove(incorrect[perm[0]], incorrect[perm[1]])

	return r.chat.Present(ctx, r.channelID, "**Remaining answers:**\n"+key.Render())
}

// doubleDip grants at most two resolved picks. The first wrong pick is
// revealed and removed without ending the round; the second pick is final.
func (r *round) doubleDip(ctx context.Context, key *AnswerKey) (Outcome, string, error) {
	msg, err := r.chat.Await(ctx, r.channelID, r.timeout, r.answerPredicate(key))
	if err != nil {
		return 0, "", err
	}
	if msg == nil {
		return TimedOut, "", r.revealTimeout(ctx)
	}

	answer, _ := key.Answer(firstLetter(msg.Content))
	if answer == r.question.Correct {
		return AnsweredCorrectly, answer, r.chat.Present(ctx, r.channelID, "**THAT IS CORRECT.**")
	}

	key.Remove(answer)
	text := fmt.Sprintf("**%s** is not it. One pick left.\n%s", answer, key.Render())
	if err := r.chat.Present(ctx, r.channelID, text); err != nil {
		return 0, "", err
	}

	msg, err = r.chat.Await(ctx, r.channelID, r.timeout, r.answerPredicate(key))
	if err != nil {
		return 0, "", err
	}
	if msg == nil {
		return TimedOut, "", r.revealTimeout(ctx)
	}

	return r.resolveAnswer(ctx, key, msg.Content)
}

func (r *round) resolveAnswer(ctx context.Context, key *AnswerKey, content string) (Outcome, string, error) {
	answer, ok := key.Answer(firstLetter(content))
	if !ok {
		// The predicate only admits letters still on the key.
		panic("game: qualifying answer missing from key")
	}

	if answer == r.question.Correct {
		return AnsweredCorrectly, answer, r.chat.Present(ctx, r.channelID, "**THAT IS CORRECT.**")
	}

	text := fmt.Sprintf("Wrong. The correct answer was **%s**.", r.question.Correct)
	return AnsweredIncorrectly, answer, r.chat.Present(ctx, r.channelID, text)
}

func (r *round) revealTimeout(ctx context.Context) error {
	text := fmt.Sprintf("Time is up. The correct answer was **%s**.", r.question.Correct)
	return r.chat.Present(ctx, r.channelID, text)
}

func (r *round) resolved(used Lifeline, outcome Outcome, given string) CompletedRound {
	return CompletedRound{
		Question:      r.question,
		Stake:         r.stake,
		LifelinesUsed: used,
		Outcome:       outcome,
		GivenAnswer:   given,
	}
}

// predicate admits, from the player only: the walk keyword, keywords of
// still-available lifelines, and letters currently on the key. Everything
// else, including spent-lifeline keywords, is invisible to the wait.
func (r *round) predicate(key *AnswerKey) func(chat.Message) bool {
	return func(m chat.Message) bool {
		if m.AuthorID != r.playerID {
			return false
		}

		content := strings.TrimSpace(m.Content)
		if strings.HasPrefix(strings.ToLower(content), walkKeyword) {
			return true
		}
		if _, ok := matchLifeline(content, *r.remaining); ok {
			return true
		}
		return matchesLetter(content, key)
	}
}

// answerPredicate admits only letter answers, for DoubleDip picks.
func (r *round) answerPredicate(key *AnswerKey) func(chat.Message) bool {
	return func(m chat.Message) bool {
		return m.AuthorID == r.playerID && matchesLetter(strings.TrimSpace(m.Content), key)
	}
}

// matchesLetter reports whether content is a bare letter answer for a
// letter still on the key: "b", "B." and "b)" qualify, "brazil" does not.
func matchesLetter(content string, key *AnswerKey) bool {
	letter := firstLetter(content)
	if !key.Has(letter) {
		return false
	}

	runes := []rune(content)
	if len(runes) > 1 && (unicode.IsLetter(runes[1]) || unicode.IsDigit(runes[1])) {
		return false
	}
	return true
}

// firstLetter skips leading whitespace so resolution sees the same letter
// the trimming predicates admitted.
func firstLetter(content string) rune {
	for _, r := range content {
		if unicode.IsSpace(r) {
			continue
		}
		return unicode.ToUpper(r)
	}
	return 0
}
