package game_test

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/trivia"
)

// reply produces the next incoming message given everything presented so
// far, or nil to simulate silence until the wait times out.
type reply func(presented []string) *chat.Message

// scriptedChat feeds a fixed reply script to Await. Replies that don't
// satisfy the predicate are dropped, like chatter flowing past a real
// waiter. An exhausted script times out.
type scriptedChat struct {
	mu        sync.Mutex
	presented []string
	replies   []reply
}

func (c *scriptedChat) Present(_ context.Context, _ string, text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.presented = append(c.presented, text)
	return nil
}

func (c *scriptedChat) Await(_ context.Context, _ string, _ time.Duration, match func(chat.Message) bool) (*chat.Message, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.replies) > 0 {
		next := c.replies[0]
		c.replies = c.replies[1:]

		msg := next(c.presented)
		if msg == nil {
			return nil, nil
		}
		if match(*msg) {
			return msg, nil
		}
	}
	return nil, nil
}

func (c *scriptedChat) transcript() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.presented...)
}

func say(id, name, content string) reply {
	return func([]string) *chat.Message {
		return &chat.Message{AuthorID: id, AuthorName: name, Content: content}
	}
}

// sayAnswer replies with the letter currently assigned to answer,
// recovered from the most recent rendered answer key.
func sayAnswer(t *testing.T, id, name, answer string) reply {
	return func(presented []string) *chat.Message {
		return &chat.Message{AuthorID: id, AuthorName: name, Content: letterFor(t, presented, answer)}
	}
}

// sayPaddedAnswer is sayAnswer with whitespace around the letter, the way
// mobile clients often deliver it.
func sayPaddedAnswer(t *testing.T, id, name, answer string) reply {
	return func(presented []string) *chat.Message {
		return &chat.Message{AuthorID: id, AuthorName: name, Content: " " + letterFor(t, presented, answer) + " "}
	}
}

func silence() reply {
	return func([]string) *chat.Message { return nil }
}

var keyLine = regexp.MustCompile(`^\*\*([A-Z])\.\*\* (.*)$`)

// letterFor finds the letter assigned to answer in the latest key render.
func letterFor(t *testing.T, presented []string, answer string) string {
	t.Helper()

	for i := len(presented) - 1; i >= 0; i-- {
		for _, line := range splitLines(presented[i]) {
			m := keyLine.FindStringSubmatch(line)
			if m != nil && m[2] == answer {
				return m[1]
			}
		}
	}

	t.Fatalf("answer %q not on any presented key", answer)
	return ""
}

// renderedAnswers lists the answers on the latest key render, in letter
// order.
func renderedAnswers(presented []string) []string {
	for i := len(presented) - 1; i >= 0; i-- {
		var answers []string
		for _, line := range splitLines(presented[i]) {
			if m := keyLine.FindStringSubmatch(line); m != nil {
				answers = append(answers, m[2])
			}
		}
		if len(answers) > 0 {
			return answers
		}
	}
	return nil
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	return append(lines, s[start:])
}

// stubSource hands out questions from a queue, after an optional run of
// failures.
type stubSource struct {
	mu       sync.Mutex
	queue    []trivia.Question
	failures int
	calls    int
}

func (s *stubSource) Questions(_ context.Context, count int, _ ...trivia.QueryOption) ([]trivia.Question, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls++
	if s.failures > 0 {
		s.failures--
		return nil, fmt.Errorf("source down")
	}

	if count > len(s.queue) {
		count = len(s.queue)
	}
	out := s.queue[:count]
	s.queue = s.queue[count:]
	return out, nil
}

func question(prompt, correct string, incorrect ...string) trivia.Question {
	return trivia.Question{
		Category:   "General Knowledge",
		Kind:       trivia.KindMultiple,
		Difficulty: trivia.DifficultyEasy,
		Prompt:     prompt,
		Correct:    correct,
		Incorrect:  incorrect,
	}
}

// ladderQuestions builds the 14 questions a full game consumes, each with
// a distinct correct answer "right-N".
func ladderQuestions() []trivia.Question {
	qs := make([]trivia.Question, 0, 14)
	for i := 0; i < 14; i++ {
		qs = append(qs, question(
			fmt.Sprintf("question %d", i+1),
			fmt.Sprintf("right-%d", i+1),
			fmt.Sprintf("wrong-%d-a", i+1),
			fmt.Sprintf("wrong-%d-b", i+1),
			fmt.Sprintf("wrong-%d-c", i+1),
		))
	}
	return qs
}

func noSleep(context.Context, time.Duration) {}
