package game

import (
	"fmt"
	"math/rand"
	"sort"
	"strings"

	"github.com/vectorious/lilbot/internal/trivia"
)

// AnswerKey maps letters to answers for one round. Letters are assigned in
// shuffle order starting at 'A' and are never reassigned: removing entries
// leaves gaps, and rendering sorts by letter so the surviving entries keep
// their original positions.
type AnswerKey struct {
	entries map[rune]string
	correct string
}

// BuildAnswerKey shuffles the question's answers and assigns letters.
// Exactly one entry maps to the correct answer.
func BuildAnswerKey(q trivia.Question, rnd *rand.Rand) *AnswerKey {
	answers := q.Answers()
	rnd.Shuffle(len(answers), func(i, j int) {
		answers[i], answers[j] = answers[j], answers[i]
	})

	entries := make(map[rune]string, len(answers))
	for i, answer := range answers {
		entries[rune('A'+i)] = answer
	}

	return &AnswerKey{entries: entries, correct: q.Correct}
}

// Answer returns the answer assigned to letter.
func (k *AnswerKey) Answer(letter rune) (string, bool) {
	answer, ok := k.entries[letter]
	return answer, ok
}

// Has reports whether letter is still assigned.
func (k *AnswerKey) Has(letter rune) bool {
	_, ok := k.entries[letter]
	return ok
}

// Remove deletes every entry whose answer is in values. Absent values are
// a no-op.
func (k *AnswerKey) Remove(values ...string) {
	for letter, answer := range k.entries {
		for _, v := range values {
			if answer == v {
				delete(k.entries, letter)
				break
			}
		}
	}
}

// Len returns the number of remaining entries.
func (k *AnswerKey) Len() int {
	return len(k.entries)
}

// Letters returns the remaining letters in alphabetical order.
func (k *AnswerKey) Letters() []rune {
	letters := make([]rune, 0, len(k.entries))
	for letter := range k.entries {
		letters = append(letters, letter)
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return letters
}

// CorrectLetter returns the letter assigned to the correct answer.
func (k *AnswerKey) CorrectLetter() rune {
	for letter, answer := range k.entries {
		if answer == k.correct {
			return letter
		}
	}

	// The correct answer is never removed by a lifeline.
	panic("answerkey: correct answer missing from key")
}

// Render produces one "A. answer" line per remaining entry, letter-sorted.
func (k *AnswerKey) Render() string {
	var b strings.Builder
	for i, letter := range k.Letters() {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "**%c.** %s", letter, k.entries[letter])
	}
	return b.String()
}
