package trivia

import "html"

type Kind string

const (
	KindMultiple Kind = "multiple"
	KindBoolean  Kind = "boolean"
)

type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is an immutable trivia question. Text fields are plain text:
// HTML entities are decoded once, at ingestion.
type Question struct {
	Category   string
	Kind       Kind
	Difficulty Difficulty
	Prompt     string
	Correct    string
	Incorrect  []string
}

// NewQuestion builds a Question from raw (possibly HTML-escaped) fields.
func NewQuestion(category string, kind Kind, difficulty Difficulty, prompt, correct string, incorrect []string) Question {
	plain := make([]string, len(incorrect))
	for i, a := range incorrect {
		plain[i] = html.UnescapeString(a)
	}

	return Question{
		Category:   html.UnescapeString(category),
		Kind:       kind,
		Difficulty: difficulty,
		Prompt:     html.UnescapeString(prompt),
		Correct:    html.UnescapeString(correct),
		Incorrect:  plain,
	}
}

// Answers returns the correct answer followed by the incorrect ones.
func (q Question) Answers() []string {
	answers := make([]string, 0, len(q.Incorrect)+1)
	answers = append(answers, q.Correct)
	answers = append(answers, q.Incorrect...)
	return answers
}
