package record

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/trivia"
)

// Compact fixed-width encoding: little-endian integers, one-byte
// length-prefixed strings and lists, single-byte lookup codes for
// category, kind, difficulty and stake. Codes are stable across versions;
// an unrecognized byte is a hard decode failure, never a skip.
//
// The round outcome is folded into the given-answer byte:
//
//	-1  correct answer given
//	-2  timed out
//	-3  no answer (walked)
//	>=0 index of the given answer in the incorrect list

const (
	givenCorrect  = -1
	givenTimedOut = -2
	givenNone     = -3
)

var stake2code = map[int]byte{
	500:     0,
	1000:    1,
	2000:    2,
	3000:    3,
	5000:    4,
	7000:    5,
	10000:   6,
	20000:   7,
	30000:   8,
	50000:   9,
	100000:  10,
	250000:  11,
	500000:  12,
	1000000: 13,
}

var code2stake = func() map[byte]int {
	inv := make(map[byte]int, len(stake2code))
	for k, v := range stake2code {
		inv[v] = k
	}
	return inv
}()

// EncodeBinary writes one game in the compact form.
func EncodeBinary(w io.Writer, g Game) error {
	if err := writeString(w, g.User); err != nil {
		return err
	}
	if err := writeU8(w, uint8(g.Lifelines)); err != nil {
		return err
	}
	if len(g.Rounds) > math.MaxUint8 {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("too many rounds: %d", len(g.Rounds)))
	}
	if err := writeU8(w, uint8(len(g.Rounds))); err != nil {
		return err
	}
	for _, r := range g.Rounds {
		if err := encodeRound(w, r); err != nil {
			return err
		}
	}
	if err := writeU32(w, uint32(g.Timestamp)); err != nil {
		return err
	}
	return writeI32(w, int32(g.AmountEarned))
}

// DecodeBinary reads one game in the compact form.
func DecodeBinary(r io.Reader) (Game, error) {
	var g Game

	user, err := readString(r)
	if err != nil {
		return g, err
	}
	g.User = user

	lifelines, err := readU8(r)
	if err != nil {
		return g, err
	}
	g.Lifelines = game.Lifeline(lifelines)

	count, err := readU8(r)
	if err != nil {
		return g, err
	}
	g.Rounds = make([]game.CompletedRound, 0, count)
	for i := 0; i < int(count); i++ {
		round, err := decodeRound(r)
		if err != nil {
			return g, err
		}
		g.Rounds = append(g.Rounds, round)
	}

	ts, err := readU32(r)
	if err != nil {
		return g, err
	}
	g.Timestamp = int64(ts)

	amount, err := readI32(r)
	if err != nil {
		return g, err
	}
	g.AmountEarned = int(amount)

	return g, nil
}

func encodeRound(w io.Writer, r game.CompletedRound) error {
	if err := encodeQuestion(w, r.Question); err != nil {
		return err
	}

	stakeCode, ok := stake2code[r.Stake]
	if !ok {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("stake %d has no code", r.Stake))
	}
	if err := writeU8(w, stakeCode); err != nil {
		return err
	}
	if err := writeU8(w, uint8(r.LifelinesUsed)); err != nil {
		return err
	}

	given, err := givenAnswerIndex(r)
	if err != nil {
		return err
	}
	return writeI8(w, given)
}

func givenAnswerIndex(r game.CompletedRound) (int8, error) {
	switch r.Outcome {
	case game.AnsweredCorrectly:
		return givenCorrect, nil
	case game.TimedOut:
		return givenTimedOut, nil
	case game.Walked:
		return givenNone, nil
	case game.AnsweredIncorrectly:
		for i, a := range r.Question.Incorrect {
			if a == r.GivenAnswer {
				return int8(i), nil
			}
		}
		return 0, errors.New(errors.CodeInvalidArgument,
			errors.WithMessagef("given answer %q not in incorrect set", r.GivenAnswer))
	default:
		return 0, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("unknown outcome %d", r.Outcome))
	}
}

func decodeRound(r io.Reader) (game.CompletedRound, error) {
	var round game.CompletedRound

	q, err := decodeQuestion(r)
	if err != nil {
		return round, err
	}
	round.Question = q

	stakeCode, err := readU8(r)
	if err != nil {
		return round, err
	}
	stake, ok := code2stake[stakeCode]
	if !ok {
		return round, errors.New(errors.CodeDataLoss, errors.WithMessagef("unknown stake code %d", stakeCode))
	}
	round.Stake = stake

	lifelines, err := readU8(r)
	if err != nil {
		return round, err
	}
	round.LifelinesUsed = game.Lifeline(lifelines)

	given, err := readI8(r)
	if err != nil {
		return round, err
	}
	switch {
	case given == givenCorrect:
		round.Outcome = game.AnsweredCorrectly
		round.GivenAnswer = q.Correct
	case given == givenTimedOut:
		round.Outcome = game.TimedOut
	case given == givenNone:
		round.Outcome = game.Walked
	case given >= 0 && int(given) < len(q.Incorrect):
		round.Outcome = game.AnsweredIncorrectly
		round.GivenAnswer = q.Incorrect[given]
	default:
		return round, errors.New(errors.CodeDataLoss, errors.WithMessagef("bad given-answer index %d", given))
	}

	return round, nil
}

func encodeQuestion(w io.Writer, q trivia.Question) error {
	categoryCode, ok := trivia.CategoryCode(q.Category)
	if !ok {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("category %q has no code", q.Category))
	}
	kindCode, ok := trivia.KindCode(q.Kind)
	if !ok {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("kind %q has no code", q.Kind))
	}
	difficultyCode, ok := trivia.DifficultyCode(q.Difficulty)
	if !ok {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("difficulty %q has no code", q.Difficulty))
	}

	for _, b := range []byte{categoryCode, kindCode, difficultyCode} {
		if err := writeU8(w, b); err != nil {
			return err
		}
	}
	if err := writeString(w, q.Prompt); err != nil {
		return err
	}
	if err := writeString(w, q.Correct); err != nil {
		return err
	}

	if len(q.Incorrect) > math.MaxUint8 {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("too many incorrect answers"))
	}
	if err := writeU8(w, uint8(len(q.Incorrect))); err != nil {
		return err
	}
	for _, a := range q.Incorrect {
		if err := writeString(w, a); err != nil {
			return err
		}
	}
	return nil
}

func decodeQuestion(r io.Reader) (trivia.Question, error) {
	var q trivia.Question

	categoryCode, err := readU8(r)
	if err != nil {
		return q, err
	}
	category, ok := trivia.CategoryName(categoryCode)
	if !ok {
		return q, errors.New(errors.CodeDataLoss, errors.WithMessagef("unknown category code %d", categoryCode))
	}
	q.Category = category

	kindCode, err := readU8(r)
	if err != nil {
		return q, err
	}
	kind, ok := trivia.KindFromCode(kindCode)
	if !ok {
		return q, errors.New(errors.CodeDataLoss, errors.WithMessagef("unknown kind code %d", kindCode))
	}
	q.Kind = kind

	difficultyCode, err := readU8(r)
	if err != nil {
		return q, err
	}
	difficulty, ok := trivia.DifficultyFromCode(difficultyCode)
	if !ok {
		return q, errors.New(errors.CodeDataLoss, errors.WithMessagef("unknown difficulty code %d", difficultyCode))
	}
	q.Difficulty = difficulty

	if q.Prompt, err = readString(r); err != nil {
		return q, err
	}
	if q.Correct, err = readString(r); err != nil {
		return q, err
	}

	count, err := readU8(r)
	if err != nil {
		return q, err
	}
	q.Incorrect = make([]string, 0, count)
	for i := 0; i < int(count); i++ {
		a, err := readString(r)
		if err != nil {
			return q, err
		}
		q.Incorrect = append(q.Incorrect, a)
	}

	return q, nil
}

func writeU8(w io.Writer, n uint8) error {
	_, err := w.Write([]byte{n})
	return err
}

func writeI8(w io.Writer, n int8) error {
	return writeU8(w, uint8(n))
}

func writeU32(w io.Writer, n uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

func writeI32(w io.Writer, n int32) error {
	return writeU32(w, uint32(n))
}

func writeString(w io.Writer, s string) error {
	if len(s) > math.MaxUint8 {
		return errors.New(errors.CodeInvalidArgument, errors.WithMessagef("string too long: %d bytes", len(s)))
	}
	if err := writeU8(w, uint8(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readU8(r io.Reader) (uint8, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.New(errors.CodeDataLoss, errors.WithCause(err))
	}
	return buf[0], nil
}

func readI8(r io.Reader) (int8, error) {
	b, err := readU8(r)
	return int8(b), err
}

func readU32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, errors.New(errors.CodeDataLoss, errors.WithCause(err))
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func readI32(r io.Reader) (int32, error) {
	n, err := readU32(r)
	return int32(n), err
}

func readString(r io.Reader) (string, error) {
	length, err := readU8(r)
	if err != nil {
		return "", err
	}

	buf := make([]byte, length)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", errors.New(errors.CodeDataLoss, errors.WithCause(err))
	}
	return string(buf), nil
}
