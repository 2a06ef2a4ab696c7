package record

import (
	"encoding/json"

	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/trivia"
)

// JSON layout of a player's history file: an array of games. Outcome
// ordinals follow game.Outcome (walked=0, correct=1, incorrect=2,
// timed out=3) and are the same ordinals the binary codec uses.

type questionJSON struct {
	Category         string   `json:"category"`
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type roundJSON struct {
	Question       questionJSON `json:"question"`
	QuestionAmount int          `json:"question_amount"`
	LifelinesUsed  uint8        `json:"lifelines_used"`
	RoundResult    uint8        `json:"round_result"`
	GivenAnswer    string       `json:"given_answer,omitempty"`
}

type gameJSON struct {
	User         string      `json:"user"`
	Lifelines    uint8       `json:"lifelines"`
	Rounds       []roundJSON `json:"rounds"`
	Timestamp    int64       `json:"timestamp"`
	AmountEarned int         `json:"amount_earned"`
}

// EncodeJSON serializes a player's full history.
func EncodeJSON(games []Game) ([]byte, error) {
	dtos := make([]gameJSON, 0, len(games))
	for _, g := range games {
		dtos = append(dtos, toGameJSON(g))
	}
	return json.Marshal(dtos)
}

// DecodeJSON parses a history file. Any malformed entry fails the whole
// file with CodeDataLoss.
func DecodeJSON(data []byte) ([]Game, error) {
	var dtos []gameJSON
	if err := json.Unmarshal(data, &dtos); err != nil {
		return nil, errors.New(errors.CodeDataLoss, errors.WithCause(err))
	}

	games := make([]Game, 0, len(dtos))
	for _, dto := range dtos {
		g, err := fromGameJSON(dto)
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
	return games, nil
}

func toGameJSON(g Game) gameJSON {
	return gameJSON{
		User:         g.User,
		Lifelines:    uint8(g.Lifelines),
		Rounds:       toRoundsJSON(g.Rounds),
		Timestamp:    g.Timestamp,
		AmountEarned: g.AmountEarned,
	}
}

func toRoundsJSON(rounds []game.CompletedRound) []roundJSON {
	dtos := make([]roundJSON, 0, len(rounds))
	for _, r := range rounds {
		dtos = append(dtos, roundJSON{
			Question: questionJSON{
				Category:         r.Question.Category,
				Type:             string(r.Question.Kind),
				Difficulty:       string(r.Question.Difficulty),
				Question:         r.Question.Prompt,
				CorrectAnswer:    r.Question.Correct,
				IncorrectAnswers: r.Question.Incorrect,
			},
			QuestionAmount: r.Stake,
			LifelinesUsed:  uint8(r.LifelinesUsed),
			RoundResult:    uint8(r.Outcome),
			GivenAnswer:    r.GivenAnswer,
		})
	}
	return dtos
}

func fromGameJSON(dto gameJSON) (Game, error) {
	rounds, err := fromRoundsJSON(dto.Rounds)
	if err != nil {
		return Game{}, err
	}

	return Game{
		User:         dto.User,
		Lifelines:    game.Lifeline(dto.Lifelines),
		Rounds:       rounds,
		Timestamp:    dto.Timestamp,
		AmountEarned: dto.AmountEarned,
	}, nil
}

func fromRoundsJSON(dtos []roundJSON) ([]game.CompletedRound, error) {
	rounds := make([]game.CompletedRound, 0, len(dtos))
	for _, dto := range dtos {
		if dto.RoundResult > uint8(game.TimedOut) {
			return nil, errors.New(errors.CodeDataLoss,
				errors.WithMessagef("unknown round result %d", dto.RoundResult))
		}

		rounds = append(rounds, game.CompletedRound{
			Question: trivia.Question{
				Category:   dto.Question.Category,
				Kind:       trivia.Kind(dto.Question.Type),
				Difficulty: trivia.Difficulty(dto.Question.Difficulty),
				Prompt:     dto.Question.Question,
				Correct:    dto.Question.CorrectAnswer,
				Incorrect:  dto.Question.IncorrectAnswers,
			},
			Stake:         dto.QuestionAmount,
			LifelinesUsed: game.Lifeline(dto.LifelinesUsed),
			Outcome:       game.Outcome(dto.RoundResult),
			GivenAnswer:   dto.GivenAnswer,
		})
	}
	return rounds, nil
}
