package record

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/game"
)

// PGStore persists game histories in postgres, one row per game. Row
// inserts are atomic, which gives the same no-partial-write guarantee the
// file store gets from rename.
type PGStore struct {
	db *pgxpool.Pool
}

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Migrate creates the games table if needed.
func (s *PGStore) Migrate(ctx context.Context) error {
	const stmt = `
CREATE TABLE IF NOT EXISTS millionaire_games (
	id            BIGSERIAL PRIMARY KEY,
	player        TEXT NOT NULL,
	display_name  TEXT NOT NULL,
	lifelines     SMALLINT NOT NULL,
	rounds        JSONB NOT NULL,
	start_time    BIGINT NOT NULL,
	amount_earned INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS millionaire_games_player_idx ON millionaire_games (player, start_time);`

	_, err := s.db.Exec(ctx, stmt)
	return err
}

func (s *PGStore) Append(ctx context.Context, g Game) error {
	rounds, err := json.Marshal(toRoundsJSON(g.Rounds))
	if err != nil {
		return err
	}

	const stmt = `
INSERT INTO millionaire_games (player, display_name, lifelines, rounds, start_time, amount_earned)
VALUES ($1, $2, $3, $4, $5, $6);`

	_, err = s.db.Exec(ctx, stmt, PlayerKey(g.User), g.User, int16(g.Lifelines), rounds, g.Timestamp, g.AmountEarned)
	return err
}

func (s *PGStore) History(ctx context.Context, player string) ([]Game, error) {
	const stmt = `
SELECT display_name, lifelines, rounds, start_time, amount_earned
FROM millionaire_games
WHERE player = $1
ORDER BY start_time, id;`

	rows, err := s.db.Query(ctx, stmt, PlayerKey(player))
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (Game, error) {
		var (
			g         Game
			lifelines int16
			rounds    []byte
		)
		if err := r.Scan(&g.User, &lifelines, &rounds, &g.Timestamp, &g.AmountEarned); err != nil {
			return Game{}, err
		}

		var dtos []roundJSON
		if err := json.Unmarshal(rounds, &dtos); err != nil {
			return Game{}, errors.New(errors.CodeDataLoss, errors.WithCause(err))
		}
		decoded, err := fromRoundsJSON(dtos)
		if err != nil {
			return Game{}, err
		}

		g.Lifelines = game.Lifeline(lifelines)
		g.Rounds = decoded
		return g, nil
	})
}

func (s *PGStore) Players(ctx context.Context) ([]string, error) {
	const stmt = `SELECT DISTINCT player FROM millionaire_games;`

	rows, err := s.db.Query(ctx, stmt)
	if err != nil {
		return nil, err
	}

	return pgx.CollectRows(rows, func(r pgx.CollectableRow) (string, error) {
		var player string
		err := r.Scan(&player)
		return player, err
	})
}
