package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/vectorious/lilbot/internal/bot"
	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/leaderboard"
	"github.com/vectorious/lilbot/internal/record"
)

// newLeaderboardCmd dumps the standings straight from the record store,
// without connecting to Discord.
func newLeaderboardCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "leaderboard",
		Short: "Print the millionaire standings from the record store",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLeaderboard(cmd.Context(), *configPath)
		},
	}
}

func runLeaderboard(ctx context.Context, configPath string) error {
	c, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	store, err := openStore(ctx, c)
	if err != nil {
		return err
	}

	players, err := store.Players(ctx)
	if err != nil {
		return fmt.Errorf("list players: %w", err)
	}

	var entries []leaderboard.Entry
	for _, p := range players {
		games, err := store.History(ctx, p)
		if err != nil {
			return fmt.Errorf("history for %q: %w", p, err)
		}
		if len(games) == 0 {
			continue
		}
		entries = append(entries, leaderboard.Aggregate(games))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	for i, e := range entries {
		fmt.Printf("%2d. %-24s %12s  (best %s, %d games)\n",
			i+1, e.Player, game.FormatDollars(e.Total), game.FormatDollars(e.Highest), e.Games)
	}
	return nil
}

func openStore(ctx context.Context, c bot.Config) (record.Store, error) {
	if c.Postgres.URL == "" {
		dataDir := c.Data.Dir
		if dataDir == "" {
			dataDir = "data"
		}
		return record.NewFileStore(filepath.Join(dataDir, "games")), nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(c.Postgres.URL)
	if err != nil {
		return nil, err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return nil, err
	}
	return record.NewPGStore(db), nil
}
