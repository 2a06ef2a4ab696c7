package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/game"
	"github.com/vectorious/lilbot/internal/quotes"
	"github.com/vectorious/lilbot/internal/record"
	"github.com/vectorious/lilbot/internal/trivia"
)

const sourceURL = "https://github.com/vectorious/lilbot"

func (b *Bot) registerCommands() {
	r := b.router

	// Subcommands before their parent.
	r.Handle("!qtrivia add", "Add a title to the quote trivia list.", "!qtrivia add <title>", b.qtriviaAdd)
	r.Handle("!qtrivia clear", "Clear the quote trivia list.", "", b.qtriviaClear)
	r.Handle("!qtrivia remove", "Remove a title from the quote trivia list.", "!qtrivia remove <title>", b.qtriviaRemove)
	r.Handle("!qtrivia list", "List the titles in the quote trivia list.", "", b.qtriviaList)
	r.Handle("!qtrivia", "Play quote trivia.", "!qtrivia [<amount> [title]]", b.qtrivia)

	r.Handle("!quote", "Get a random quote.", "!quote [title]", b.quote)
	r.Handle("!title", "Get the title the last quote was from.", "", b.title)
	r.Handle("!character", "Get the character the last quote was from.", "", b.character)
	r.Handle("!another", "Get another quote from the last title.", "", b.another)
	r.Handle("!count", "Get the amount of quotes a title has.", "!count <title>", b.count)

	r.Handle("!trivia", "Play trivia.", "!trivia [<amount> [category]]", b.trivia)
	r.Handle("!millionaire", "Play _Who Wants to be a Millionaire!_", "", b.millionaire)
	r.Handle("!fastest", "Fastest finger: first correct answer takes the hot seat.", "", b.fastest)
	r.Handle("!leaderboard", "Show the millionaire leaderboard.", "", b.leaderboard)
	r.Handle("!categories", "List all available trivia categories.", "", b.categories)
	r.Handle("!commands", "List all commands associated with the bot.", "", b.commands)
	r.Handle("!source", "Get a link to the GitHub repository.", "", b.source)
}

func (b *Bot) quote(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	var (
		movie *quotes.Movie
		err   error
	)
	if rest != "" {
		movie, err = b.service.quotes.Movie(ctx, rest)
	} else {
		movie, err = b.service.quotes.Random(ctx)
	}
	if err != nil {
		return b.adapter.Present(ctx, channelID, "No results found.")
	}

	q := b.service.quotes.RandomQuote(movie)
	if q == nil {
		return b.adapter.Present(ctx, channelID, fmt.Sprintf("No quotes available for %q.", movie.Title))
	}

	if err := b.service.state.SetLastQuote(movie.Title, q.Character); err != nil {
		slog.WarnContext(ctx, "bot: save state failed", "error", err)
	}
	return b.adapter.Present(ctx, channelID, fmt.Sprintf("%q", q.Text))
}

func (b *Bot) title(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	if t := b.service.state.LastMovie(); t != "" {
		return b.adapter.Present(ctx, channelID, t)
	}
	return b.adapter.Present(ctx, channelID, "There is none.")
}

func (b *Bot) character(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	if c := b.service.state.LastCharacter(); c != "" {
		return b.adapter.Present(ctx, channelID, c)
	}
	return b.adapter.Present(ctx, channelID, "No character available.")
}

func (b *Bot) another(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	title := b.service.state.LastMovie()
	if title == "" {
		return b.adapter.Present(ctx, channelID, "Nothing to nother.")
	}

	movie, err := b.service.quotes.Movie(ctx, title)
	if err != nil {
		return b.adapter.Present(ctx, channelID, "No results found.")
	}

	q := b.service.quotes.RandomQuote(movie)
	if q == nil {
		return b.adapter.Present(ctx, channelID, fmt.Sprintf("No quotes available for %q.", movie.Title))
	}

	if err := b.service.state.SetLastQuote(movie.Title, q.Character); err != nil {
		slog.WarnContext(ctx, "bot: save state failed", "error", err)
	}
	return b.adapter.Present(ctx, channelID, fmt.Sprintf("%q", q.Text))
}

func (b *Bot) count(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	movie, err := b.service.quotes.Movie(ctx, rest)
	if err != nil {
		return b.adapter.Present(ctx, channelID, "No results found.")
	}
	return b.adapter.Present(ctx, channelID, fmt.Sprintf("*%s* has **%d** quotes.", movie.Title, len(movie.Quotes)))
}

func (b *Bot) qtriviaAdd(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	title, added, err := b.service.quotes.AddTriviaTitle(ctx, rest)
	if err != nil {
		return b.adapter.Present(ctx, channelID, "No results found.")
	}
	if !added {
		return b.adapter.Present(ctx, channelID, fmt.Sprintf("*%s* already added to trivia.", title))
	}
	return b.adapter.Present(ctx, channelID, fmt.Sprintf("Added *%s* to trivia.", title))
}

func (b *Bot) qtriviaRemove(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	slug := quotes.Slugify(rest)
	if slug == "" {
		return nil
	}

	removed, err := b.service.quotes.RemoveTriviaTitle(slug)
	if err != nil {
		return err
	}
	if removed == "" {
		return b.adapter.Present(ctx, channelID, fmt.Sprintf("No matches for title %q.", slug))
	}
	return b.adapter.Present(ctx, channelID, fmt.Sprintf("*%s* removed from trivia.", removed))
}

func (b *Bot) qtriviaList(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	titles, err := b.service.quotes.TriviaTitles()
	if err != nil {
		return err
	}
	if len(titles) == 0 {
		return b.adapter.Present(ctx, channelID, "Empty.")
	}

	parts := make([]string, 0, len(titles))
	for _, t := range titles {
		parts = append(parts, fmt.Sprintf("*%s*", t))
	}
	return b.adapter.Present(ctx, channelID, strings.Join(parts, "; "))
}

func (b *Bot) qtriviaClear(_ context.Context, _ string, _ chat.Message, _ string) error {
	return b.service.quotes.ClearTriviaTitles()
}

func (b *Bot) qtrivia(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	count, titleArg := parseCountArg(rest, 1)

	var pool []quotes.Quote
	if titleArg != "" {
		movie, err := b.service.quotes.Movie(ctx, titleArg)
		if err != nil {
			return b.adapter.Present(ctx, channelID, "No results found.")
		}
		for _, q := range movie.Quotes {
			if q.Character != "" {
				pool = append(pool, q)
			}
		}
	} else {
		var failed []string
		var err error
		pool, failed, err = b.service.quotes.TriviaQuotes(ctx)
		if err != nil {
			return err
		}
		for _, title := range failed {
			if err := b.adapter.Present(ctx, channelID, fmt.Sprintf("Error: could not retrieve *%s*.", title)); err != nil {
				return err
			}
		}
	}

	if len(pool) == 0 {
		return b.adapter.Present(ctx, channelID, "No quotes to play with.")
	}

	b.metrics.gamesStarted.WithLabelValues("qtrivia").Inc()
	g := game.NewQuoteQuiz(game.QuoteQuizConfig{Chat: b.adapter, Rand: b.newRand()})
	result, err := g.Run(ctx, channelID, count, pool)
	if err != nil {
		return err
	}

	b.metrics.gamesCompleted.WithLabelValues("qtrivia").Inc()
	slog.InfoContext(ctx, "bot: quote trivia finished", "asked", result.Asked, "stopped", result.Stopped)
	return nil
}

func (b *Bot) trivia(ctx context.Context, channelID string, _ chat.Message, rest string) error {
	count, categoryArg := parseCountArg(rest, 1)

	var opts []trivia.QueryOption
	if categoryArg != "" {
		id, err := strconv.Atoi(categoryArg)
		if err != nil {
			return b.adapter.Present(ctx, channelID, "Categories are numeric, see !categories.")
		}
		opts = append(opts, trivia.WithCategory(id))
	}

	b.metrics.gamesStarted.WithLabelValues("trivia").Inc()
	g := game.NewQuiz(game.QuizConfig{Chat: b.adapter, Source: b.service.trivia, Rand: b.newRand()})
	result, err := g.Run(ctx, channelID, count, opts...)
	if err != nil {
		return err
	}

	b.metrics.gamesCompleted.WithLabelValues("trivia").Inc()
	for _, round := range result.Rounds {
		b.metrics.rounds.WithLabelValues(round.Outcome.String()).Inc()
	}
	return nil
}

func (b *Bot) millionaire(ctx context.Context, channelID string, msg chat.Message, _ string) error {
	return b.runMillionaire(ctx, channelID, msg.AuthorID, msg.AuthorName)
}

func (b *Bot) runMillionaire(ctx context.Context, channelID, playerID, playerName string) error {
	gameID := uuid.NewString()
	slog.InfoContext(ctx, "bot: millionaire started", "game_id", gameID, "player", playerName)
	b.metrics.gamesStarted.WithLabelValues("millionaire").Inc()

	start := time.Now()
	g := game.NewMillionaire(game.MillionaireConfig{Chat: b.adapter, Source: b.service.trivia, Rand: b.newRand()})
	result, err := g.Run(ctx, channelID, playerID, playerName)
	if err != nil {
		return err
	}

	rec := record.Game{
		User:         result.PlayerName,
		Lifelines:    result.LifelinesGranted,
		Rounds:       result.Rounds,
		Timestamp:    start.Unix(),
		AmountEarned: result.AmountEarned,
	}

	if err := b.service.records.Append(ctx, rec); err != nil {
		slog.ErrorContext(ctx, "bot: persist game failed", "game_id", gameID, "error", err)
		if perr := b.adapter.Present(ctx, channelID, "Couldn't save your game."); perr != nil {
			return perr
		}
		return err
	}

	b.eb.Publish(ctx, EventGameCompleted{
		ChannelID: channelID,
		Mode:      "millionaire",
		Game:      rec,
	})
	return nil
}

func (b *Bot) fastest(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	b.metrics.gamesStarted.WithLabelValues("fastest").Inc()

	g := game.NewFastestFinger(game.FastestFingerConfig{Chat: b.adapter, Source: b.service.trivia, Rand: b.newRand()})
	result, err := g.Run(ctx, channelID)
	if err != nil {
		return err
	}
	b.metrics.gamesCompleted.WithLabelValues("fastest").Inc()
	if result.WinnerID == "" {
		return nil
	}

	return b.runMillionaire(ctx, channelID, result.WinnerID, result.WinnerName)
}

func (b *Bot) leaderboard(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	board, age, err := b.service.leaderboard.Board(ctx)
	if err != nil {
		return err
	}
	if len(board.Entries) == 0 {
		return b.adapter.Present(ctx, channelID, "No games on record.")
	}

	lines := make([]string, 0, len(board.Entries)+1)
	for i, e := range board.Entries {
		lines = append(lines, fmt.Sprintf("**%d.** %s — %s (best %s, %d games)",
			i+1, e.Player, game.FormatDollars(e.Total), game.FormatDollars(e.Highest), e.Games))
	}
	if minutes := int(age.Minutes()); minutes > 0 {
		lines = append(lines, fmt.Sprintf("*Last updated %d minutes ago.*", minutes))
	}
	return b.adapter.Present(ctx, channelID, strings.Join(lines, "\n"))
}

func (b *Bot) categories(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	categories, err := b.service.trivia.Categories(ctx)
	if err != nil {
		return b.adapter.Present(ctx, channelID, "Unable to retrieve categories.")
	}

	lines := make([]string, 0, len(categories))
	for _, c := range categories {
		lines = append(lines, fmt.Sprintf("**%d**: *%s*", c.ID, c.Name))
	}
	return b.adapter.Present(ctx, channelID, strings.Join(lines, "\n"))
}

func (b *Bot) commands(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	return b.adapter.Present(ctx, channelID, b.router.Help())
}

func (b *Bot) source(ctx context.Context, channelID string, _ chat.Message, _ string) error {
	return b.adapter.Present(ctx, channelID, sourceURL)
}

// parseCountArg splits "[<n> [rest]]": a leading integer is the count,
// anything after it passes through untouched.
func parseCountArg(rest string, def int) (int, string) {
	rest = strings.TrimSpace(rest)
	if rest == "" {
		return def, ""
	}

	parts := strings.SplitN(rest, " ", 2)
	n, err := strconv.Atoi(parts[0])
	if err != nil {
		return def, rest
	}

	if len(parts) == 2 {
		return n, strings.TrimSpace(parts[1])
	}
	return n, ""
}
