// Package bot assembles the services into a running Discord bot and owns
// its lifecycle.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/vectorious/lilbot/internal/chat"
	"github.com/vectorious/lilbot/internal/chat/discord"
	"github.com/vectorious/lilbot/internal/event"
	"github.com/vectorious/lilbot/internal/leaderboard"
	"github.com/vectorious/lilbot/internal/quotes"
	"github.com/vectorious/lilbot/internal/record"
	"github.com/vectorious/lilbot/internal/state"
	"github.com/vectorious/lilbot/internal/telemetry"
	"github.com/vectorious/lilbot/internal/trivia"
)

type Config struct {
	Discord struct {
		Token string
	}

	HTTP struct {
		Port int32
	}

	// Redis is optional. With no addresses the leaderboard falls back to
	// an in-process cache.
	Redis struct {
		Addrs  []string
		Pass   string
		Prefix string
	}

	// Postgres is optional. With no URL games are recorded to JSON files
	// under Data.Dir.
	Postgres struct {
		URL string
	}

	Data struct {
		Dir string
	}
}

type Bot struct {
	c Config

	eb *event.Bus

	infra struct {
		redis    redis.UniversalClient
		postgres *pgxpool.Pool
	}

	service struct {
		quotes      *quotes.Library
		trivia      *trivia.Client
		state       *state.State
		records     record.Store
		leaderboard *leaderboard.Service
	}

	session *discordgo.Session
	adapter *discord.Adapter
	router  *Router
	metrics *metrics

	http *http.Server
}

func Init(c Config) (*Bot, error) {
	b := &Bot{c: c}

	b.eb = event.NewBus()
	b.metrics = newMetrics(prometheus.DefaultRegisterer)

	if err := b.initInfra(); err != nil {
		return nil, fmt.Errorf("bot: init infra: %w", err)
	}

	if err := b.initService(); err != nil {
		return nil, fmt.Errorf("bot: init service: %w", err)
	}

	if err := b.initDiscord(); err != nil {
		return nil, fmt.Errorf("bot: init discord: %w", err)
	}

	b.initSubscribers()
	b.initHTTP()
	return b, nil
}

func (b *Bot) initInfra() error {
	if err := b.initRedis(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}

	if err := b.initPostgres(); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}

	return nil
}

func (b *Bot) initRedis() error {
	if len(b.c.Redis.Addrs) == 0 {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	r := redis.NewUniversalClient(&redis.UniversalOptions{
		Addrs:    b.c.Redis.Addrs,
		Password: b.c.Redis.Pass,
	})

	if err := telemetry.MonitorRedis(r); err != nil {
		return err
	}

	if err := r.Ping(ctx).Err(); err != nil {
		return err
	}

	b.infra.redis = r
	return nil
}

func (b *Bot) initPostgres() error {
	if b.c.Postgres.URL == "" {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cc, err := pgxpool.ParseConfig(b.c.Postgres.URL)
	if err != nil {
		return err
	}

	db, err := pgxpool.NewWithConfig(ctx, cc)
	if err != nil {
		return err
	}

	if err := db.Ping(ctx); err != nil {
		return err
	}

	b.infra.postgres = db
	return nil
}

func (b *Bot) initService() error {
	dataDir := b.c.Data.Dir
	if dataDir == "" {
		dataDir = "data"
	}

	st, err := state.Load(filepath.Join(dataDir, "state.json"))
	if err != nil {
		return fmt.Errorf("state: %w", err)
	}
	b.service.state = st

	b.service.trivia = trivia.NewClient(trivia.Config{Tokens: st})

	b.service.quotes = quotes.NewLibrary(quotes.LibraryConfig{
		Dir:      filepath.Join(dataDir, "movies"),
		ListPath: filepath.Join(dataDir, "trivia_movies.json"),
		Rand:     b.newRand(),
	})

	if b.infra.postgres != nil {
		pg := record.NewPGStore(b.infra.postgres)

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := pg.Migrate(ctx); err != nil {
			return fmt.Errorf("record: migrate: %w", err)
		}
		b.service.records = pg
	} else {
		b.service.records = record.NewFileStore(filepath.Join(dataDir, "games"))
	}

	var cache leaderboard.Cache
	if b.infra.redis != nil {
		// Zero TTL defaults to the service's staleness window, so an
		// expired value reads as absent before the age check runs.
		cache = leaderboard.NewRedisCache(b.infra.redis, b.c.Redis.Prefix, 0)
	} else {
		cache = leaderboard.NewMemoryCache()
	}

	b.service.leaderboard = leaderboard.NewService(leaderboard.Config{
		Store: b.service.records,
		Cache: cache,
	})

	return nil
}

func (b *Bot) initDiscord() error {
	session, err := discordgo.New("Bot " + b.c.Discord.Token)
	if err != nil {
		return err
	}

	session.Identify.Intents = discordgo.IntentsGuildMessages | discordgo.IntentMessageContent

	b.session = session
	b.adapter = discord.New(session)

	b.router = NewRouter()
	b.registerCommands()

	session.AddHandler(func(s *discordgo.Session, m *discordgo.MessageCreate) {
		if m.Author == nil || m.Author.Bot {
			return
		}
		if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
			return
		}
		if !strings.HasPrefix(m.Content, "!") {
			return
		}

		msg := chatMessage(m)
		go b.router.Dispatch(context.Background(), m.ChannelID, msg)
	})

	return nil
}

func (b *Bot) initSubscribers() {
	b.eb.Subscribe(EventNameGameCompleted, func(ctx context.Context, e event.Event) error {
		completed, ok := e.(EventGameCompleted)
		if !ok {
			return fmt.Errorf("bot: unexpected event type %T", e)
		}

		b.metrics.gamesCompleted.WithLabelValues(completed.Mode).Inc()
		for _, round := range completed.Game.Rounds {
			b.metrics.rounds.WithLabelValues(round.Outcome.String()).Inc()
		}
		b.metrics.dollarsAwarded.Add(float64(completed.Game.AmountEarned))

		return b.service.leaderboard.Invalidate(ctx)
	})
}

func (b *Bot) initHTTP() {
	e := gin.New()
	e.GET("/metrics", gin.WrapH(promhttp.Handler()))
	pprof.Register(e, "/debug/pprof")
	e.Use(gin.Recovery())

	b.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", b.c.HTTP.Port),
		Handler:           e,
		ReadHeaderTimeout: 60 * time.Second,
	}
}

func (b *Bot) Start() {
	ctx := context.TODO()

	if err := b.session.Open(); err != nil {
		slog.ErrorContext(ctx, "bot: discord gateway connect failed", "error", err)
		panic(err)
	}

	var eg errgroup.Group
	eg.Go(func() error {
		slog.InfoContext(ctx, fmt.Sprintf("bot: HTTP listening on port %d", b.c.HTTP.Port))
		if err := b.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	if err := eg.Wait(); err != nil {
		slog.ErrorContext(ctx, "bot: shutdown with error", "error", err)
	}
}

func (b *Bot) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := b.session.Close(); err != nil {
		slog.ErrorContext(ctx, "bot: close discord session failed", "error", err)
	}

	if err := b.http.Shutdown(ctx); err != nil {
		slog.ErrorContext(ctx, "bot: shutdown HTTP failed", "error", err)
	}

	b.eb.Stop()

	slog.InfoContext(ctx, "bot: shutdown completed")
}

func (b *Bot) newRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func chatMessage(m *discordgo.MessageCreate) chat.Message {
	return chat.Message{
		AuthorID:   m.Author.ID,
		AuthorName: m.Author.Username,
		Content:    m.Content,
	}
}
