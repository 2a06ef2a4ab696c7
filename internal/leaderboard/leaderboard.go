// Package leaderboard aggregates persisted game records into a ranked
// board, cached with an explicit staleness window.
package leaderboard

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/vectorious/lilbot/internal/record"
)

const defaultWindow = 5 * time.Minute

// Entry is the derived standing for one player. Never stored; recomputed
// from the player's full history.
type Entry struct {
	Player  string `json:"player"`
	Highest int    `json:"highest"`
	Total   int    `json:"total"`
	Games   int    `json:"games"`
}

// Board is a computed leaderboard snapshot.
type Board struct {
	Entries    []Entry   `json:"entries"`
	ComputedAt time.Time `json:"computed_at"`
}

// Aggregate folds a player's history into an Entry. The display name is
// taken from the most recent game.
func Aggregate(games []record.Game) Entry {
	var e Entry
	for _, g := range games {
		e.Player = g.User
		e.Total += g.AmountEarned
		if g.AmountEarned > e.Highest {
			e.Highest = g.AmountEarned
		}
		e.Games++
	}
	return e
}

// Cache stores a computed board. Get returns nil when nothing usable is
// cached; staleness is the service's concern.
type Cache interface {
	Get(ctx context.Context) (*Board, error)
	Set(ctx context.Context, b Board) error
	Invalidate(ctx context.Context) error
}

type Config struct {
	Store  record.Store
	Cache  Cache
	Window time.Duration
	Now    func() time.Time
}

// Service computes the global leaderboard on demand. A cached board
// younger than the window is served as-is with its age; anything older is
// treated as absent and recomputed. The mutex makes the age-check-then-
// recompute sequence single-flight.
type Service struct {
	store  record.Store
	cache  Cache
	window time.Duration
	now    func() time.Time

	mu sync.Mutex
}

func NewService(c Config) *Service {
	s := &Service{
		store:  c.Store,
		cache:  c.Cache,
		window: c.Window,
		now:    c.Now,
	}

	if s.cache == nil {
		s.cache = NewMemoryCache()
	}
	if s.window == 0 {
		s.window = defaultWindow
	}
	if s.now == nil {
		s.now = time.Now
	}

	return s
}

// Board returns the leaderboard and its age, for "last updated N minutes
// ago" display. A fresh recompute reports age zero.
func (s *Service) Board(ctx context.Context) (*Board, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cached, err := s.cache.Get(ctx)
	if err != nil {
		// A failed cache read only costs a recompute.
		slog.WarnContext(ctx, "leaderboard: cache read failed", "error", err)
		cached = nil
	}

	now := s.now()
	if cached != nil {
		if age := now.Sub(cached.ComputedAt); age < s.window {
			return cached, age, nil
		}
	}

	board, err := s.compute(ctx)
	if err != nil {
		return nil, 0, err
	}

	if err := s.cache.Set(ctx, *board); err != nil {
		slog.WarnContext(ctx, "leaderboard: cache write failed", "error", err)
	}

	return board, 0, nil
}

// Invalidate drops the cached board so the next request recomputes, used
// when a game completes.
func (s *Service) Invalidate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cache.Invalidate(ctx)
}

// compute aggregates every player's history. A player whose history fails
// to decode is skipped and logged; one corrupt file must not take down
// the board for everyone else.
func (s *Service) compute(ctx context.Context) (*Board, error) {
	players, err := s.store.Players(ctx)
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(players))
	for _, player := range players {
		games, err := s.store.History(ctx, player)
		if err != nil {
			slog.WarnContext(ctx, "leaderboard: history unavailable", "player", player, "error", err)
			continue
		}
		if len(games) == 0 {
			continue
		}
		entries = append(entries, Aggregate(games))
	}

	// Stable: ties keep store order.
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].Total > entries[j].Total
	})

	return &Board{Entries: entries, ComputedAt: s.now()}, nil
}
