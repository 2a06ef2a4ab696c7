package record

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/vectorious/lilbot/internal/errors"
)

// FileStore keeps one JSON history file per player. Appends are
// write-new-then-rename, never truncate-in-place, so a crash mid-write
// cannot corrupt committed history. Writes to the same player's file are
// serialized; different players are independent.
type FileStore struct {
	dir string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{
		dir:   dir,
		locks: make(map[string]*sync.Mutex),
	}
}

func (s *FileStore) Append(ctx context.Context, g Game) error {
	player := PlayerKey(g.User)

	lock := s.playerLock(player)
	lock.Lock()
	defer lock.Unlock()

	games, err := s.read(player)
	if err != nil {
		// Refusing to append keeps whatever is on disk recoverable.
		return err
	}

	games = append(games, g)
	data, err := EncodeJSON(games)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return err
	}
	return s.atomicWrite(s.path(player), data)
}

func (s *FileStore) History(_ context.Context, player string) ([]Game, error) {
	lock := s.playerLock(PlayerKey(player))
	lock.Lock()
	defer lock.Unlock()

	return s.read(player)
}

func (s *FileStore) Players(_ context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var players []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		players = append(players, strings.TrimSuffix(e.Name(), ".json"))
	}
	return players, nil
}

func (s *FileStore) read(player string) ([]Game, error) {
	data, err := os.ReadFile(s.path(player))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	games, err := DecodeJSON(data)
	if err != nil {
		return nil, errors.New(errors.CodeDataLoss,
			errors.WithMessagef("history for %s unreadable", player), errors.WithCause(err))
	}
	return games, nil
}

func (s *FileStore) path(player string) string {
	return filepath.Join(s.dir, PlayerKey(player)+".json")
}

func (s *FileStore) playerLock(player string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[player]
	if !ok {
		lock = new(sync.Mutex)
		s.locks[player] = lock
	}
	return lock
}

func (s *FileStore) atomicWrite(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), path)
}
