// Package state holds the bot-wide mutable state that survives restarts:
// the last quoted movie and character, and the trivia session token. It is
// an explicit object passed into command handlers, never a package-level
// variable, so state transitions stay testable.
package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

type data struct {
	LastMovie     string `json:"last_movie"`
	LastCharacter string `json:"last_character"`
	TriviaToken   string `json:"trivia_token"`
}

type State struct {
	path string

	mu sync.Mutex
	d  data
}

// Load reads the state file, creating its directory so later saves land
// somewhere. A missing file yields a fresh state; any other read or parse
// error is returned.
func Load(path string) (*State, error) {
	s := &State{path: path}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(raw, &s.d); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *State) LastMovie() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.LastMovie
}

func (s *State) LastCharacter() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.LastCharacter
}

// SetLastQuote records the movie and character of the quote just served,
// persisting immediately.
func (s *State) SetLastQuote(movie, character string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.LastMovie = movie
	s.d.LastCharacter = character
	return s.save()
}

// TriviaToken implements trivia.TokenStore.
func (s *State) TriviaToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.d.TriviaToken
}

// SetTriviaToken implements trivia.TokenStore. Save failures are swallowed:
// losing a session token costs one extra API call on the next start.
func (s *State) SetTriviaToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.d.TriviaToken = token
	_ = s.save()
}

// save writes atomically; callers hold s.mu.
func (s *State) save() error {
	raw, err := json.Marshal(s.d)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".tmp*")
	if err != nil {
		return err
	}

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}

	return os.Rename(tmp.Name(), s.path)
}
