package quotes

import (
	"context"
	"encoding/json"
	"os"
)

// The trivia list is the set of titles quote trivia draws from, stored as
// a JSON array of titles.

// TriviaTitles returns the current trivia list. A missing file is an
// empty list.
func (l *Library) TriviaTitles() ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadTitles()
}

// AddTriviaTitle resolves title through the library and appends it to the
// list. Returns the canonical title and false if it was already present.
func (l *Library) AddTriviaTitle(ctx context.Context, title string) (string, bool, error) {
	m, err := l.Movie(ctx, title)
	if err != nil {
		return "", false, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	titles, err := l.loadTitles()
	if err != nil {
		return "", false, err
	}

	for _, t := range titles {
		if t == m.Title {
			return m.Title, false, nil
		}
	}

	titles = append(titles, m.Title)
	return m.Title, true, l.saveTitles(titles)
}

// RemoveTriviaTitle removes the title matching the given slug. Returns the
// removed title, or empty if nothing matched.
func (l *Library) RemoveTriviaTitle(slug string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	titles, err := l.loadTitles()
	if err != nil {
		return "", err
	}

	for i, t := range titles {
		if Slugify(t) == slug {
			titles = append(titles[:i], titles[i+1:]...)
			return t, l.saveTitles(titles)
		}
	}

	return "", nil
}

// ClearTriviaTitles empties the list.
func (l *Library) ClearTriviaTitles() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.saveTitles([]string{})
}

// TriviaQuotes gathers every quote with a named character from the listed
// titles. Titles that cannot be loaded are returned separately so the
// caller can report them without aborting the game.
func (l *Library) TriviaQuotes(ctx context.Context) ([]Quote, []string, error) {
	titles, err := l.TriviaTitles()
	if err != nil {
		return nil, nil, err
	}

	var (
		pool   []Quote
		failed []string
	)
	for _, title := range titles {
		m, err := l.Movie(ctx, title)
		if err != nil {
			failed = append(failed, title)
			continue
		}

		for _, q := range m.Quotes {
			if q.Character != "" {
				pool = append(pool, q)
			}
		}
	}

	return pool, failed, nil
}

func (l *Library) loadTitles() ([]string, error) {
	data, err := os.ReadFile(l.listPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var titles []string
	if err := json.Unmarshal(data, &titles); err != nil {
		return nil, err
	}
	return titles, nil
}

func (l *Library) saveTitles(titles []string) error {
	data, err := json.Marshal(titles)
	if err != nil {
		return err
	}
	return atomicWrite(l.listPath, data)
}
