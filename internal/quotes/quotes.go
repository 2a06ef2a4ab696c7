// Package quotes holds the movie-quote models and the on-disk quote
// library the quote-trivia mode draws from.
package quotes

import (
	"context"
	"encoding/json"
	"math/rand"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/vectorious/lilbot/internal/errors"
)

// Quote is a single movie quote. Title is the owning movie's title, set
// when the movie is loaded.
type Quote struct {
	Text      string `json:"text"`
	Character string `json:"character"`
	Title     string `json:"-"`
}

// Movie is a title plus its quotes.
type Movie struct {
	Title  string  `json:"title"`
	Quotes []Quote `json:"quotes"`
}

// Source resolves a title to a movie with quotes, typically by scraping a
// remote service. The library consults it only on a cache miss.
type Source interface {
	Lookup(ctx context.Context, title string) (*Movie, error)
}

// Library is a file-backed movie cache plus the trivia title list. Movie
// files are keyed by title slug; concurrent lookups for the same title are
// collapsed with singleflight.
type Library struct {
	dir      string
	listPath string
	source   Source

	rnd *rand.Rand
	sf  singleflight.Group

	mu sync.Mutex // guards trivia list and rnd
}

type LibraryConfig struct {
	// Dir holds one JSON file per cached movie.
	Dir string
	// ListPath is the trivia title list file.
	ListPath string
	// Source fills cache misses; nil means cache-only.
	Source Source
	Rand   *rand.Rand
}

func NewLibrary(c LibraryConfig) *Library {
	return &Library{
		dir:      c.Dir,
		listPath: c.ListPath,
		source:   c.Source,
		rnd:      c.Rand,
	}
}

// Movie returns the cached movie for title, filling the cache from the
// source on a miss.
func (l *Library) Movie(ctx context.Context, title string) (*Movie, error) {
	slug := Slugify(title)
	if slug == "" {
		return nil, errors.New(errors.CodeInvalidArgument, errors.WithMessagef("empty title"))
	}

	if m, err := l.loadFile(slug); err == nil {
		return m, nil
	}

	if l.source == nil {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("no cached movie: %s", title))
	}

	v, err, _ := l.sf.Do(slug, func() (any, error) {
		if m, err := l.loadFile(slug); err == nil {
			return m, nil
		}

		m, err := l.source.Lookup(ctx, title)
		if err != nil {
			return nil, err
		}

		if err := l.saveFile(m); err != nil {
			return nil, err
		}
		return m, nil
	})
	if err != nil {
		return nil, err
	}

	return v.(*Movie), nil
}

// Random returns a random cached movie.
func (l *Library) Random(ctx context.Context) (*Movie, error) {
	names, err := l.movieFiles()
	if err != nil {
		return nil, err
	}
	if len(names) == 0 {
		return nil, errors.New(errors.CodeNotFound, errors.WithMessagef("no cached movies"))
	}

	l.mu.Lock()
	name := names[l.rnd.Intn(len(names))]
	l.mu.Unlock()

	return l.loadFile(name[:len(name)-len(".json")])
}

// RandomQuote picks a random quote from the movie.
func (l *Library) RandomQuote(m *Movie) *Quote {
	if len(m.Quotes) == 0 {
		return nil
	}

	l.mu.Lock()
	q := m.Quotes[l.rnd.Intn(len(m.Quotes))]
	l.mu.Unlock()
	return &q
}

func (l *Library) loadFile(slug string) (*Movie, error) {
	data, err := os.ReadFile(filepath.Join(l.dir, slug+".json"))
	if err != nil {
		return nil, err
	}

	var m Movie
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errors.New(errors.CodeDataLoss,
			errors.WithMessagef("movie file %s corrupt", slug), errors.WithCause(err))
	}

	for i := range m.Quotes {
		m.Quotes[i].Title = m.Title
	}
	return &m, nil
}

func (l *Library) saveFile(m *Movie) error {
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}

	data, err := json.Marshal(m)
	if err != nil {
		return err
	}

	return atomicWrite(filepath.Join(l.dir, Slugify(m.Title)+".json"), data)
}

func (l *Library) movieFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".json" {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

// atomicWrite writes to a temp file in the same directory and renames it
// over the target, so a crash mid-write cannot leave a torn file.
func atomicWrite(path string, data []byte) error {
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
