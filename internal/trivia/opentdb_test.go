package trivia_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/vectorious/lilbot/internal/errors"
	"github.com/vectorious/lilbot/internal/trivia"
)

// memTokens is an in-memory trivia.TokenStore.
type memTokens struct {
	mu    sync.Mutex
	token string
}

func (s *memTokens) TriviaToken() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *memTokens) SetTriviaToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
}

// fakeAPI is a scripted Open Trivia DB. Each /api.php hit pops the next
// response code; token requests hand out token-1, token-2, ...
type fakeAPI struct {
	mu            sync.Mutex
	questionCodes []int
	tokensIssued  int
	lastQuery     map[string]string
}

func (f *fakeAPI) handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api_token.php", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		f.tokensIssued++
		n := f.tokensIssued
		f.mu.Unlock()

		fmt.Fprintf(w, `{"response_code":0,"token":"token-%d"}`, n)
	})

	mux.HandleFunc("/api.php", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		code := 0
		if len(f.questionCodes) > 0 {
			code = f.questionCodes[0]
			f.questionCodes = f.questionCodes[1:]
		}
		f.lastQuery = map[string]string{}
		for k, v := range r.URL.Query() {
			f.lastQuery[k] = v[0]
		}
		f.mu.Unlock()

		if code != 0 {
			fmt.Fprintf(w, `{"response_code":%d,"results":[]}`, code)
			return
		}

		fmt.Fprint(w, `{"response_code":0,"results":[{
			"category":"General Knowledge",
			"type":"multiple",
			"difficulty":"easy",
			"question":"What does &quot;HTML&quot; stand for?",
			"correct_answer":"Hypertext Markup Language",
			"incorrect_answers":["Hyperlink Text","Home Tool","Hyper Transfer"]
		}]}`)
	})

	mux.HandleFunc("/api_category.php", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"trivia_categories":[{"id":9,"name":"General Knowledge"},{"id":23,"name":"History"}]}`)
	})

	return mux
}

func makeClient(t *testing.T, api *fakeAPI, tokens *memTokens) *trivia.Client {
	srv := httptest.NewServer(api.handler())
	t.Cleanup(srv.Close)

	return trivia.NewClient(trivia.Config{
		HTTPClient: srv.Client(),
		BaseURL:    srv.URL,
		Tokens:     tokens,
	})
}

func TestClient_Questions(t *testing.T) {
	api := &fakeAPI{}
	tokens := &memTokens{}
	c := makeClient(t, api, tokens)

	qs, err := c.Questions(context.Background(), 1,
		trivia.WithCategory(9), trivia.WithDifficulty(trivia.DifficultyEasy))
	require.NoError(t, err)
	require.Len(t, qs, 1)

	q := qs[0]
	require.Equal(t, "General Knowledge", q.Category)
	require.Equal(t, trivia.KindMultiple, q.Kind)
	require.Equal(t, `What does "HTML" stand for?`, q.Prompt, "HTML entities are decoded at ingestion")
	require.Equal(t, "Hypertext Markup Language", q.Correct)
	require.Len(t, q.Incorrect, 3)

	require.Equal(t, "1", api.lastQuery["amount"])
	require.Equal(t, "9", api.lastQuery["category"])
	require.Equal(t, "easy", api.lastQuery["difficulty"])
	require.Equal(t, "multiple", api.lastQuery["type"])
	require.Equal(t, "token-1", api.lastQuery["token"])
	require.Equal(t, "token-1", tokens.TriviaToken(), "the session token is persisted")
}

func TestClient_ReusesStoredToken(t *testing.T) {
	api := &fakeAPI{}
	tokens := &memTokens{token: "stored"}
	c := makeClient(t, api, tokens)

	_, err := c.Questions(context.Background(), 1)
	require.NoError(t, err)

	require.Equal(t, "stored", api.lastQuery["token"])
	require.Zero(t, api.tokensIssued)
}

func TestClient_RefreshesExhaustedTokenOnce(t *testing.T) {
	// Token empty on the first call, success on the retry.
	api := &fakeAPI{questionCodes: []int{4, 0}}
	tokens := &memTokens{token: "exhausted"}
	c := makeClient(t, api, tokens)

	qs, err := c.Questions(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, qs, 1)

	require.Equal(t, 1, api.tokensIssued)
	require.Equal(t, "token-1", tokens.TriviaToken())
}

func TestClient_RefreshFailsHard(t *testing.T) {
	// Token empty twice: one refresh is allowed, the second failure is
	// surfaced.
	api := &fakeAPI{questionCodes: []int{3, 3}}
	tokens := &memTokens{token: "stale"}
	c := makeClient(t, api, tokens)

	_, err := c.Questions(context.Background(), 1)
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.CodeUnavailable))
	require.Equal(t, 1, api.tokensIssued)
}

func TestClient_NoResults(t *testing.T) {
	api := &fakeAPI{questionCodes: []int{1}}
	c := makeClient(t, api, &memTokens{token: "x"})

	_, err := c.Questions(context.Background(), 50)
	require.Error(t, err)
	require.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestClient_Categories(t *testing.T) {
	api := &fakeAPI{}
	c := makeClient(t, api, &memTokens{})

	categories, err := c.Categories(context.Background())
	require.NoError(t, err)
	require.Equal(t, []trivia.Category{
		{ID: 9, Name: "General Knowledge"},
		{ID: 23, Name: "History"},
	}, categories)
}

func TestCodes_RoundTrip(t *testing.T) {
	code, ok := trivia.CategoryCode("General Knowledge")
	require.True(t, ok)
	require.Equal(t, byte(9), code)

	name, ok := trivia.CategoryName(9)
	require.True(t, ok)
	require.Equal(t, "General Knowledge", name)

	_, ok = trivia.CategoryCode("Made Up Category")
	require.False(t, ok)
	_, ok = trivia.CategoryName(255)
	require.False(t, ok)

	kindCode, ok := trivia.KindCode(trivia.KindMultiple)
	require.True(t, ok)
	kind, ok := trivia.KindFromCode(kindCode)
	require.True(t, ok)
	require.Equal(t, trivia.KindMultiple, kind)

	difficultyCode, ok := trivia.DifficultyCode(trivia.DifficultyHard)
	require.True(t, ok)
	difficulty, ok := trivia.DifficultyFromCode(difficultyCode)
	require.True(t, ok)
	require.Equal(t, trivia.DifficultyHard, difficulty)
}
