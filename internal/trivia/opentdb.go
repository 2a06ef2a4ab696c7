package trivia

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/vectorious/lilbot/internal/errors"
)

const defaultBaseURL = "https://opentdb.com"

// Open Trivia DB response codes.
const (
	respSuccess       = 0
	respNoResults     = 1
	respInvalidParam  = 2
	respTokenNotFound = 3
	respTokenEmpty    = 4
)

// Source supplies trivia questions. A CodeNotFound error means the source
// has no questions for the query; anything else is a transport failure the
// caller may retry.
type Source interface {
	Questions(ctx context.Context, count int, opts ...QueryOption) ([]Question, error)
}

type QueryOption func(*query)

type query struct {
	category   int
	difficulty Difficulty
}

func WithCategory(id int) QueryOption {
	return func(q *query) {
		q.category = id
	}
}

func WithDifficulty(d Difficulty) QueryOption {
	return func(q *query) {
		q.difficulty = d
	}
}

type Category struct {
	ID   int
	Name string
}

// TokenStore persists the Open Trivia DB session token between runs so
// restarting the bot does not reset question de-duplication.
type TokenStore interface {
	TriviaToken() string
	SetTriviaToken(token string)
}

// Client talks to the Open Trivia DB API. It owns the session-token
// lifecycle: a token is requested on demand and refreshed once when the
// API reports it missing or exhausted.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  TokenStore

	mu sync.Mutex
}

type Config struct {
	HTTPClient *http.Client
	BaseURL    string
	Tokens     TokenStore
}

func NewClient(c Config) *Client {
	cl := &Client{
		http:    c.HTTPClient,
		baseURL: c.BaseURL,
		tokens:  c.Tokens,
	}

	if cl.http == nil {
		cl.http = http.DefaultClient
	}
	if cl.baseURL == "" {
		cl.baseURL = defaultBaseURL
	}

	return cl
}

type questionsResponse struct {
	ResponseCode int `json:"response_code"`
	Results      []struct {
		Category         string   `json:"category"`
		Type             string   `json:"type"`
		Difficulty       string   `json:"difficulty"`
		Question         string   `json:"question"`
		CorrectAnswer    string   `json:"correct_answer"`
		IncorrectAnswers []string `json:"incorrect_answers"`
	} `json:"results"`
}

// Questions fetches count multiple-choice questions. The session token is
// refreshed at most once per call; a failed refresh invalidates the cached
// token so the next call starts clean.
func (c *Client) Questions(ctx context.Context, count int, opts ...QueryOption) ([]Question, error) {
	var q query
	for _, opt := range opts {
		opt(&q)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	token, err := c.sessionToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.fetchQuestions(ctx, count, q, token)
	if err != nil {
		return nil, err
	}

	switch resp.ResponseCode {
	case respSuccess:
		return decodeQuestions(resp), nil

	case respNoResults:
		return nil, errors.New(errors.CodeNotFound,
			errors.WithMessagef("no questions available: count=%d category=%d difficulty=%s", count, q.category, q.difficulty))

	case respTokenNotFound, respTokenEmpty:
		token, err = c.refreshToken(ctx)
		if err != nil {
			return nil, err
		}

		resp, err = c.fetchQuestions(ctx, count, q, token)
		if err != nil {
			return nil, err
		}
		if resp.ResponseCode != respSuccess {
			return nil, errors.New(errors.CodeUnavailable,
				errors.WithMessagef("questions API returned code %d after token refresh", resp.ResponseCode))
		}
		return decodeQuestions(resp), nil

	default:
		return nil, errors.New(errors.CodeUnavailable,
			errors.WithMessagef("questions API returned code %d", resp.ResponseCode))
	}
}

func (c *Client) fetchQuestions(ctx context.Context, count int, q query, token string) (*questionsResponse, error) {
	v := url.Values{}
	v.Set("amount", strconv.Itoa(count))
	v.Set("type", string(KindMultiple))
	if q.category != 0 {
		v.Set("category", strconv.Itoa(q.category))
	}
	if q.difficulty != "" {
		v.Set("difficulty", string(q.difficulty))
	}
	if token != "" {
		v.Set("token", token)
	}

	var resp questionsResponse
	if err := c.getJSON(ctx, "/api.php?"+v.Encode(), &resp); err != nil {
		return nil, err
	}

	return &resp, nil
}

func decodeQuestions(resp *questionsResponse) []Question {
	questions := make([]Question, 0, len(resp.Results))
	for _, r := range resp.Results {
		questions = append(questions, NewQuestion(
			r.Category,
			Kind(r.Type),
			Difficulty(r.Difficulty),
			r.Question,
			r.CorrectAnswer,
			r.IncorrectAnswers,
		))
	}
	return questions
}

func (c *Client) sessionToken(ctx context.Context) (string, error) {
	if token := c.tokens.TriviaToken(); token != "" {
		return token, nil
	}

	return c.refreshToken(ctx)
}

func (c *Client) refreshToken(ctx context.Context) (string, error) {
	var resp struct {
		ResponseCode int    `json:"response_code"`
		Token        string `json:"token"`
	}

	if err := c.getJSON(ctx, "/api_token.php?command=request", &resp); err != nil {
		c.tokens.SetTriviaToken("")
		return "", err
	}
	if resp.ResponseCode != respSuccess {
		c.tokens.SetTriviaToken("")
		return "", errors.New(errors.CodeUnavailable,
			errors.WithMessagef("token request returned code %d", resp.ResponseCode))
	}

	c.tokens.SetTriviaToken(resp.Token)
	return resp.Token, nil
}

// Categories lists the available trivia categories.
func (c *Client) Categories(ctx context.Context) ([]Category, error) {
	var resp struct {
		TriviaCategories []struct {
			ID   int    `json:"id"`
			Name string `json:"name"`
		} `json:"trivia_categories"`
	}

	if err := c.getJSON(ctx, "/api_category.php", &resp); err != nil {
		return nil, err
	}

	categories := make([]Category, 0, len(resp.TriviaCategories))
	for _, tc := range resp.TriviaCategories {
		categories = append(categories, Category{ID: tc.ID, Name: tc.Name})
	}
	return categories, nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return errors.New(errors.CodeUnavailable, errors.WithCause(err))
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return errors.New(errors.CodeUnavailable,
			errors.WithMessagef("questions API status %d", res.StatusCode))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return errors.New(errors.CodeUnavailable, errors.WithCause(err))
	}

	return nil
}
