package opentdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/shovanNITS/Quiz-Generator-App/internal/domain"
	"github.com/sirupsen/logrus"
)

// DefaultBaseURL is the public Open Trivia DB endpoint.
const DefaultBaseURL = "https://opentdb.com/api.php"

const (
	TypeMultiple = "multiple"
	TypeBoolean  = "boolean"
)

// RawQuestion mirrors the OpenTriviaDB question payload.
type RawQuestion struct {
	Type             string   `json:"type"`
	Difficulty       string   `json:"difficulty"`
	Category         string   `json:"category"`
	Question         string   `json:"question"`
	CorrectAnswer    string   `json:"correct_answer"`
	IncorrectAnswers []string `json:"incorrect_answers"`
}

type apiResponse struct {
	ResponseCode int           `json:"response_code"`
	Results      []RawQuestion `json:"results"`
}

// Client issues one GET per quiz request against OpenTDB.
type Client struct {
	http    *http.Client
	baseURL string
	log     logrus.FieldLogger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different api.php endpoint.
func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.baseURL = raw
		}
	}
}

// WithLogger sets the logger used for fallback and response-code notices.
func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func NewClient(httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		http:    httpClient,
		baseURL: DefaultBaseURL,
		log:     logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuestions requests cfg.QuestionCount questions. A non-zero response_code
// yields an empty slice, not an error.
func (c *Client) FetchQuestions(ctx context.Context, cfg domain.QuizConfig) ([]RawQuestion, error) {
	reqURL, err := c.buildURL(cfg)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}

	c.log.WithField("url", reqURL).Debug("fetching questions")
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &domain.FetchError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, &domain.FetchError{StatusCode: resp.StatusCode}
	}

	var payload apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, &domain.FetchError{StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
	}

	if payload.ResponseCode != 0 {
		c.log.WithField("response_code", payload.ResponseCode).Warn("opentdb returned no questions")
		return []RawQuestion{}, nil
	}
	return payload.Results, nil
}

func (c *Client) buildURL(cfg domain.QuizConfig) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse base url: %w", err)
	}

	params, mapped := requestParams(cfg)
	if !mapped {
		c.log.WithField("topic", cfg.Topic).Warn("topic not in category map, requesting random questions")
	}

	base.RawQuery = params.Encode()
	return base.String(), nil
}

// RequestKey identifies the API request a config produces. Configs that differ
// only in ways the API never sees, such as two unmapped topics, share a key.
func RequestKey(cfg domain.QuizConfig) string {
	params, _ := requestParams(cfg)
	return params.Encode()
}

func requestParams(cfg domain.QuizConfig) (url.Values, bool) {
	params := url.Values{}
	params.Set("amount", strconv.Itoa(cfg.QuestionCount))
	if cfg.Difficulty != domain.DifficultyAny {
		params.Set("difficulty", string(cfg.Difficulty))
	}
	if apiType := apiQuestionType(cfg.QuestionType); apiType != "" {
		params.Set("type", apiType)
	}
	id, ok := LookupCategory(cfg.Topic)
	if ok {
		params.Set("category", strconv.Itoa(id))
	}
	return params, ok
}

func apiQuestionType(t domain.QuestionType) string {
	switch t {
	case domain.QuestionTypeMCQ:
		return TypeMultiple
	case domain.QuestionTypeTrueFalse:
		return TypeBoolean
	}
	return ""
}
