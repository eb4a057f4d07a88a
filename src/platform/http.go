package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/pulseworks/pulsebot/src/webclient"
)

const defaultTimeout = 20 * time.Second

// HTTPClient talks to the platform's REST API with bearer auth.
type HTTPClient struct {
	endpoint   string
	token      string
	language   string
	httpClient *http.Client
	sanitizer  *bluemonday.Policy
}

func NewHTTPClient(endpoint, token, language string) *HTTPClient {
	if language == "" {
		language = "en"
	}
	return &HTTPClient{
		endpoint:   strings.TrimRight(endpoint, "/"),
		token:      token,
		language:   language,
		httpClient: webclient.NewDefault(defaultTimeout),
		sanitizer:  bluemonday.StrictPolicy(),
	}
}

type wireCandidate struct {
	ID        string    `json:"id"`
	Text      string    `json:"text"`
	AuthorID  string    `json:"author_id"`
	Author    string    `json:"author_handle"`
	Lang      string    `json:"lang"`
	Likes     int       `json:"like_count"`
	Reposts   int       `json:"repost_count"`
	Replies   int       `json:"reply_count"`
	Quotes    int       `json:"quote_count"`
	CreatedAt time.Time `json:"created_at"`
}

// Search issues a search constrained to original posts in the configured
// language. Transient failures are retried with backoff; auth and rate-limit
// responses surface immediately as typed errors.
func (c *HTTPClient) Search(ctx context.Context, query string, limit int) ([]Candidate, error) {
	if limit <= 0 {
		limit = 20
	}
	params := url.Values{}
	params.Set("q", query)
	params.Set("limit", strconv.Itoa(limit))
	params.Set("lang", c.language)
	params.Set("original", "1")

	endpoint := c.endpoint + "/v1/search?" + params.Encode()

	status, body, err := webclient.DoWithRetry(ctx, 3, 2*time.Second, func() (int, []byte, error) {
		return c.do(ctx, http.MethodGet, endpoint, nil)
	})
	if err != nil {
		return nil, err
	}
	if typed := classify(status, body); typed != nil {
		return nil, typed
	}

	var result struct {
		Results []wireCandidate `json:"results"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("platform: decode search response: %w", err)
	}

	out := make([]Candidate, 0, len(result.Results))
	for _, wc := range result.Results {
		out = append(out, Candidate{
			ID:           wc.ID,
			Text:         c.sanitizer.Sanitize(wc.Text),
			AuthorID:     wc.AuthorID,
			AuthorHandle: wc.Author,
			Language:     wc.Lang,
			Likes:        wc.Likes,
			Reposts:      wc.Reposts,
			Replies:      wc.Replies,
			Quotes:       wc.Quotes,
			CreatedAt:    wc.CreatedAt,
		})
	}
	return out, nil
}

func (c *HTTPClient) Like(ctx context.Context, actorID, targetID string) (*ActionResult, error) {
	return c.action(ctx, "/v1/likes", map[string]string{"actor_id": actorID, "target_id": targetID})
}

func (c *HTTPClient) Repost(ctx context.Context, actorID, targetID string) (*ActionResult, error) {
	return c.action(ctx, "/v1/reposts", map[string]string{"actor_id": actorID, "target_id": targetID})
}

func (c *HTTPClient) Reply(ctx context.Context, actorID, targetID, content string) (*ActionResult, error) {
	return c.action(ctx, "/v1/replies", map[string]string{"actor_id": actorID, "target_id": targetID, "text": content})
}

func (c *HTTPClient) Quote(ctx context.Context, actorID, targetID, content string) (*ActionResult, error) {
	return c.action(ctx, "/v1/quotes", map[string]string{"actor_id": actorID, "target_id": targetID, "text": content})
}

func (c *HTTPClient) Post(ctx context.Context, actorID, content string) (*ActionResult, error) {
	return c.action(ctx, "/v1/posts", map[string]string{"actor_id": actorID, "text": content})
}

func (c *HTTPClient) Follow(ctx context.Context, actorID, targetUserID string) (*ActionResult, error) {
	return c.action(ctx, "/v1/follows", map[string]string{"actor_id": actorID, "target_user_id": targetUserID})
}

// action posts a mutation without retry: side effects are not idempotent, so
// failures are recorded and never replayed within a run.
func (c *HTTPClient) action(ctx context.Context, path string, payload map[string]string) (*ActionResult, error) {
	jsonBody, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	status, body, err := c.do(ctx, http.MethodPost, c.endpoint+path, jsonBody)
	if err != nil {
		return nil, err
	}
	if typed := classify(status, body); typed != nil {
		return nil, typed
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("platform: decode action response: %w", err)
	}
	return &ActionResult{ID: result.ID}, nil
}

func (c *HTTPClient) do(ctx context.Context, method, endpoint string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, nil, err
	}
	return resp.StatusCode, respBody, nil
}

func classify(status int, body []byte) error {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return ErrAuth
	case status == http.StatusTooManyRequests:
		return ErrRateLimited
	case status >= 200 && status < 300:
		return nil
	default:
		return &StatusError{Status: status, Body: string(body)}
	}
}
