package news

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/adjacent-research/news-api/internal/config"
)

// Query narrows a provider search.
type Query struct {
	Text  string
	Start time.Time
	End   time.Time
	Limit int
}

// Article is one provider hit.
type Article struct {
	Title         string  `json:"title"`
	URL           string  `json:"url"`
	PublishedDate string  `json:"publishedDate,omitempty"`
	Author        string  `json:"author,omitempty"`
	Score         float64 `json:"score,omitempty"`
}

// Result bundles the provider's hits.
type Result struct {
	Articles []Article `json:"articles"`
}

// Client calls the neural/keyword news-search provider. One attempt per
// request; the caller translates failures.
type Client struct {
	cfg    config.News
	client *http.Client
}

// New builds a provider client from config.
func New(cfg config.News) *Client {
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
	}
}

type searchRequest struct {
	Query              string   `json:"query"`
	NumResults         int      `json:"numResults"`
	StartPublishedDate string   `json:"startPublishedDate,omitempty"`
	EndPublishedDate   string   `json:"endPublishedDate,omitempty"`
	ExcludeDomains     []string `json:"excludeDomains,omitempty"`
	UseAutoprompt      bool     `json:"useAutoprompt"`
}

type searchResponse struct {
	Results []Article `json:"results"`
}

// Search forwards the query to the provider. A zero Start/End falls back to
// the configured window ending now; Limit is clamped to the configured
// bounds.
func (c *Client) Search(ctx context.Context, q Query) (*Result, error) {
	text := strings.TrimSpace(q.Text)
	if text == "" {
		return nil, fmt.Errorf("empty query")
	}

	end := q.End
	if end.IsZero() {
		end = time.Now().UTC()
	}
	start := q.Start
	if start.IsZero() {
		start = end.Add(-c.cfg.Window)
	}

	limit := q.Limit
	if limit <= 0 {
		limit = c.cfg.DefaultLimit
	}
	if limit > c.cfg.MaxLimit {
		limit = c.cfg.MaxLimit
	}

	body := searchRequest{
		Query:              text,
		NumResults:         limit,
		StartPublishedDate: start.UTC().Format("2006-01-02"),
		EndPublishedDate:   end.UTC().Format("2006-01-02"),
		ExcludeDomains:     c.cfg.ExcludeDomains,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("x-api-key", c.cfg.APIKey)
	}

	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search news: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("provider returned %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode provider response: %w", err)
	}

	articles := parsed.Results
	if articles == nil {
		articles = []Article{}
	}

	return &Result{Articles: articles}, nil
}
