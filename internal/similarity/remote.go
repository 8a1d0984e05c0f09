package similarity

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
	"github.com/adjacent-research/news-api/internal/models"
)

// Remote matches headlines through a hosted embedding endpoint and a
// nearest-neighbor RPC. The backend owns the vectors and the ranking; this
// client only plumbs the two calls and strips embeddings from the results.
type Remote struct {
	cfg    config.Similarity
	client *http.Client
}

// NewRemote builds the remote strategy from config.
func NewRemote(cfg config.Similarity) *Remote {
	return &Remote{
		cfg:    cfg,
		client: &http.Client{Timeout: 15 * time.Second},
	}
}

type embedRequest struct {
	Input string `json:"input"`
}

type embedResponse struct {
	Embedding []float64 `json:"embedding"`
}

type matchRequest struct {
	QueryEmbedding []float64 `json:"query_embedding"`
	MatchThreshold float64   `json:"match_threshold"`
	MatchCount     int       `json:"match_count"`
}

type matchRow struct {
	models.MarketRecord
	Similarity float64 `json:"similarity"`
}

// Match implements Strategy.
func (r *Remote) Match(ctx context.Context, headline string, threshold float64, count int) ([]models.SimilarityMatch, error) {
	vector, err := r.embed(ctx, headline)
	if err != nil {
		return nil, fmt.Errorf("embed headline: %w", err)
	}

	rows, err := r.match(ctx, vector, threshold, count)
	if err != nil {
		return nil, fmt.Errorf("match markets: %w", err)
	}

	matches := make([]models.SimilarityMatch, 0, len(rows))
	for _, row := range rows {
		matches = append(matches, models.SimilarityMatch{
			Market: row.MarketRecord.Public(),
			Score:  row.Similarity,
		})
	}

	return matches, nil
}

func (r *Remote) embed(ctx context.Context, text string) ([]float64, error) {
	var parsed embedResponse
	if err := r.post(ctx, r.cfg.EmbedURL, embedRequest{Input: text}, &parsed); err != nil {
		return nil, err
	}
	if len(parsed.Embedding) == 0 {
		return nil, fmt.Errorf("backend returned empty embedding")
	}
	return parsed.Embedding, nil
}

func (r *Remote) match(ctx context.Context, vector []float64, threshold float64, count int) ([]matchRow, error) {
	req := matchRequest{
		QueryEmbedding: vector,
		MatchThreshold: threshold,
		MatchCount:     count,
	}

	var rows []matchRow
	if err := r.post(ctx, r.cfg.MatchURL, req, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Remote) post(ctx context.Context, url string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if r.cfg.APIKey != "" {
		req.Header.Set("apikey", r.cfg.APIKey)
		req.Header.Set("Authorization", "Bearer "+r.cfg.APIKey)
	}

	res, err := r.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return fmt.Errorf("backend returned %d: %s", res.StatusCode, strings.TrimSpace(string(data)))
	}

	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}
