package markets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/adjacent-research/news-api/internal/models"
)

const fetchConcurrency = 4

// Source fetches the aggregated market dataset from a fixed set of page URLs.
type Source struct {
	urls   []string
	client *http.Client
	log    *slog.Logger
}

// NewSource builds a Source over the configured page URLs.
func NewSource(urls []string, logger *slog.Logger) *Source {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Source{
		urls:   urls,
		client: &http.Client{Timeout: 15 * time.Second},
		log:    logger,
	}
}

// FetchAll downloads every page and concatenates the records in page order.
// Pages are fetched concurrently but the merged sequence preserves the
// dataset order.
func (s *Source) FetchAll(ctx context.Context) ([]models.MarketRecord, error) {
	pages := make([][]models.MarketRecord, len(s.urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fetchConcurrency)

	for i, url := range s.urls {
		i, url := i, url
		g.Go(func() error {
			records, err := s.fetchPage(gctx, url)
			if err != nil {
				return fmt.Errorf("fetch %s: %w", url, err)
			}
			pages[i] = records
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	total := 0
	for _, page := range pages {
		total += len(page)
	}

	all := make([]models.MarketRecord, 0, total)
	for _, page := range pages {
		all = append(all, page...)
	}

	s.log.Debug("dataset fetched",
		slog.Int("pages", len(s.urls)),
		slog.Int("records", len(all)),
	)

	return all, nil
}

func (s *Source) fetchPage(ctx context.Context, url string) ([]models.MarketRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	res, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, fmt.Errorf("unexpected status %d: %s", res.StatusCode, strings.TrimSpace(string(body)))
	}

	var records []models.MarketRecord
	if err := json.NewDecoder(res.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("decode page: %w", err)
	}

	return records, nil
}
