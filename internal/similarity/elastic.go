package similarity

import (
	"context"

	"github.com/adjacent-research/news-api/internal/elasticsearch"
	"github.com/adjacent-research/news-api/internal/models"
)

// TitleSearcher is the slice of the Elasticsearch client this strategy needs.
type TitleSearcher interface {
	SearchByTitle(ctx context.Context, headline string, size int) ([]elasticsearch.TitleHit, error)
}

// Elastic matches headlines against the mirrored market-title index. Raw
// relevance scores are unbounded, so each hit is reported relative to the
// best hit; the caller threshold then behaves like the other strategies.
type Elastic struct {
	search TitleSearcher
}

// NewElastic builds the index-backed strategy.
func NewElastic(search TitleSearcher) *Elastic {
	return &Elastic{search: search}
}

// Match implements Strategy.
func (e *Elastic) Match(ctx context.Context, headline string, threshold float64, count int) ([]models.SimilarityMatch, error) {
	hits, err := e.search.SearchByTitle(ctx, headline, count)
	if err != nil {
		return nil, err
	}
	if len(hits) == 0 {
		return []models.SimilarityMatch{}, nil
	}

	best := hits[0].Score
	for _, hit := range hits {
		if hit.Score > best {
			best = hit.Score
		}
	}
	if best <= 0 {
		return []models.SimilarityMatch{}, nil
	}

	matches := make([]models.SimilarityMatch, 0, len(hits))
	for _, hit := range hits {
		score := hit.Score / best
		if score < threshold {
			continue
		}
		matches = append(matches, models.SimilarityMatch{
			Market: models.MarketRecord{
				Question: models.Question{Title: hit.Doc.Title},
				Platform: hit.Doc.Platform,
				Status:   hit.Doc.Status,
				Category: hit.Doc.Category,
				URL:      hit.Doc.URL,
			},
			Score: score,
		})
	}

	return matches, nil
}
