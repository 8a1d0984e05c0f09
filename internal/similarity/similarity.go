// Package similarity ranks prediction markets against a news headline.
// Three interchangeable strategies exist: a lexical comparison over market
// titles, a remote embedding + nearest-neighbor backend, and a match query
// against a mirrored Elasticsearch index.
package similarity

import (
	"context"

	"github.com/adjacent-research/news-api/internal/models"
)

// Strategy returns the markets most related to a headline. Matches are
// sorted by descending score, include only scores at or above threshold,
// and contain at most count entries. Embedding vectors are never present
// in the returned records.
type Strategy interface {
	Match(ctx context.Context, headline string, threshold float64, count int) ([]models.SimilarityMatch, error)
}
