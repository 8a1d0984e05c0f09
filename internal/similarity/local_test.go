package similarity_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adjacent-research/news-api/internal/models"
	"github.com/adjacent-research/news-api/internal/similarity"
)

type staticLister struct {
	records []models.MarketRecord
}

func (s staticLister) Records(_ context.Context) ([]models.MarketRecord, error) {
	return s.records, nil
}

func market(title string) models.MarketRecord {
	return models.MarketRecord{
		Question:  models.Question{Title: title},
		Platform:  "kalshi",
		Embedding: []float64{0.1, 0.2},
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{name: "empty", input: "", want: ""},
		{name: "slug", input: "will-btc-hit-100k", want: "Will Btc Hit 100k"},
		{name: "already spaced", input: "fed cuts rates", want: "Fed Cuts Rates"},
		{name: "extra whitespace", input: "  mixed-case  title ", want: "Mixed Case Title"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, similarity.NormalizeTitle(tt.input))
		})
	}
}

func TestLocalIdenticalHeadlineScoresOne(t *testing.T) {
	strategy := similarity.NewLocal(staticLister{records: []models.MarketRecord{
		market("will-btc-hit-100k"),
		market("fed-cuts-rates-in-march"),
	}})

	matches, err := strategy.Match(context.Background(), "Will Btc Hit 100k", 0.90, 3)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)
	require.Equal(t, "will-btc-hit-100k", matches[0].Market.Question.Title)
	require.Nil(t, matches[0].Market.Embedding)
}

func TestLocalUnrelatedHeadlineExcluded(t *testing.T) {
	strategy := similarity.NewLocal(staticLister{records: []models.MarketRecord{
		market("will-btc-hit-100k"),
	}})

	matches, err := strategy.Match(context.Background(), "Taylor Swift announces tour dates", 0.90, 3)
	require.NoError(t, err)
	require.Empty(t, matches)
}

func TestLocalCapsAndOrdersMatches(t *testing.T) {
	strategy := similarity.NewLocal(staticLister{records: []models.MarketRecord{
		market("fed cuts rates in march 2026"),
		market("fed cuts rates in march"),
		market("fed cuts rates in march!"),
		market("fed cuts rates in march?"),
	}})

	matches, err := strategy.Match(context.Background(), "Fed Cuts Rates In March", 0.5, 3)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	require.InDelta(t, 1.0, matches[0].Score, 1e-9)
	for i := 1; i < len(matches); i++ {
		require.LessOrEqual(t, matches[i].Score, matches[i-1].Score)
	}
}
