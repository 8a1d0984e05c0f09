package markets_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adjacent-research/news-api/internal/markets"
	"github.com/adjacent-research/news-api/internal/models"
)

func record(title, platform, status, category string) models.MarketRecord {
	return models.MarketRecord{
		Question: models.Question{Title: title},
		Platform: platform,
		Status:   status,
		Category: category,
	}
}

func TestFilterIntersectsFields(t *testing.T) {
	records := []models.MarketRecord{
		record("a", "kalshi", "open", "politics"),
		record("b", "polymarket", "open", "politics"),
		record("c", "kalshi", "closed", "politics"),
		record("d", "kalshi", "open", "sports"),
	}

	got := markets.Filter{Platform: "kalshi", Status: "open"}.Apply(records)
	require.Len(t, got, 2)
	require.Equal(t, "a", got[0].Question.Title)
	require.Equal(t, "d", got[1].Question.Title)

	got = markets.Filter{Platform: "kalshi", Status: "open", Category: "politics"}.Apply(records)
	require.Len(t, got, 1)
	require.Equal(t, "a", got[0].Question.Title)
}

func TestFilterEmptyMatchesAll(t *testing.T) {
	records := []models.MarketRecord{record("a", "kalshi", "open", "politics")}
	got := markets.Filter{}.Apply(records)
	require.Equal(t, records, got)
}

func TestWindowBeyondEndIsEmpty(t *testing.T) {
	records := []models.MarketRecord{record("a", "", "", ""), record("b", "", "", "")}

	got := markets.Window(records, 10, 100)
	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestWindowPreservesOrder(t *testing.T) {
	records := make([]models.MarketRecord, 0, 250)
	for i := 0; i < 250; i++ {
		records = append(records, record(string(rune('a'+i%26)), "", "", ""))
	}

	got := markets.Window(records, 0, 100)
	require.Len(t, got, 100)
	require.Equal(t, records[0], got[0])
	require.Equal(t, records[99], got[99])

	tail := markets.Window(records, 200, 100)
	require.Len(t, tail, 50)
	require.Equal(t, records[200], tail[0])
}
