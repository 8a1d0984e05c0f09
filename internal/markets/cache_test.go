package markets_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adjacent-research/news-api/internal/markets"
	"github.com/adjacent-research/news-api/internal/models"
)

type stubFetcher struct {
	calls   int
	records []models.MarketRecord
	err     error
}

func (s *stubFetcher) FetchAll(_ context.Context) ([]models.MarketRecord, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func TestCacheServesSnapshotWithinTTL(t *testing.T) {
	src := &stubFetcher{records: []models.MarketRecord{record("a", "", "", "")}}
	cache := markets.NewCache(src, time.Minute)

	first, err := cache.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, first, 1)

	second, err := cache.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Equal(t, 1, src.calls)
}

func TestCacheRefetchesAfterExpiry(t *testing.T) {
	src := &stubFetcher{records: []models.MarketRecord{record("a", "", "", "")}}
	cache := markets.NewCache(src, 10*time.Millisecond)

	_, err := cache.Records(context.Background())
	require.NoError(t, err)

	time.Sleep(15 * time.Millisecond)

	_, err = cache.Records(context.Background())
	require.NoError(t, err)
	require.Equal(t, 2, src.calls)
}

func TestCacheServesStaleOnFetchError(t *testing.T) {
	src := &stubFetcher{records: []models.MarketRecord{record("a", "", "", "")}}
	cache := markets.NewCache(src, 10*time.Millisecond)

	_, err := cache.Records(context.Background())
	require.NoError(t, err)

	src.err = errors.New("dataset unavailable")
	time.Sleep(15 * time.Millisecond)

	got, err := cache.Records(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func TestCacheErrorWithoutSnapshot(t *testing.T) {
	src := &stubFetcher{err: errors.New("dataset unavailable")}
	cache := markets.NewCache(src, time.Minute)

	_, err := cache.Records(context.Background())
	require.Error(t, err)
}
