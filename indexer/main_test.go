package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/adjacent-research/news-api/internal/elasticsearch"
	"github.com/adjacent-research/news-api/internal/models"
)

type stubIndexer struct {
	docs        []elasticsearch.MarketDoc
	indexErr    error
	pruneCutoff time.Time
	pruned      bool
}

func (s *stubIndexer) IndexMarket(_ context.Context, doc elasticsearch.MarketDoc) error {
	if s.indexErr != nil {
		return s.indexErr
	}
	s.docs = append(s.docs, doc)
	return nil
}

func (s *stubIndexer) DeleteSyncedBefore(_ context.Context, cutoff time.Time, _ int) (int64, error) {
	s.pruned = true
	s.pruneCutoff = cutoff
	return 2, nil
}

type stubSource struct {
	records []models.MarketRecord
	err     error
}

func (s *stubSource) FetchAll(_ context.Context) ([]models.MarketRecord, error) {
	return s.records, s.err
}

func testRecords() []models.MarketRecord {
	return []models.MarketRecord{
		{Question: models.Question{Title: "will-btc-hit-100k"}, Platform: "kalshi", Status: "open", Category: "crypto"},
		{Question: models.Question{Title: "fed-cuts-rates"}, Platform: "polymarket", Status: "open", Category: "economics"},
	}
}

func TestSyncOnceIndexesAndPrunes(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	idx := &stubIndexer{}
	src := &stubSource{records: testRecords()}

	before := time.Now().UTC()
	syncOnce(context.Background(), log, idx, src)

	require.Len(t, idx.docs, 2)
	require.Equal(t, "will-btc-hit-100k", idx.docs[0].Title)
	require.Equal(t, "kalshi", idx.docs[0].Platform)
	require.False(t, idx.docs[0].SyncedAt.Before(before))

	require.True(t, idx.pruned)
	require.Equal(t, idx.docs[0].SyncedAt, idx.pruneCutoff)
}

func TestSyncOnceSkipsPruneAfterPartialSync(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	idx := &stubIndexer{indexErr: errors.New("index unavailable")}
	src := &stubSource{records: testRecords()}

	syncOnce(context.Background(), log, idx, src)

	require.Empty(t, idx.docs)
	require.False(t, idx.pruned)
}

func TestSyncOnceFetchFailureLeavesIndexUntouched(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	idx := &stubIndexer{}
	src := &stubSource{err: errors.New("dataset down")}

	syncOnce(context.Background(), log, idx, src)

	require.Empty(t, idx.docs)
	require.False(t, idx.pruned)
}

func TestBuildDocIDDeterministic(t *testing.T) {
	a := buildDocID("kalshi", "will-btc-hit-100k")
	b := buildDocID("kalshi", "will-btc-hit-100k")
	require.NotEmpty(t, a)
	require.Equal(t, a, b)

	require.NotEqual(t, a, buildDocID("polymarket", "will-btc-hit-100k"))
	require.NotEqual(t, buildDocID("kalshi", ""), buildDocID("kalshi", ""))
}
