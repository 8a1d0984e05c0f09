package main

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/adjacent-research/news-api/internal/config"
	"github.com/adjacent-research/news-api/internal/elasticsearch"
	"github.com/adjacent-research/news-api/internal/logger"
	"github.com/adjacent-research/news-api/internal/markets"
	"github.com/adjacent-research/news-api/internal/models"
)

func main() {
	log := logger.New("indexer")
	cfg, err := config.LoadIndexer()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	// Retry Elasticsearch connection with backoff
	var esClient *elasticsearch.Client
	maxRetries := 10
	retryDelay := 2 * time.Second

	for i := 0; i < maxRetries; i++ {
		esClient, err = elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err == nil {
			pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			pingErr := esClient.Ping(pingCtx)
			cancel()
			if pingErr == nil {
				break
			}
			log.Warn("elasticsearch ping failed, retrying",
				slog.Any("err", pingErr),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
				slog.Duration("retry_in", retryDelay),
			)
		} else {
			log.Warn("failed to create elasticsearch client, retrying",
				slog.Any("err", err),
				slog.Int("attempt", i+1),
				slog.Int("max_retries", maxRetries),
			)
		}

		select {
		case <-time.After(retryDelay):
		case <-ctx.Done():
			log.Info("shutdown signal received during startup")
			os.Exit(0)
		}
		retryDelay *= 2
		if retryDelay > 30*time.Second {
			retryDelay = 30 * time.Second
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if esClient == nil || esClient.Ping(pingCtx) != nil {
		log.Error("failed to connect to elasticsearch after retries")
		os.Exit(1)
	}

	log.Info("connected to elasticsearch")

	source := markets.NewSource(cfg.DataURLs, log)

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	log.Info("indexer running",
		slog.Duration("interval", cfg.Interval),
		slog.Int("pages", len(cfg.DataURLs)),
	)

	syncOnce(ctx, log, esClient, source)

	for {
		select {
		case <-ctx.Done():
			log.Info("shutdown signal received")
			return
		case <-ticker.C:
			syncOnce(ctx, log, esClient, source)
		}
	}
}

type marketIndexer interface {
	IndexMarket(ctx context.Context, doc elasticsearch.MarketDoc) error
	DeleteSyncedBefore(ctx context.Context, cutoff time.Time, batchSize int) (int64, error)
}

type datasetFetcher interface {
	FetchAll(ctx context.Context) ([]models.MarketRecord, error)
}

// syncOnce mirrors the full dataset into the index, then prunes documents
// the current run did not touch.
func syncOnce(ctx context.Context, log *slog.Logger, idx marketIndexer, source datasetFetcher) {
	subCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	runStart := time.Now().UTC()

	records, err := source.FetchAll(subCtx)
	if err != nil {
		log.Warn("dataset fetch failed (will retry on next interval)", slog.Any("err", err))
		return
	}

	indexed := 0
	for _, rec := range records {
		doc := buildDoc(rec, runStart)
		if err := idx.IndexMarket(subCtx, doc); err != nil {
			log.Warn("index market failed",
				slog.Any("err", err),
				slog.String("title", doc.Title),
			)
			continue
		}
		indexed++
	}

	// Pruning after a partial sync would drop markets that only failed to
	// reindex, so skip it unless every record made it in.
	if indexed == len(records) {
		deleted, err := idx.DeleteSyncedBefore(subCtx, runStart, 500)
		if err != nil {
			log.Warn("prune failed", slog.Any("err", err))
		} else if deleted > 0 {
			log.Info("pruned delisted markets", slog.Int64("deleted", deleted))
		}
	}

	log.Info("sync completed",
		slog.Int("records", len(records)),
		slog.Int("indexed", indexed),
	)
}

func buildDoc(rec models.MarketRecord, syncedAt time.Time) elasticsearch.MarketDoc {
	return elasticsearch.MarketDoc{
		ID:       buildDocID(rec.Platform, rec.Question.Title),
		Title:    rec.Question.Title,
		Platform: rec.Platform,
		Status:   rec.Status,
		Category: rec.Category,
		URL:      rec.URL,
		SyncedAt: syncedAt,
	}
}

// buildDocID hashes the stable fields so resyncs overwrite instead of
// duplicating. Records without a title get a random ID.
func buildDocID(platform, title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return uuid.NewString()
	}
	s := sha1.Sum([]byte(platform + "|" + title))
	return hex.EncodeToString(s[:])
}
