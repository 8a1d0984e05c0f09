package main

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/adjacent-research/news-api/internal/config"
	"github.com/adjacent-research/news-api/internal/markets"
	"github.com/adjacent-research/news-api/internal/models"
	"github.com/adjacent-research/news-api/internal/news"
	"github.com/adjacent-research/news-api/internal/similarity"
)

// User-facing message for news provider failures.
const newsApology = "Sorry, we couldn't fetch news right now. Please try again later."

// Returned in place of an empty match list so callers can distinguish
// "no related markets" from a failed lookup.
const noMatchesMessage = "No related markets found"

type newsSearcher interface {
	Search(ctx context.Context, q news.Query) (*news.Result, error)
}

type marketLister interface {
	Records(ctx context.Context) ([]models.MarketRecord, error)
}

type server struct {
	log         *slog.Logger
	cfg         *config.API
	news        newsSearcher
	markets     marketLister
	strategy    similarity.Strategy
	healthCheck func(ctx context.Context) error
}

type dataResponse struct {
	Data any `json:"data"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type marketsPayload struct {
	Markets []models.MarketRecord `json:"markets"`
	Offset  int                   `json:"offset"`
	Total   int                   `json:"total"`
}

type headlinePayload struct {
	Headline string                   `json:"headline"`
	Matches  []models.SimilarityMatch `json:"matches"`
	Message  string                   `json:"message,omitempty"`
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if s.healthCheck != nil {
		if err := s.healthCheck(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleNews(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 15*time.Second)
	defer cancel()

	market := pathParam(r, "market")
	if market == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "market description is required"})
		return
	}

	q := news.Query{
		Text:  market,
		Limit: clampInt(r.URL.Query().Get("limit"), s.cfg.News.DefaultLimit, s.cfg.News.MaxLimit),
	}
	if start := parseDate(r.URL.Query().Get("start")); start != nil {
		q.Start = *start
	}
	if end := parseDate(r.URL.Query().Get("end")); end != nil {
		q.End = *end
	}

	result, err := s.news.Search(ctx, q)
	if err != nil {
		s.log.Error("news search", slog.Any("err", err), slog.String("market", market))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: newsApology})
		return
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: result})
}

func (s *server) handleMarkets(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	offset, err := strconv.Atoi(chi.URLParam(r, "index"))
	if err != nil || offset < 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "offset must be a non-negative integer"})
		return
	}

	records, err := s.markets.Records(ctx)
	if err != nil {
		s.log.Error("fetch markets", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "market data unavailable"})
		return
	}

	filter := markets.Filter{
		Platform: strings.TrimSpace(r.URL.Query().Get("platform")),
		Status:   strings.TrimSpace(r.URL.Query().Get("status")),
		Category: strings.TrimSpace(r.URL.Query().Get("category")),
	}
	filtered := filter.Apply(records)
	window := markets.Window(filtered, offset, s.cfg.Markets.PageWindow)

	out := make([]models.MarketRecord, 0, len(window))
	for _, rec := range window {
		out = append(out, rec.Public())
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: marketsPayload{
		Markets: out,
		Offset:  offset,
		Total:   len(filtered),
	}})
}

func (s *server) handleHeadline(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 20*time.Second)
	defer cancel()

	headline := pathParam(r, "headline")
	if headline == "" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "headline is required"})
		return
	}

	threshold := clampFloat(r.URL.Query().Get("threshold"), s.cfg.Similarity.Threshold)
	count := clampInt(r.URL.Query().Get("count"), s.cfg.Similarity.Count, 25)

	matches, err := s.strategy.Match(ctx, headline, threshold, count)
	if err != nil {
		s.log.Error("headline match", slog.Any("err", err), slog.String("headline", headline))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "similarity backend unavailable"})
		return
	}
	if matches == nil {
		matches = []models.SimilarityMatch{}
	}

	payload := headlinePayload{Headline: headline, Matches: matches}
	if len(matches) == 0 {
		payload.Message = noMatchesMessage
	}

	writeJSON(w, http.StatusOK, dataResponse{Data: payload})
}

func (s *server) handleNotFound(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusNotFound, errorResponse{Error: "not found"})
}

func pathParam(r *http.Request, name string) string {
	raw := chi.URLParam(r, name)
	if decoded, err := url.PathUnescape(raw); err == nil {
		raw = decoded
	}
	return strings.TrimSpace(raw)
}

func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if ts, err := time.Parse("2006-01-02", raw); err == nil {
		return &ts
	}
	return nil
}

func clampInt(raw string, fallback, max int) int {
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	if value <= 0 {
		return fallback
	}
	if value > max {
		return max
	}
	return value
}

func clampFloat(raw string, fallback float64) float64 {
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	if value <= 0 || value > 1 {
		return fallback
	}
	return value
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
