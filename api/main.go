package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/adjacent-research/news-api/internal/auth"
	"github.com/adjacent-research/news-api/internal/config"
	"github.com/adjacent-research/news-api/internal/elasticsearch"
	"github.com/adjacent-research/news-api/internal/logger"
	"github.com/adjacent-research/news-api/internal/markets"
	"github.com/adjacent-research/news-api/internal/news"
	"github.com/adjacent-research/news-api/internal/similarity"
)

func main() {
	log := logger.New("api")
	cfg, err := config.LoadAPI()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	source := markets.NewSource(cfg.Markets.DataURLs, log)
	cache := markets.NewCache(source, cfg.Markets.CacheTTL)

	srv := &server{
		log:     log,
		cfg:     cfg,
		news:    news.New(cfg.News),
		markets: cache,
	}

	switch cfg.Similarity.Strategy {
	case config.StrategyRemote:
		srv.strategy = similarity.NewRemote(cfg.Similarity)
	case config.StrategyElastic:
		esClient, err := elasticsearch.New(cfg.ElasticsearchAddr, cfg.ElasticsearchIndex, log)
		if err != nil {
			log.Error("init elasticsearch", slog.Any("err", err))
			os.Exit(1)
		}
		srv.strategy = similarity.NewElastic(esClient)
		srv.healthCheck = esClient.Health
	default:
		srv.strategy = similarity.NewLocal(cache)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", auth.HeaderName},
	}))

	r.Get("/health", srv.handleHealth)
	r.Get("/doc", handleOpenAPI)
	r.Get("/ui", handleSwaggerUI)

	r.Route("/api", func(r chi.Router) {
		if cfg.Auth.Required {
			store := auth.NewRedisStore(cfg.Auth)
			r.Use(auth.Middleware(store, cfg.Auth.RequiredPlan, log))
		}
		r.Get("/news/{market}", srv.handleNews)
		r.Get("/markets/{index}", srv.handleMarkets)
		r.Get("/markets/headline/{headline}", srv.handleHeadline)
	})

	r.NotFound(srv.handleNotFound)
	r.MethodNotAllowed(srv.handleNotFound)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      15 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting",
			slog.String("addr", cfg.BindAddr),
			slog.String("similarity_strategy", cfg.Similarity.Strategy),
		)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}
