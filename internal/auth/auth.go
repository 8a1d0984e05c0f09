package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/adjacent-research/news-api/internal/config"
)

// HeaderName carries the caller's key on every authenticated route.
const HeaderName = "X-API-Key"

// ErrKeyNotFound reports an unknown API key.
var ErrKeyNotFound = errors.New("api key not found")

// KeyStore resolves an API key to the caller's plan.
type KeyStore interface {
	Lookup(ctx context.Context, key string) (plan string, err error)
}

// RedisStore looks plans up in the shared user table.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore connects the key store to Redis.
func NewRedisStore(cfg config.Auth) *RedisStore {
	return &RedisStore{
		rdb: redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
		}),
	}
}

// Lookup implements KeyStore. Keys live at apikey:<key> holding the plan.
func (s *RedisStore) Lookup(ctx context.Context, key string) (string, error) {
	plan, err := s.rdb.Get(ctx, "apikey:"+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", fmt.Errorf("lookup api key: %w", err)
	}
	return plan, nil
}

// Ping verifies Redis connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// Middleware gates requests on a valid API key with the required plan.
// A missing key is rejected before any lookup; an unknown key yields 401
// and an insufficient plan 403.
func Middleware(store KeyStore, requiredPlan string, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(HeaderName))
			if key == "" {
				writeError(w, http.StatusUnauthorized, "missing API key")
				return
			}

			plan, err := store.Lookup(r.Context(), key)
			if errors.Is(err, ErrKeyNotFound) {
				writeError(w, http.StatusUnauthorized, "invalid API key")
				return
			}
			if err != nil {
				log.Error("api key lookup", slog.Any("err", err))
				writeError(w, http.StatusInternalServerError, "authorization unavailable")
				return
			}

			if plan != requiredPlan {
				writeError(w, http.StatusForbidden, fmt.Sprintf("plan %q required", requiredPlan))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
