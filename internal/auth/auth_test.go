package auth_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/adjacent-research/news-api/internal/auth"
)

type stubStore struct {
	plans   map[string]string
	lookups int
	err     error
}

func (s *stubStore) Lookup(_ context.Context, key string) (string, error) {
	s.lookups++
	if s.err != nil {
		return "", s.err
	}
	plan, ok := s.plans[key]
	if !ok {
		return "", auth.ErrKeyNotFound
	}
	return plan, nil
}

func gate(store auth.KeyStore) (http.Handler, *bool) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	reached := false
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})
	return auth.Middleware(store, "pro", log)(next), &reached
}

func TestMissingKeyRejectedBeforeLookup(t *testing.T) {
	store := &stubStore{plans: map[string]string{}}
	handler, reached := gate(store)

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/markets/0", nil))

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, 0, store.lookups)
	require.False(t, *reached)
	require.Contains(t, rec.Body.String(), "missing API key")
}

func TestUnknownKeyRejected(t *testing.T) {
	store := &stubStore{plans: map[string]string{}}
	handler, reached := gate(store)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/0", nil)
	req.Header.Set(auth.HeaderName, "nope")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, *reached)
}

func TestFreePlanForbidden(t *testing.T) {
	store := &stubStore{plans: map[string]string{"key-1": "free"}}
	handler, reached := gate(store)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/0", nil)
	req.Header.Set(auth.HeaderName, "key-1")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	require.False(t, *reached)
}

func TestProPlanAllowed(t *testing.T) {
	store := &stubStore{plans: map[string]string{"key-2": "pro"}}
	handler, reached := gate(store)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/0", nil)
	req.Header.Set(auth.HeaderName, "key-2")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, *reached)
}

func TestStoreFailureIsServerError(t *testing.T) {
	store := &stubStore{err: errors.New("redis down")}
	handler, reached := gate(store)

	req := httptest.NewRequest(http.MethodGet, "/api/markets/0", nil)
	req.Header.Set(auth.HeaderName, "key-3")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	require.False(t, *reached)
}
