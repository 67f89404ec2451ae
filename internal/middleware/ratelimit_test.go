package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/universe-app/universe/internal/cache"
)

func newRateLimitedRouter(store cache.Store, max int, window time.Duration) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(store, max, window))
	r.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	return r
}

func TestRateLimitAllowsWithinWindow(t *testing.T) {
	r := newRateLimitedRouter(cache.NewMemoryStore(), 3, time.Minute)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "3", w.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimitBlocksAfterLimit(t *testing.T) {
	r := newRateLimitedRouter(cache.NewMemoryStore(), 2, time.Minute)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	require.NotEmpty(t, w.Header().Get("Retry-After"))
	require.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
}

func TestRateLimitSkipsWithoutStore(t *testing.T) {
	r := newRateLimitedRouter(nil, 1, time.Minute)

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}

type failingStore struct{}

func (failingStore) IncrementWithTTL(context.Context, string, time.Duration) (int64, time.Duration, error) {
	return 0, 0, errors.New("backend down")
}
func (failingStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (failingStore) Get(context.Context, string) ([]byte, bool, error)        { return nil, false, nil }
func (failingStore) Delete(context.Context, ...string) error                  { return nil }
func (failingStore) Close() error                                             { return nil }

func TestRateLimitFailsOpenOnStoreError(t *testing.T) {
	r := newRateLimitedRouter(failingStore{}, 1, time.Minute)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
