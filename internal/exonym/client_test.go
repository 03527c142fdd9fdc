package exonym

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"landed-titles/internal/cache"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL, 5*time.Second, cache.NewExonymCache(nil))
	c.backoff = time.Millisecond
	return c, &calls
}

func TestGetExonym_FoundAndCached(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Prague", r.URL.Query().Get("titles"))
		assert.Equal(t, "de", r.URL.Query().Get("lllang"))
		w.Write([]byte(`{"query":{"pages":[{"title":"Prague","langlinks":[{"lang":"de","title":"Prag"}]}]}}`))
	})

	ctx := context.Background()
	got, err := c.GetExonym(ctx, "Prague", "de")
	require.NoError(t, err)
	assert.Equal(t, "Prag", got)

	got, err = c.GetExonym(ctx, "Prague", "de")
	require.NoError(t, err)
	assert.Equal(t, "Prag", got)
	assert.Equal(t, int32(1), calls.Load())
}

func TestGetExonym_NotFound(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query":{"pages":[{"title":"Nowhere","missing":true}]}}`))
	})

	_, err := c.GetExonym(context.Background(), "Nowhere", "de")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, int32(1), calls.Load(), "a definitive answer is not retried")
}

func TestGetExonym_RetriesServerErrors(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	})

	_, err := c.GetExonym(context.Background(), "Prague", "de")
	assert.Error(t, err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestTryGetExonym_NeverFails(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"error":{"code":"badvalue","info":"nope"}}`))
	})

	assert.Equal(t, "", c.TryGetExonym(context.Background(), "Prague", "de"))
}
