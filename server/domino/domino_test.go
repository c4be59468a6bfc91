package domino

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPAnalyzerRankUnlocks(t *testing.T) {
	ctx := context.Background()
	tasks := []TaskRef{
		{ID: 1, Title: "file expenses", Category: "today"},
		{ID: 2, Title: "book flights", Category: "today", Keywords: []string{"travel"}},
	}

	t.Run("ranks a batch", func(t *testing.T) {
		var received rankRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"unlocks":{"1":3,"2":7}}`))
		}))
		defer server.Close()

		analyzer := NewHTTPAnalyzer(server.URL, time.Second)
		unlocks, err := analyzer.RankUnlocks(ctx, tasks)
		require.NoError(t, err)
		assert.Equal(t, map[int32]int{1: 3, 2: 7}, unlocks)
		assert.Equal(t, tasks, received.Tasks)
	})

	t.Run("non-200 status is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		analyzer := NewHTTPAnalyzer(server.URL, time.Second)
		_, err := analyzer.RankUnlocks(ctx, tasks)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("malformed body is an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("not json"))
		}))
		defer server.Close()

		analyzer := NewHTTPAnalyzer(server.URL, time.Second)
		_, err := analyzer.RankUnlocks(ctx, tasks)
		require.Error(t, err)
	})

	t.Run("non-numeric ids are skipped", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"unlocks":{"1":3,"bogus":9}}`))
		}))
		defer server.Close()

		analyzer := NewHTTPAnalyzer(server.URL, time.Second)
		unlocks, err := analyzer.RankUnlocks(ctx, tasks)
		require.NoError(t, err)
		assert.Equal(t, map[int32]int{1: 3}, unlocks)
	})

	t.Run("missing endpoint is an error", func(t *testing.T) {
		analyzer := NewHTTPAnalyzer("", time.Second)
		_, err := analyzer.RankUnlocks(ctx, tasks)
		require.Error(t, err)
	})

	t.Run("timeout surfaces as an error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			time.Sleep(200 * time.Millisecond)
			_, _ = w.Write([]byte(`{"unlocks":{}}`))
		}))
		defer server.Close()

		analyzer := NewHTTPAnalyzer(server.URL, 50*time.Millisecond)
		_, err := analyzer.RankUnlocks(ctx, tasks)
		require.Error(t, err)
	})
}
