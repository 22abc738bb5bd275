package analyzer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarityScore(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/v3/score", r.URL.Path)
			assert.Equal(t, "/tmp/cat.jpg", r.URL.Query().Get("file"))
			assert.Equal(t, "a cat on a mat", r.URL.Query().Get("caption"))
			w.Write([]byte(`{"status": "success", "similarity_score": 0.87, "caption": "a cat on a mat"}`))
		}))
		defer ts.Close()

		c := NewSimilarityClient(analyzerFor(t, ts, "clip"), "/v3/score", 5*time.Second)
		score, err := c.Score(context.Background(), "file", "/tmp/cat.jpg", "a cat on a mat")
		require.NoError(t, err)
		assert.InDelta(t, 0.87, score, 1e-9)
	})

	t.Run("non-success status fails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status": "error"}`))
		}))
		defer ts.Close()

		c := NewSimilarityClient(analyzerFor(t, ts, "clip"), "/v3/score", 5*time.Second)
		_, err := c.Score(context.Background(), "file", "/tmp/cat.jpg", "a cat")
		assert.Error(t, err)
	})

	t.Run("score out of range fails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Write([]byte(`{"status": "success", "similarity_score": 1.2}`))
		}))
		defer ts.Close()

		c := NewSimilarityClient(analyzerFor(t, ts, "clip"), "/v3/score", 5*time.Second)
		_, err := c.Score(context.Background(), "file", "/tmp/cat.jpg", "a cat")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "out of range")
	})

	t.Run("http error fails", func(t *testing.T) {
		ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer ts.Close()

		c := NewSimilarityClient(analyzerFor(t, ts, "clip"), "/v3/score", 5*time.Second)
		_, err := c.Score(context.Background(), "url", "http://x/cat.jpg", "a cat")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "502")
	})
}
