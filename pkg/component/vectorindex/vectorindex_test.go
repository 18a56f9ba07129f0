package vectorindex

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

func TestRegister(t *testing.T) {
	// The service takes a bare JSON array of {id, embedding} items.
	var got []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/add_chunks", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	err := client.Register(context.Background(), []Vector{
		{ChunkID: "c1", Embedding: []float32{0.1, 0.2}},
		{ChunkID: "c2", Embedding: []float32{0.3, 0.4}},
	})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c1", got[0]["id"])
	assert.Contains(t, got[0], "embedding")
}

func TestRegisterEmptyIsNoop(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})
	require.NoError(t, client.Register(context.Background(), nil))
	assert.False(t, called)
}

func TestSearch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "what is raft", req.Query)
		assert.Equal(t, 5, req.TopK)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results":[
			{"chunkId":"c3","score":0.91},
			{"chunkId":"c1","score":0.76}
		]}`))
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	matches, err := client.Search(context.Background(), "what is raft", 5)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "c3", matches[0].ChunkID)
	assert.InDelta(t, 0.91, matches[0].Score, 1e-9)
}

func TestSearchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.Search(context.Background(), "anything", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}
