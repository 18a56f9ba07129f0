package extractor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/extract", r.URL.Path)

		require.NoError(t, r.ParseMultipartForm(1<<20))
		assert.Equal(t, "doc-1", r.FormValue("doc_id"))
		assert.Equal(t, "pdf", r.FormValue("source_type"))

		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "report.pdf", header.Filename)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"chunks":[
			{"text":"first","embedding":[0.1,0.2]},
			{"text":"second","embedding":[0.3,0.4]}
		]}`))
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	fragments, err := client.Extract(context.Background(), "doc-1", "report.pdf", "pdf", []byte("%PDF-1.4"))
	require.NoError(t, err)
	require.Len(t, fragments, 2)
	assert.Equal(t, "first", fragments[0].Text)
	assert.Equal(t, []float32{0.1, 0.2}, fragments[0].Embedding)
	assert.Equal(t, "second", fragments[1].Text)
}

func TestExtractServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unsupported file type", http.StatusUnprocessableEntity)
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	_, err := client.Extract(context.Background(), "doc-1", "weird.bin", "text", []byte("data"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestExtractContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	client := New(&Options{Endpoint: srv.URL, Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := client.Extract(ctx, "doc-1", "a.txt", "text", []byte("x"))
	require.Error(t, err)
}
