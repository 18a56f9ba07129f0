// Package vectorindex provides a client for the similarity search service.
//
// The index service holds chunk embeddings keyed by chunk ID. Registration
// and search both go over its HTTP surface; the index decides how vectors
// are stored and compared.
package vectorindex

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Vector is one chunk embedding to register with the index.
type Vector struct {
	ChunkID   string    `json:"id"`
	Embedding []float32 `json:"embedding"`
}

// Match is one search hit, ranked by similarity.
type Match struct {
	ChunkID string  `json:"chunkId"`
	Score   float64 `json:"score"`
}

// Client is an HTTP client for the vector index service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       *Options
}

// New creates a vector index client from the given options.
func New(opts *Options) *Client {
	if opts == nil {
		opts = NewOptions()
	}
	return &Client{
		baseURL: opts.Endpoint,
		httpClient: &http.Client{
			Timeout: opts.Timeout,
		},
		opts: opts,
	}
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

type searchResponse struct {
	Results []Match `json:"results"`
}

// Register adds the given vectors to the index. The service takes a bare
// JSON array. Registering zero vectors is a no-op.
func (c *Client) Register(ctx context.Context, vectors []Vector) error {
	if len(vectors) == 0 {
		return nil
	}

	if err := c.post(ctx, "/add_chunks", vectors, nil); err != nil {
		return fmt.Errorf("failed to register vectors: %w", err)
	}
	return nil
}

// Search runs a similarity search for the query text and returns up to
// topK matches ordered by descending similarity.
func (c *Client) Search(ctx context.Context, query string, topK int) ([]Match, error) {
	var out searchResponse
	if err := c.post(ctx, "/search", searchRequest{Query: query, TopK: topK}, &out); err != nil {
		return nil, fmt.Errorf("search failed: %w", err)
	}
	return out.Results, nil
}

func (c *Client) post(ctx context.Context, path string, in, out any) error {
	payload, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("index service returned status %d: %s", resp.StatusCode, string(msg))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}
