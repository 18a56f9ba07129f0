// Package extractor provides a client for the document extraction service.
//
// The extraction service accepts an uploaded file and returns the document
// split into embedded text fragments. It owns parsing, chunking, and
// embedding; this client only speaks its HTTP surface.
package extractor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

// Fragment is one extracted chunk of document text with its embedding.
type Fragment struct {
	Text      string    `json:"text"`
	Embedding []float32 `json:"embedding"`
}

// Client is an HTTP client for the extraction service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       *Options
}

// New creates an extraction service client from the given options.
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

type extractResponse struct {
	Chunks []Fragment `json:"chunks"`
}

// Extract submits the file to the extraction service and returns the
// embedded fragments in document order. The call is a single attempt;
// retry policy belongs to the caller.
func (c *Client) Extract(ctx context.Context, docID, filename, sourceType string, file []byte) ([]Fragment, error) {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to build multipart body: %w", err)
	}
	if _, err := part.Write(file); err != nil {
		return nil, fmt.Errorf("failed to write file content: %w", err)
	}
	if err := w.WriteField("doc_id", docID); err != nil {
		return nil, fmt.Errorf("failed to write doc_id field: %w", err)
	}
	if err := w.WriteField("source_type", sourceType); err != nil {
		return nil, fmt.Errorf("failed to write source_type field: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("failed to finalize multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/extract", &body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", w.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("extraction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("extraction service returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode extraction response: %w", err)
	}

	return out.Chunks, nil
}
