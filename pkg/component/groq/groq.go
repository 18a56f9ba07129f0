// Package groq provides a client for the Groq chat completion API.
//
// The API is OpenAI-compatible. The client carries a server-level default
// key; individual calls may override it with their own key.
package groq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// Message is one turn in a chat completion request.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Client is an HTTP client for the Groq completion API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	opts       *Options
}

// New creates a Groq client from the given options.
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

// HasDefaultKey reports whether a server-level API key is configured.
func (c *Client) HasDefaultKey() bool {
	return c.opts.APIKey != ""
}

type completionRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// ChatCompletion runs a chat completion and returns the assistant's reply.
// If apiKey is empty the server-level default key is used; if neither is
// set the call fails before reaching the network.
func (c *Client) ChatCompletion(ctx context.Context, apiKey string, messages []Message) (string, error) {
	key := apiKey
	if key == "" {
		key = c.opts.APIKey
	}
	if key == "" {
		return "", fmt.Errorf("no API key available for completion")
	}

	payload, err := json.Marshal(completionRequest{
		Model:       c.opts.Model,
		Messages:    messages,
		Temperature: 0.2,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal completion request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/openai/v1/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("completion API returned status %d: %s", resp.StatusCode, string(msg))
	}

	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("failed to decode completion response: %w", err)
	}
	if out.Error != nil {
		return "", fmt.Errorf("completion API error: %s", out.Error.Message)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("completion API returned no choices")
	}

	return out.Choices[0].Message.Content, nil
}
