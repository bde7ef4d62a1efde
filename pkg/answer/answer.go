// Package answer calls the upstream LLM that produces answers on a cache
// miss. The rest of the system treats it as an opaque question -> text
// capability behind the Func type.
package answer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/askcache-io/askcache/pkg/models"
)

var (
	// ErrRateLimited signals upstream throttling. Callers may retry later;
	// the engine never retries automatically.
	ErrRateLimited = errors.New("answer: upstream rate limited")
	// ErrUpstream covers every other upstream failure: network errors,
	// non-2xx statuses, malformed responses, empty answers.
	ErrUpstream = errors.New("answer: upstream call failed")
)

// Func is the external answer capability: question in, answer text out.
type Func func(ctx context.Context, question string) (string, error)

const (
	defaultTimeout     = 60 * time.Second
	defaultTemperature = 0.7
	defaultMaxTokens   = 600
)

// Client asks an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL string
	apiKey  string
	model   string
	httpc   *http.Client
}

// NewClient creates a Client for the given endpoint, key and model.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpc:   &http.Client{Timeout: defaultTimeout},
	}
}

// Answer sends the question upstream and returns the trimmed answer text.
// A 429 maps to ErrRateLimited; any other failure, including an empty
// answer, maps to ErrUpstream.
func (c *Client) Answer(ctx context.Context, question string) (string, error) {
	temp := defaultTemperature
	maxTokens := defaultMaxTokens
	payload := models.ChatCompletionRequest{
		Model:       c.model,
		Messages:    []models.ChatMessage{{Role: "user", Content: question}},
		Temperature: &temp,
		MaxTokens:   &maxTokens,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", ErrUpstream, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		io.Copy(io.Discard, resp.Body)
		return "", ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return "", fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var out models.ChatCompletionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrUpstream, err)
	}
	if len(out.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices in response", ErrUpstream)
	}

	text := strings.TrimSpace(out.Choices[0].Message.Content)
	if text == "" {
		return "", fmt.Errorf("%w: empty answer", ErrUpstream)
	}
	return text, nil
}

// Func adapts the client to the capability type the engine consumes.
func (c *Client) Func() Func {
	return c.Answer
}
