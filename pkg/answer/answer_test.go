package answer

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/askcache-io/askcache/pkg/models"
)

func fakeUpstream(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, "sk-test", "gpt-4")
}

func TestAnswer(t *testing.T) {
	c := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer sk-test" {
			t.Error("expected bearer API key")
		}

		var req models.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatal(err)
		}
		if req.Model != "gpt-4" {
			t.Errorf("unexpected model %q", req.Model)
		}
		if len(req.Messages) != 1 || req.Messages[0].Content != "What is 2+2?" {
			t.Errorf("unexpected messages %+v", req.Messages)
		}

		json.NewEncoder(w).Encode(models.ChatCompletionResponse{
			Choices: []models.Choice{
				{Message: models.ChatMessage{Role: "assistant", Content: "  4  "}},
			},
		})
	})

	got, err := c.Answer(context.Background(), "What is 2+2?")
	if err != nil {
		t.Fatal(err)
	}
	if got != "4" {
		t.Errorf("expected trimmed answer %q, got %q", "4", got)
	}
}

func TestAnswerRateLimited(t *testing.T) {
	c := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Answer(context.Background(), "q")
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestAnswerUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}},
		{"malformed body", func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}},
		{"no choices", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.ChatCompletionResponse{})
		}},
		{"empty answer", func(w http.ResponseWriter, r *http.Request) {
			json.NewEncoder(w).Encode(models.ChatCompletionResponse{
				Choices: []models.Choice{{Message: models.ChatMessage{Content: "   "}}},
			})
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := fakeUpstream(t, tt.handler)
			_, err := c.Answer(context.Background(), "q")
			if !errors.Is(err, ErrUpstream) {
				t.Errorf("expected ErrUpstream, got %v", err)
			}
			if errors.Is(err, ErrRateLimited) {
				t.Error("generic failures must not look like rate limits")
			}
		})
	}
}

func TestAnswerContextCancelled(t *testing.T) {
	c := fakeUpstream(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Answer(ctx, "q")
	if !errors.Is(err, ErrUpstream) {
		t.Errorf("cancellation should surface as an upstream failure, got %v", err)
	}
}
