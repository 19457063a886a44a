package ai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	infraAI "github.com/felixgeelhaar/autorefine/pkg/ai"
	"github.com/felixgeelhaar/autorefine/pkg/domain/ai"
)

func TestOpenAIProvider_Complete_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Errorf("expected /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("expected Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var body map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if body["model"] != "qwen-plus" {
			t.Errorf("model = %v", body["model"])
		}
		if body["max_tokens"] != float64(2048) {
			t.Errorf("max_tokens = %v", body["max_tokens"])
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"role": "assistant", "content": "print('ok')"}},
			},
			"usage": map[string]int{
				"prompt_tokens":     12,
				"completion_tokens": 4,
			},
		})
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("qwen-plus", "test-key", server.URL, server.Client())
	resp, err := p.Complete(context.Background(), ai.CompletionRequest{
		Prompt:      "write code",
		System:      "You are a coder",
		Temperature: 0.2,
		MaxTokens:   2048,
	})
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if resp.Text != "print('ok')" {
		t.Errorf("expected print('ok'), got %q", resp.Text)
	}
	if resp.Usage.InputTokens != 12 || resp.Usage.OutputTokens != 4 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}

func TestOpenAIProvider_Complete_NoAPIKey(t *testing.T) {
	p := infraAI.NewOpenAIProviderWithClient("gpt-4o", "", "http://127.0.0.1:1", nil)
	_, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "API key") {
		t.Fatalf("expected API key error, got %v", err)
	}
}

func TestOpenAIProvider_Complete_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":"rate limited"}`))
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("gpt-4o", "k", server.URL, server.Client())
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for 429")
	}
}

func TestOpenAIProvider_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer server.Close()

	p := infraAI.NewOpenAIProviderWithClient("gpt-4o", "k", server.URL, server.Client())
	if _, err := p.Complete(context.Background(), ai.CompletionRequest{Prompt: "x"}); err == nil {
		t.Fatal("expected error for empty choices")
	}
}

func TestOpenAIProvider_ID(t *testing.T) {
	p := infraAI.NewOpenAIProvider("gpt-4o", "k")
	if p.ID() != "openai:gpt-4o" {
		t.Errorf("ID = %q", p.ID())
	}
}
