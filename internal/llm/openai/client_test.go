package openai

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"talexus-backend/internal/llm"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() { apiURL = oldURL })

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func TestExtractResumeReturnsRecord(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"Full Name\":\"Ada\"}"}}]}`))
	})

	raw, err := client.ExtractResume(context.Background(), llm.ExtractInput{ResumeText: "Ada Lovelace", PromptVersion: "v1"})
	if err != nil {
		t.Fatalf("extract resume: %v", err)
	}
	if string(raw) != `{"Full Name":"Ada"}` {
		t.Fatalf("unexpected record: %s", raw)
	}
}

func TestExtractResumeRetriesInvalidJSON(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if calls.Add(1) == 1 {
			_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"not json at all"}}]}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"Skills\":[\"Go\"]}"}}]}`))
	})

	raw, err := client.ExtractResume(context.Background(), llm.ExtractInput{ResumeText: "text", PromptVersion: "v1"})
	if err != nil {
		t.Fatalf("extract resume: %v", err)
	}
	if calls.Load() != 2 {
		t.Fatalf("expected fix-JSON retry, got %d calls", calls.Load())
	}
	if string(raw) != `{"Skills":["Go"]}` {
		t.Fatalf("unexpected record: %s", raw)
	}
}

func TestExtractResumeAPIError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"rate_limit_error"}}`))
	})

	if _, err := client.ExtractResume(context.Background(), llm.ExtractInput{ResumeText: "text", PromptVersion: "v1"}); err == nil {
		t.Fatalf("expected error from API failure")
	}
}

func TestCompleteReturnsText(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"Dear hiring manager,"}}]}`))
	})

	text, err := client.Complete(context.Background(), llm.CompleteInput{Prompt: "write a letter"})
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if text != "Dear hiring manager," {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestIsGPT5(t *testing.T) {
	tests := []struct {
		name  string
		model string
		want  bool
	}{
		{name: "gpt5", model: "gpt-5", want: true},
		{name: "gpt5 variant", model: "gpt-5-mini", want: true},
		{name: "gpt5 uppercase", model: " GPT-5o ", want: true},
		{name: "gpt4", model: "gpt-4o", want: false},
		{name: "empty", model: "", want: false},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := isGPT5(tt.model); got != tt.want {
				t.Fatalf("isGPT5(%q) = %v, want %v", tt.model, got, tt.want)
			}
		})
	}
}

func TestPromptHashDeterministic(t *testing.T) {
	messages := BuildExtractPrompt("v2", "resume text", "gpt-4o-mini")
	hash1 := promptHash(messages)
	hash2 := promptHash(messages)
	if hash1 != hash2 {
		t.Fatalf("expected deterministic prompt hash, got %q and %q", hash1, hash2)
	}

	messagesAlt := BuildExtractPrompt("v2", "different resume", "gpt-4o-mini")
	if hash1 == promptHash(messagesAlt) {
		t.Fatalf("expected prompt hash to change when input changes")
	}
}
