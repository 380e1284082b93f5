package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/johnquangdev/meeting-actions/pkg/config"
)

func TestInfer_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST got %s", r.Method)
		}
		if r.URL.Path != "/chat/completions" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req ChatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("invalid payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]string{"content": "hello there"}},
			},
		})
	}))
	defer ts.Close()

	client := NewLLMClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL, Model: "test-model"})

	out, err := client.Infer(context.Background(), "you are a test", "say hello", 0.2, 100)
	if err != nil {
		t.Fatalf("infer failed: %v", err)
	}
	if out != "hello there" {
		t.Fatalf("unexpected content %q", out)
	}
}

func TestInfer_ServerError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"overloaded"}`))
	}))
	defer ts.Close()

	client := NewLLMClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	_, err := client.Infer(context.Background(), "", "hi", 0.2, 10)
	if err == nil {
		t.Fatal("expected error")
	}
	infErr, ok := err.(*InferenceError)
	if !ok {
		t.Fatalf("expected *InferenceError, got %T", err)
	}
	if infErr.Status != http.StatusServiceUnavailable {
		t.Fatalf("unexpected status %d", infErr.Status)
	}
	if !infErr.Retryable() {
		t.Fatal("503 should be retryable")
	}
}

func TestInfer_EmptyChoices(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer ts.Close()

	client := NewLLMClient(&config.OpenAIConfig{APIKey: "test-key", BaseURL: ts.URL})

	_, err := client.Infer(context.Background(), "", "hi", 0.2, 10)
	if err == nil {
		t.Fatal("expected error for empty choices")
	}
}
