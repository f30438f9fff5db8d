package ollama_provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"architect-assistant/models"
)

func TestChatSendsTurnsAndOptions(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode request: %v", err)
		}
		_, _ = w.Write([]byte(`{"message":{"role":"assistant","content":"hi there"}}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "gemma3:4b", "nomic-embed-text", 0.3, 5*time.Second)
	answer, err := c.Chat(context.Background(), []models.Turn{
		{Role: models.RoleSystem, Content: "be brief"},
		{Role: models.RoleUser, Content: "hello"},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if answer != "hi there" {
		t.Fatalf("unexpected answer: %q", answer)
	}
	if got.Model != "gemma3:4b" || got.Stream {
		t.Fatalf("unexpected request: %+v", got)
	}
	if len(got.Messages) != 2 || got.Messages[1].Content != "hello" {
		t.Fatalf("turns not forwarded: %+v", got.Messages)
	}
	if temp, ok := got.Options["temperature"].(float64); !ok || temp != 0.3 {
		t.Fatalf("temperature not forwarded: %+v", got.Options)
	}
}

func TestChatErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "missing", "missing", 0, 5*time.Second)
	if _, err := c.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected an error for non-200 status")
	}
}

func TestCreateEmbeddingOnePromptPerCall(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embeddings" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		calls++
		_, _ = w.Write([]byte(`{"embedding":[0.1,0.2,0.3]}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL, "gemma3:4b", "nomic-embed-text", 0, 5*time.Second)
	vecs, err := c.CreateEmbedding(context.Background(), []string{"one", "two", "three"})
	if err != nil {
		t.Fatalf("CreateEmbedding: %v", err)
	}
	if calls != 3 || len(vecs) != 3 {
		t.Fatalf("expected 3 calls and 3 vectors, got %d / %d", calls, len(vecs))
	}
	if len(vecs[0]) != 3 {
		t.Fatalf("unexpected vector: %v", vecs[0])
	}
}

func TestCreateEmbeddingEmptyInput(t *testing.T) {
	c := NewOllamaClient("http://unused:1", "m", "m", 0, time.Second)
	vecs, err := c.CreateEmbedding(context.Background(), nil)
	if err != nil || vecs != nil {
		t.Fatalf("expected nil, nil for empty input, got %v / %v", vecs, err)
	}
}
