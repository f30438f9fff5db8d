package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	cfg := LoadConfig("")

	if cfg.Server.Address != ":8090" {
		t.Fatalf("unexpected address: %q", cfg.Server.Address)
	}
	if cfg.LLM.Provider != "ollama" || cfg.LLM.ChatModel != "gemma3:4b" {
		t.Fatalf("unexpected llm defaults: %+v", cfg.LLM)
	}
	if cfg.RAG.ChunkSize != 500 || cfg.RAG.ChunkOverlap != 50 || cfg.RAG.TopK != 3 {
		t.Fatalf("unexpected rag defaults: %+v", cfg.RAG)
	}
	if cfg.Fetch.MaxChars != 3000 {
		t.Fatalf("unexpected fetch defaults: %+v", cfg.Fetch)
	}
	if cfg.Sessions.Store != "inmemory" || cfg.Sessions.TTL != 48*time.Hour || cfg.Sessions.MaxSessions != 1000 {
		t.Fatalf("unexpected session defaults: %+v", cfg.Sessions)
	}
	if cfg.LLM.SystemPrompt == "" {
		t.Fatal("expected a default system prompt")
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
server:
  address: ":9999"
llm:
  provider: openai
  api_key: sk-test
  chat_model: gpt-4o-mini
rag:
  chunk_size: 800
  chunk_overlap: 80
  hybrid: true
sessions:
  store: redis
  redis:
    addr: "redis:6379"
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := LoadConfig(path)
	if cfg.Server.Address != ":9999" {
		t.Fatalf("file value not applied: %q", cfg.Server.Address)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.ChatModel != "gpt-4o-mini" {
		t.Fatalf("llm section not applied: %+v", cfg.LLM)
	}
	if cfg.RAG.ChunkSize != 800 || !cfg.RAG.Hybrid {
		t.Fatalf("rag section not applied: %+v", cfg.RAG)
	}
	if cfg.Sessions.Store != "redis" || cfg.Sessions.Redis.Addr != "redis:6379" {
		t.Fatalf("sessions section not applied: %+v", cfg.Sessions)
	}
	// untouched keys keep their defaults
	if cfg.RAG.TopK != 3 {
		t.Fatalf("default lost: %+v", cfg.RAG)
	}
}

func TestLoadConfigRejectsBadChunking(t *testing.T) {
	viper.Reset()
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
rag:
  chunk_size: 100
  chunk_overlap: 100
`
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	defer func() {
		if recover() == nil {
			t.Fatal("expected overlap >= chunk_size to be rejected")
		}
	}()
	LoadConfig(path)
}
