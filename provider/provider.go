package provider

import (
	"context"
	"errors"

	"architect-assistant/config"
	"architect-assistant/models"
	ollama_provider "architect-assistant/provider/ollama"
	openai_provider "architect-assistant/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI Client = "openai"
	Ollama Client = "ollama"
)

// Provider is the interface that all LLM implementations must satisfy.
// Generate answers a single free-form prompt, Chat replays a full
// conversation, CreateEmbedding vectorizes texts for retrieval.
type Provider interface {
	Generate(ctx context.Context, prompt string) (string, error)
	Chat(ctx context.Context, turns []models.Turn) (string, error)
	CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error)
}

// NewProvider creates a new LLM client based on the provided configuration
func NewProvider(cfg config.LLMConfig) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, errors.New("llm.api_key not set for openai provider")
		}
		return openai_provider.NewOpenAIClient(
			cfg.APIKey,
			cfg.BaseURL,
			cfg.ChatModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.MaxTokens,
			cfg.Timeout,
		), nil
	case Ollama:
		return ollama_provider.NewOllamaClient(
			cfg.BaseURL,
			cfg.ChatModel,
			cfg.EmbeddingModel,
			cfg.Temperature,
			cfg.Timeout,
		), nil
	default:
		return nil, errors.New("unsupported LLM provider")
	}
}
