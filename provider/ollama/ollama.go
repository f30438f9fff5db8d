package ollama_provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"architect-assistant/models"
)

const defaultBaseURL = "http://localhost:11434"

// client implements the provider interface against a local Ollama daemon.
type client struct {
	baseURL        string
	chatModel      string
	embeddingModel string
	temperature    float64
	httpClient     *http.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model    string         `json:"model"`
	Messages []chatMessage  `json:"messages"`
	Stream   bool           `json:"stream"`
	Options  map[string]any `json:"options,omitempty"`
}

type chatResponse struct {
	Message struct {
		Content string `json:"content"`
	} `json:"message"`
}

// NewOllamaClient creates a client for a local (or remote) Ollama server.
func NewOllamaClient(baseURL, chatModel, embeddingModel string, temperature float64, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &client{
		baseURL:        baseURL,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		temperature:    temperature,
		httpClient:     &http.Client{Timeout: timeout},
	}
}

func (c *client) Generate(ctx context.Context, prompt string) (string, error) {
	return c.Chat(ctx, []models.Turn{{Role: models.RoleUser, Content: prompt}})
}

func (c *client) Chat(ctx context.Context, turns []models.Turn) (string, error) {
	messages := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		messages = append(messages, chatMessage{Role: t.Role, Content: t.Content})
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.chatModel,
		Messages: messages,
		Stream:   false,
		Options:  map[string]any{"temperature": c.temperature},
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/chat", bytes.NewBuffer(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status: %d", resp.StatusCode)
	}

	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	return parsed.Message.Content, nil
}

// CreateEmbedding embeds texts one by one; the Ollama embeddings API
// takes a single prompt per call.
func (c *client) CreateEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	vecs := make([][]float32, 0, len(texts))
	for _, text := range texts {
		body, err := json.Marshal(map[string]any{
			"model":  c.embeddingModel,
			"prompt": text,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/embeddings", bytes.NewBuffer(body))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to send request: %w", err)
		}

		var parsed struct {
			Embedding []float32 `json:"embedding"`
		}
		decodeErr := json.NewDecoder(resp.Body).Decode(&parsed)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("API returned status: %d", resp.StatusCode)
		}
		if decodeErr != nil {
			return nil, fmt.Errorf("failed to parse response: %w", decodeErr)
		}
		vecs = append(vecs, parsed.Embedding)
	}
	return vecs, nil
}
