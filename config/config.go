package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the assistant service.
type Config struct {
	General  GeneralConfig  `mapstructure:"general"`
	Server   ServerConfig   `mapstructure:"server"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Search   SearchConfig   `mapstructure:"search"`
	Fetch    FetchConfig    `mapstructure:"fetch"`
	RAG      RAGConfig      `mapstructure:"rag"`
	Sessions SessionsConfig `mapstructure:"sessions"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug          bool          `mapstructure:"debug"`
	LogLevel       string        `mapstructure:"log_level"`
	LogFormat      string        `mapstructure:"log_format"` // json | console
	DefaultTimeout time.Duration `mapstructure:"default_timeout"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Address string `mapstructure:"address"`
}

// LLMConfig selects the generation/embedding provider.
type LLMConfig struct {
	Provider       string        `mapstructure:"provider"` // openai | ollama
	APIKey         string        `mapstructure:"api_key"`
	BaseURL        string        `mapstructure:"base_url"`
	ChatModel      string        `mapstructure:"chat_model"`
	EmbeddingModel string        `mapstructure:"embedding_model"`
	Temperature    float64       `mapstructure:"temperature"`
	MaxTokens      int           `mapstructure:"max_tokens"`
	Timeout        time.Duration `mapstructure:"timeout"`
	SystemPrompt   string        `mapstructure:"system_prompt"`
}

// SearchConfig selects the web search provider.
type SearchConfig struct {
	Provider string        `mapstructure:"provider"` // serpapi | serper
	APIKey   string        `mapstructure:"api_key"`
	Results  int           `mapstructure:"results"`
	Timeout  time.Duration `mapstructure:"timeout"`
}

// FetchConfig controls page content retrieval.
type FetchConfig struct {
	Fetcher  string        `mapstructure:"fetcher"` // readability | chromedp
	Timeout  time.Duration `mapstructure:"timeout"`
	MaxChars int           `mapstructure:"max_chars"`
}

// RAGConfig controls chunking and retrieval.
type RAGConfig struct {
	ChunkSize    int  `mapstructure:"chunk_size"`
	ChunkOverlap int  `mapstructure:"chunk_overlap"`
	TopK         int  `mapstructure:"top_k"`
	PreviewChars int  `mapstructure:"preview_chars"`
	Hybrid       bool `mapstructure:"hybrid"` // fuse BM25 with vector search
}

// SessionsConfig bounds the in-process session registry.
type SessionsConfig struct {
	Store       string        `mapstructure:"store"` // inmemory | redis
	TTL         time.Duration `mapstructure:"ttl"`
	MaxSessions int           `mapstructure:"max_sessions"`
	Redis       RedisConfig   `mapstructure:"redis"`
}

// RedisConfig is only consulted when sessions.store is "redis".
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (c RAGConfig) Validate() error {
	if c.ChunkSize <= 0 {
		return fmt.Errorf("rag.chunk_size must be > 0")
	}
	if c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("rag.chunk_overlap must satisfy 0 <= overlap < chunk_size")
	}
	if c.TopK <= 0 {
		return fmt.Errorf("rag.top_k must be > 0")
	}
	return nil
}

func (c SessionsConfig) Validate() error {
	if c.TTL <= 0 {
		return fmt.Errorf("sessions.ttl must be > 0")
	}
	if c.MaxSessions <= 0 {
		return fmt.Errorf("sessions.max_sessions must be > 0")
	}
	return nil
}

// DefaultSystemPrompt frames the chat strategy as a software-architect
// assistant. Overridable via llm.system_prompt.
const DefaultSystemPrompt = `You are an experienced Software Architect Assistant. Your job is to guide the user on software design, architectural patterns, technology selection and best practices.

Follow these principles:
1. Analytical approach: break problems down and weigh trade-offs (e.g. performance vs cost).
2. Pattern awareness: reference GoF patterns, SOLID principles and Clean Architecture where appropriate.
3. Technology agnostic: defend generally valid architectural truths, but give specific recommendations when asked.
4. Security and scalability: consider both by default in every design suggestion.
5. Clear and justified: explain why you recommend a solution and briefly name alternatives.

Respond in a professional, educational and solution-oriented tone.`

// LoadConfig loads config from file, falling back to defaults when no
// file is present and none was requested explicitly.
func LoadConfig(path string) *Config {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("general.debug", false)
	viper.SetDefault("general.log_level", "info")
	viper.SetDefault("general.log_format", "console")
	viper.SetDefault("general.default_timeout", 30*time.Second)
	viper.SetDefault("server.address", ":8090")
	viper.SetDefault("llm.provider", "ollama")
	viper.SetDefault("llm.chat_model", "gemma3:4b")
	viper.SetDefault("llm.embedding_model", "nomic-embed-text")
	viper.SetDefault("llm.temperature", 0.3)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout", 60*time.Second)
	viper.SetDefault("llm.system_prompt", DefaultSystemPrompt)
	viper.SetDefault("search.provider", "serpapi")
	viper.SetDefault("search.results", 5)
	viper.SetDefault("search.timeout", 10*time.Second)
	viper.SetDefault("fetch.fetcher", "readability")
	viper.SetDefault("fetch.timeout", 10*time.Second)
	viper.SetDefault("fetch.max_chars", 3000)
	viper.SetDefault("rag.chunk_size", 500)
	viper.SetDefault("rag.chunk_overlap", 50)
	viper.SetDefault("rag.top_k", 3)
	viper.SetDefault("rag.preview_chars", 100)
	viper.SetDefault("rag.hybrid", false)
	viper.SetDefault("sessions.store", "inmemory")
	viper.SetDefault("sessions.ttl", 48*time.Hour)
	viper.SetDefault("sessions.max_sessions", 1000)
	viper.SetDefault("sessions.redis.addr", "localhost:6379")

	if path == "" {
		viper.AddConfigPath("./config")
		viper.AddConfigPath(".")
	} else {
		viper.SetConfigFile(path)
	}

	viper.SetEnvPrefix("ASSISTANT")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		// Defaults plus env vars are enough to run; only an explicitly
		// requested file is fatal when unreadable.
		if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound || path != "" {
			panic(fmt.Errorf("fatal error config file: %w", err))
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("fatal error config file: %w", err))
	}

	if err := config.RAG.Validate(); err != nil {
		panic(err)
	}
	if err := config.Sessions.Validate(); err != nil {
		panic(err)
	}
	return &config
}
