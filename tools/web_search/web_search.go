package web_search

import (
	"context"
	"errors"

	"architect-assistant/tools/web_search/models"
	"architect-assistant/tools/web_search/serpapi"
	"architect-assistant/tools/web_search/serper"
)

// WebSearcher returns up to k organic results for a query.
type WebSearcher interface {
	Discover(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	SerpAPIProvider Provider = "serpapi"
	SerperProvider  Provider = "serper"
)

var ErrUnsupportedProvider = errors.New("unsupported search provider")

func NewWebSearcher(provider Provider, apiKey string) (WebSearcher, error) {
	switch provider {
	case SerpAPIProvider:
		return serpapi.Search{ApiKey: apiKey}, nil
	case SerperProvider:
		return serper.Search{ApiKey: apiKey}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
