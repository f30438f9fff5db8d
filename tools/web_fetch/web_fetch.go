package web_fetch

import (
	"context"
	"errors"
	"time"

	chromedp_fetch "architect-assistant/tools/web_fetch/chromedp"
	"architect-assistant/tools/web_fetch/models"
	"architect-assistant/tools/web_fetch/readability"
)

const (
	DefaultTimeout  = 10 * time.Second
	MaxCharsDefault = 3000
)

// WebFetcher retrieves and sanitizes one page. Unreachable pages yield
// a Result with empty Text and a nil error.
type WebFetcher interface {
	Exec(ctx context.Context, url string) (models.Result, error)
}

type FetcherType string

const (
	ReadabilityFetcherType FetcherType = "readability"
	ChromedpFetcherType    FetcherType = "chromedp"
)

var ErrUnsupportedFetcher = errors.New("unsupported fetcher type")

func NewWebFetcher(fetcherType FetcherType, timeout time.Duration, maxChars int) (WebFetcher, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if maxChars <= 0 {
		maxChars = MaxCharsDefault
	}

	switch fetcherType {
	case ReadabilityFetcherType:
		return &readability.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	case ChromedpFetcherType:
		return &chromedp_fetch.Fetch{Timeout: timeout, MaxChars: maxChars}, nil
	default:
		return nil, ErrUnsupportedFetcher
	}
}
