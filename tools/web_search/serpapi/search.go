package serpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"architect-assistant/tools/web_search/models"
)

const defaultEndpoint = "https://serpapi.com/search"

type Search struct {
	ApiKey   string
	Endpoint string // overridable for tests
}

func (s Search) Discover(ctx context.Context, q string, k int) ([]models.Result, error) {
	// https://serpapi.com/search-api docs
	endpoint := s.Endpoint
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	params := url.Values{}
	params.Set("q", q)
	params.Set("api_key", s.ApiKey)
	params.Set("engine", "google")
	params.Set("num", fmt.Sprint(k))

	req, err := http.NewRequestWithContext(ctx, "GET", endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var raw struct {
		OrganicResults []struct {
			Link    string `json:"link"`
			Title   string `json:"title"`
			Snippet string `json:"snippet"`
		} `json:"organic_results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, err
	}

	var out []models.Result
	for i, r := range raw.OrganicResults {
		if i >= k {
			break
		}
		out = append(out, models.Result{URL: r.Link, Title: r.Title, Snippet: r.Snippet})
	}
	return out, nil
}
