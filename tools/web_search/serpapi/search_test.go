package serpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestDiscoverParsesOrganicResults(t *testing.T) {
	var gotQuery, gotKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotKey = r.URL.Query().Get("api_key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"organic_results": [
				{"link": "https://a.example", "title": "A", "snippet": "first"},
				{"link": "https://b.example", "title": "B", "snippet": "second"},
				{"link": "https://c.example", "title": "C", "snippet": "third"}
			]
		}`))
	}))
	defer srv.Close()

	s := Search{ApiKey: "test-key", Endpoint: srv.URL}
	results, err := s.Discover(context.Background(), "go generics", 2)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if gotQuery != "go generics" || gotKey != "test-key" {
		t.Fatalf("unexpected request params: q=%q api_key=%q", gotQuery, gotKey)
	}
	if len(results) != 2 {
		t.Fatalf("expected k to cap results, got %d", len(results))
	}
	if results[0].URL != "https://a.example" || results[0].Title != "A" || results[0].Snippet != "first" {
		t.Fatalf("unexpected first result: %+v", results[0])
	}
}

func TestDiscoverNoResults(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	s := Search{ApiKey: "k", Endpoint: srv.URL}
	results, err := s.Discover(context.Background(), "nothing", 5)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %d", len(results))
	}
}
