package readability

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

const articleHTML = `<!DOCTYPE html>
<html>
<head><title>Designing Data Pipelines</title></head>
<body>
<nav>home about contact</nav>
<article>
<h1>Designing Data Pipelines</h1>
<p>Stream processing systems trade latency for throughput. Batch systems
do the opposite, and most real deployments end up with both.</p>
<p>Backpressure is the mechanism that keeps producers honest.</p>
</article>
<script>console.log("ignored")</script>
</body>
</html>`

func TestExecExtractsReadableText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(articleHTML))
	}))
	defer srv.Close()

	f := Fetch{Timeout: 5 * time.Second, MaxChars: 3000}
	res, err := f.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Status != http.StatusOK {
		t.Fatalf("unexpected status: %d", res.Status)
	}
	if !strings.Contains(res.Text, "Backpressure is the mechanism") {
		t.Fatalf("article text missing: %q", res.Text)
	}
	if strings.Contains(res.Text, "console.log") {
		t.Fatalf("script content leaked into text: %q", res.Text)
	}
	if strings.Contains(res.Text, "\n") {
		t.Fatal("expected whitespace to be collapsed")
	}
}

func TestExecTruncatesToMaxChars(t *testing.T) {
	long := "<html><body><article><p>" + strings.Repeat("words and more words. ", 500) + "</p></article></body></html>"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(long))
	}))
	defer srv.Close()

	f := Fetch{Timeout: 5 * time.Second, MaxChars: 100}
	res, err := f.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if len(res.Text) > 100 {
		t.Fatalf("text not truncated: %d chars", len(res.Text))
	}
}

func TestExecUnreachableHostYieldsEmptyText(t *testing.T) {
	f := Fetch{Timeout: time.Second, MaxChars: 3000}
	res, err := f.Exec(context.Background(), "http://127.0.0.1:1/none")
	if err != nil {
		t.Fatalf("expected graceful degradation, got %v", err)
	}
	if res.Text != "" {
		t.Fatalf("expected empty text, got %q", res.Text)
	}
}

func TestExecNonSuccessStatusYieldsEmptyText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	f := Fetch{Timeout: time.Second, MaxChars: 3000}
	res, err := f.Exec(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Exec: %v", err)
	}
	if res.Text != "" || res.Status != http.StatusNotFound {
		t.Fatalf("unexpected result: %+v", res)
	}
}
