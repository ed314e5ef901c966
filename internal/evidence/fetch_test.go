package evidence

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hyperifyio/gofactcheck/internal/search"
)

func TestFetcher_Get_RetriesOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>ok</p></body></html>"))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client(), MaxAttempts: 2, PerRequestTimeout: 5 * time.Second}
	body, err := f.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !strings.Contains(string(body), "ok") {
		t.Fatalf("unexpected body: %q", body)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Fatalf("expected retry, got %d calls", calls)
	}
}

func TestFetcher_Get_RejectsNonHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.4"))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}
	if _, err := f.Get(context.Background(), srv.URL); err == nil {
		t.Fatal("expected content-type rejection")
	}
}

func TestFetcher_Get_RejectsNonHTTPScheme(t *testing.T) {
	f := &Fetcher{}
	if _, err := f.Get(context.Background(), "ftp://example.com/x"); err == nil {
		t.Fatal("expected scheme rejection")
	}
}

func TestFetcher_Enrich_ReplacesSnippetsAndKeepsFailures(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><article><p>Full page evidence text.</p></article></body></html>"))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}
	in := []search.Result{
		{Title: "Good", URL: srv.URL, Snippet: "short"},
		{Title: "Dead", URL: "http://127.0.0.1:1/nope", Snippet: "original"},
	}
	out := f.Enrich(context.Background(), in, 2, 100)
	if !strings.Contains(out[0].Snippet, "Full page evidence text.") {
		t.Fatalf("expected widened snippet, got %q", out[0].Snippet)
	}
	if out[1].Snippet != "original" {
		t.Fatalf("failed fetch must keep original snippet, got %q", out[1].Snippet)
	}
	// Input must stay untouched.
	if in[0].Snippet != "short" {
		t.Fatalf("input mutated: %q", in[0].Snippet)
	}
}

func TestFetcher_Enrich_RespectsPageCap(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<html><body><p>text</p></body></html>"))
	}))
	defer srv.Close()

	f := &Fetcher{HTTPClient: srv.Client()}
	in := []search.Result{
		{Title: "A", URL: srv.URL, Snippet: "a"},
		{Title: "B", URL: srv.URL, Snippet: "b"},
		{Title: "C", URL: srv.URL, Snippet: "c"},
	}
	f.Enrich(context.Background(), in, 1, 100)
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 fetch, got %d", calls)
	}
}
