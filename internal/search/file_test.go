package search

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFixture(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.json")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestFileProvider_FiltersByQueryWords(t *testing.T) {
	path := writeFixture(t, `[
		{"title": "Earth shape", "url": "https://a.example", "snippet": "The earth is an oblate spheroid."},
		{"title": "Cooking pasta", "url": "https://b.example", "snippet": "Boil water first."}
	]`)
	p := &FileProvider{Path: path}
	got, err := p.Search(context.Background(), "earth is flat", 5)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 matching result, got %d", len(got))
	}
	if got[0].Title != "Earth shape" {
		t.Fatalf("unexpected result: %+v", got[0])
	}
	if got[0].Source != "file" {
		t.Fatalf("unexpected source: %q", got[0].Source)
	}
}

func TestFileProvider_EmptyQueryReturnsAll(t *testing.T) {
	path := writeFixture(t, `[
		{"title": "A", "url": "https://a.example", "snippet": "x"},
		{"title": "B", "url": "https://b.example", "snippet": "y"}
	]`)
	p := &FileProvider{Path: path}
	got, err := p.Search(context.Background(), "", 0)
	if err != nil {
		t.Fatalf("search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected all results, got %d", len(got))
	}
}

func TestFileProvider_MissingPath(t *testing.T) {
	p := &FileProvider{}
	if _, err := p.Search(context.Background(), "q", 5); err == nil {
		t.Fatal("expected error without path")
	}
}
