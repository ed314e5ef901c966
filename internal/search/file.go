package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider serves search results from a local JSON fixture for offline
// development and tests. The file holds an array of Result objects.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []Result
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	// Crude relevance: keep entries sharing any word with the query so that
	// different claims get different evidence from one fixture.
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	out := make([]Result, 0, len(raw))
	for _, r := range raw {
		if r.URL == "" || r.Title == "" {
			continue
		}
		if matchesAny(r, words) {
			r.Source = f.Name()
			out = append(out, r)
			if limit > 0 && len(out) >= limit {
				break
			}
		}
	}
	return out, nil
}

func matchesAny(r Result, words []string) bool {
	if len(words) == 0 {
		return true
	}
	hay := strings.ToLower(r.Title + " " + r.Snippet)
	for _, w := range words {
		if len(w) < 4 {
			continue
		}
		if strings.Contains(hay, w) {
			return true
		}
	}
	return false
}
