// Package evidence turns search hits into the material a fact check judges
// against: a formatted prompt block and the source references echoed back to
// API clients.
package evidence

import (
	"strings"

	"github.com/hyperifyio/gofactcheck/internal/search"
)

// Source is the citable reference attached to a verification result.
type Source struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// SourcesFrom projects search results down to the reference shape.
func SourcesFrom(results []search.Result) []Source {
	out := make([]Source, 0, len(results))
	for _, r := range results {
		out = append(out, Source{Title: r.Title, URL: r.URL})
	}
	return out
}

// Format renders results as the bullet list the fact-check prompt expects.
// An empty slice renders as an empty string, which callers treat as
// no-evidence.
func Format(results []search.Result) string {
	var sb strings.Builder
	for _, r := range results {
		snippet := strings.TrimSpace(r.Snippet)
		if snippet == "" {
			continue
		}
		sb.WriteString("- ")
		sb.WriteString(strings.TrimSpace(r.Title))
		sb.WriteString(": ")
		sb.WriteString(snippet)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
