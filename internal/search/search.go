package search

import (
	"context"
)

// Result is a single hit returned by any provider. The JSON tags double as
// the wire shape for verification response sources and file fixtures.
type Result struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Snippet string `json:"snippet"`
	Source  string `json:"source,omitempty"` // provider name for observability
}

// Provider is a minimal interface for evidence search backends.
type Provider interface {
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}
