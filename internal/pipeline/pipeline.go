// Package pipeline orchestrates a verification request end to end: claim
// extraction, per-claim evidence search and the voting fact check.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/citations"
	"github.com/hyperifyio/gofactcheck/internal/claims"
	"github.com/hyperifyio/gofactcheck/internal/evidence"
	"github.com/hyperifyio/gofactcheck/internal/metrics"
	"github.com/hyperifyio/gofactcheck/internal/search"
	"github.com/hyperifyio/gofactcheck/internal/verify"
)

// ClaimResult is one element of a /verify response.
type ClaimResult struct {
	Claim     string            `json:"claim"`
	StartChar int               `json:"start_char"`
	EndChar   int               `json:"end_char"`
	Status    verify.Status     `json:"status"`
	Reason    string            `json:"reason"`
	Sources   []evidence.Source `json:"sources"`
}

// CitationResult is one element of a /verify-citations response.
type CitationResult struct {
	citations.Citation
	citations.Outcome
}

// Pipeline wires the stages together. Claims are checked concurrently up to
// MaxConcurrent; result order always matches claim order.
type Pipeline struct {
	Extractor         *claims.Extractor
	Checker           *verify.Checker
	Search            search.Provider
	CitationExtractor *citations.Extractor
	CitationVerifier  *citations.Verifier

	// Fetcher, when non-nil, widens snippets with fetched page text.
	Fetcher    *evidence.Fetcher
	FetchPages int
	FetchChars int

	// MaxResults caps evidence per claim. Zero means 5.
	MaxResults int
	// MaxConcurrent caps claims in flight. Zero means 4.
	MaxConcurrent int

	Metrics *metrics.Metrics
}

func (p *Pipeline) maxResults() int {
	if p.MaxResults > 0 {
		return p.MaxResults
	}
	return 5
}

func (p *Pipeline) maxConcurrent() int {
	if p.MaxConcurrent > 0 {
		return p.MaxConcurrent
	}
	return 4
}

// VerifyText checks every claim found in text. A single claim failing its
// search or check degrades to UNVERIFIABLE instead of failing the request.
func (p *Pipeline) VerifyText(ctx context.Context, text string) ([]ClaimResult, error) {
	found, err := p.Extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("extract claims: %w", err)
	}
	results := make([]ClaimResult, len(found))
	if len(found) == 0 {
		return results, nil
	}

	sem := make(chan struct{}, p.maxConcurrent())
	var wg sync.WaitGroup
	for i, c := range found {
		wg.Add(1)
		go func(i int, c claims.Claim) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = p.checkClaim(ctx, c)
		}(i, c)
	}
	wg.Wait()
	return results, nil
}

func (p *Pipeline) checkClaim(ctx context.Context, c claims.Claim) ClaimResult {
	started := time.Now()
	out := ClaimResult{
		Claim:     c.Text,
		StartChar: c.StartChar,
		EndChar:   c.EndChar,
		Sources:   []evidence.Source{},
	}

	hits, err := p.Search.Search(ctx, c.Text, p.maxResults())
	if err != nil {
		log.Warn().Err(err).Str("claim", c.Text).Msg("evidence search failed")
		p.Metrics.IncSearchError()
		out.Status = verify.StatusUnverifiable
		out.Reason = "Search backend unavailable"
		p.Metrics.ObserveClaim(string(out.Status), time.Since(started))
		return out
	}
	if p.Fetcher != nil && len(hits) > 0 {
		hits = p.Fetcher.Enrich(ctx, hits, p.FetchPages, p.FetchChars)
	}
	out.Sources = evidence.SourcesFrom(hits)

	verdict, err := p.Checker.Check(ctx, c.Text, evidence.Format(hits))
	if err != nil {
		log.Error().Err(err).Str("claim", c.Text).Msg("fact check failed")
		out.Status = verify.StatusUnverifiable
		out.Reason = "Verification failed"
	} else {
		out.Status = verdict.Status
		out.Reason = verdict.Reason
	}
	p.Metrics.ObserveClaim(string(out.Status), time.Since(started))
	return out
}

// VerifyCitations parses citations from text and checks each one. Extraction
// failure fails the request since there is nothing to degrade to.
func (p *Pipeline) VerifyCitations(ctx context.Context, text string) ([]CitationResult, error) {
	found, err := p.CitationExtractor.Extract(ctx, text)
	if err != nil {
		return nil, err
	}
	results := make([]CitationResult, len(found))
	if len(found) == 0 {
		return results, nil
	}

	sem := make(chan struct{}, p.maxConcurrent())
	var wg sync.WaitGroup
	for i, c := range found {
		wg.Add(1)
		go func(i int, c citations.Citation) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i] = CitationResult{
				Citation: c,
				Outcome:  p.CitationVerifier.Verify(ctx, c),
			}
		}(i, c)
	}
	wg.Wait()
	return results, nil
}
