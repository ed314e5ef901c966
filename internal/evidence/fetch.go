package evidence

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/search"
)

// Fetcher retrieves result pages so snippets can be widened into real page
// text. It is polite: custom UA, per-request timeout, bounded retry on 5xx,
// capped redirects, HTML only.
type Fetcher struct {
	HTTPClient *http.Client
	UserAgent  string
	// MaxAttempts includes the initial attempt. Minimum 1.
	MaxAttempts int
	// PerRequestTimeout bounds each request.
	PerRequestTimeout time.Duration
	// RedirectMaxHops caps redirect following. Zero means default (5).
	RedirectMaxHops int
	// MaxBodyBytes caps how much of a page is read. Zero means default (1 MiB).
	MaxBodyBytes int64

	// MaxConcurrent limits in-flight requests per fetcher. Zero means unlimited.
	MaxConcurrent int
	limiter       chan struct{}
	limiterOnce   sync.Once
}

// Enrich replaces each result snippet with extracted page text, up to
// maxPages pages and maxChars characters per snippet. Fetch failures leave
// the original snippet in place.
func (f *Fetcher) Enrich(ctx context.Context, results []search.Result, maxPages, maxChars int) []search.Result {
	if maxPages <= 0 || len(results) == 0 {
		return results
	}
	if maxChars <= 0 {
		maxChars = 2000
	}
	out := make([]search.Result, len(results))
	copy(out, results)
	var wg sync.WaitGroup
	for i := range out {
		if i >= maxPages {
			break
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			body, err := f.Get(ctx, out[i].URL)
			if err != nil {
				log.Debug().Err(err).Str("url", out[i].URL).Msg("evidence fetch failed")
				return
			}
			text := TextFromHTML(body)
			if text == "" {
				return
			}
			if len(text) > maxChars {
				text = text[:maxChars]
			}
			out[i].Snippet = text
		}(i)
	}
	wg.Wait()
	return out
}

// Get issues a GET with context, user agent and bounded retry on transient
// errors, returning the raw HTML body.
func (f *Fetcher) Get(ctx context.Context, rawURL string) ([]byte, error) {
	attempts := f.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for i := 0; i < attempts; i++ {
		body, err := f.tryOnce(ctx, rawURL)
		if err == nil {
			return body, nil
		}
		if !isTransient(err) || i == attempts-1 {
			return nil, err
		}
		lastErr = err
		time.Sleep(time.Duration(i+1) * 200 * time.Millisecond)
	}
	if lastErr == nil {
		lastErr = errors.New("unknown fetch error")
	}
	return nil, lastErr
}

func (f *Fetcher) tryOnce(ctx context.Context, rawURL string) ([]byte, error) {
	f.acquire()
	defer f.release()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return nil, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	if f.UserAgent != "" {
		req.Header.Set("User-Agent", f.UserAgent)
	}

	client := f.getHTTPClient()
	if f.PerRequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(req.Context(), f.PerRequestTimeout)
		defer cancel()
		req = req.WithContext(ctx)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 && resp.StatusCode <= 599 {
		return nil, fmt.Errorf("server error: %d", resp.StatusCode)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}
	ct := strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Type")))
	if !strings.HasPrefix(ct, "text/html") && !strings.HasPrefix(ct, "application/xhtml+xml") {
		return nil, fmt.Errorf("unsupported content type: %s", ct)
	}
	limit := f.MaxBodyBytes
	if limit <= 0 {
		limit = 1 << 20
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, limit))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func (f *Fetcher) getHTTPClient() *http.Client {
	if f.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating the caller's client.
		base := *f.HTTPClient
		base.CheckRedirect = f.checkRedirectFunc()
		return &base
	}
	return &http.Client{Timeout: f.PerRequestTimeout, CheckRedirect: f.checkRedirectFunc()}
}

func (f *Fetcher) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := f.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isTransient(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	return strings.Contains(err.Error(), "server error:")
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}

func (f *Fetcher) acquire() {
	if f.MaxConcurrent <= 0 {
		return
	}
	f.limiterOnce.Do(func() {
		f.limiter = make(chan struct{}, f.MaxConcurrent)
	})
	f.limiter <- struct{}{}
}

func (f *Fetcher) release() {
	if f.MaxConcurrent <= 0 || f.limiter == nil {
		return
	}
	select {
	case <-f.limiter:
	default:
	}
}
