package app

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/cache"
	"github.com/hyperifyio/gofactcheck/internal/citations"
	"github.com/hyperifyio/gofactcheck/internal/claims"
	"github.com/hyperifyio/gofactcheck/internal/evidence"
	"github.com/hyperifyio/gofactcheck/internal/httpapi"
	"github.com/hyperifyio/gofactcheck/internal/llm"
	"github.com/hyperifyio/gofactcheck/internal/metrics"
	"github.com/hyperifyio/gofactcheck/internal/pipeline"
	"github.com/hyperifyio/gofactcheck/internal/search"
	"github.com/hyperifyio/gofactcheck/internal/verify"
)

// App wires configuration into the running service.
type App struct {
	cfg     Config
	ai      *llm.OpenAIProvider
	metrics *metrics.Metrics
	server  *httpapi.Server
	redis   *cache.RedisStore
}

// New composes the pipeline and HTTP server from cfg. The LLM preflight is
// best-effort: an unreachable backend logs a warning and requests surface
// their own errors later.
func New(ctx context.Context, cfg Config) (*App, error) {
	a := &App{
		cfg:     cfg,
		ai:      llm.NewOpenAIProvider(cfg.LLMBaseURL, cfg.LLMAPIKey),
		metrics: metrics.New(),
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	models, err := a.ai.ListModels(pingCtx)
	switch {
	case err != nil:
		log.Warn().Err(err).Msg("LLM model list failed; continuing")
	case len(models.Models) == 0:
		log.Warn().Msg("LLM returned zero models")
	default:
		log.Info().Int("count", len(models.Models)).Msg("LLM models available")
	}

	store, err := a.buildStore(ctx)
	if err != nil {
		return nil, err
	}

	provider := a.buildSearchProvider()
	var fetcher *evidence.Fetcher
	if cfg.DeepEvidence {
		fetcher = &evidence.Fetcher{
			UserAgent:         cfg.SearxUA,
			MaxAttempts:       2,
			PerRequestTimeout: 10 * time.Second,
			MaxConcurrent:     8,
		}
	}

	p := &pipeline.Pipeline{
		Extractor: &claims.Extractor{
			Client:    a.ai,
			Model:     cfg.LLMModel,
			MaxClaims: cfg.MaxClaims,
		},
		Checker: &verify.Checker{
			Client: a.ai,
			Model:  cfg.LLMModel,
			Cache:  store,
		},
		Search: provider,
		CitationExtractor: &citations.Extractor{
			Client: a.ai,
			Model:  cfg.LLMModel,
		},
		CitationVerifier: &citations.Verifier{
			Client:     a.ai,
			Model:      cfg.LLMModel,
			Search:     provider,
			MaxResults: cfg.MaxResults,
		},
		Fetcher:       fetcher,
		FetchPages:    cfg.FetchPages,
		FetchChars:    cfg.FetchChars,
		MaxResults:    cfg.MaxResults,
		MaxConcurrent: cfg.MaxConcurrent,
		Metrics:       a.metrics,
	}

	a.server = httpapi.New(httpapi.Options{
		Addr:           cfg.ListenAddr,
		AllowOrigins:   cfg.AllowOrigins,
		RequestTimeout: cfg.RequestTimeout,
		MaxTextChars:   cfg.MaxTextChars,
	}, p, a.metrics)

	return a, nil
}

func (a *App) buildSearchProvider() search.Provider {
	if strings.TrimSpace(a.cfg.FileSearchPath) != "" {
		log.Info().Str("path", a.cfg.FileSearchPath).Msg("using file search provider")
		return &search.FileProvider{Path: a.cfg.FileSearchPath}
	}
	return &search.SearxNG{
		BaseURL:   a.cfg.SearxURL,
		APIKey:    a.cfg.SearxKey,
		UserAgent: a.cfg.SearxUA,
	}
}

func (a *App) buildStore(ctx context.Context) (cache.Store, error) {
	if url := strings.TrimSpace(a.cfg.CacheRedisURL); url != "" {
		rs, err := cache.NewRedisStore(url, a.cfg.CacheTTL)
		if err != nil {
			return nil, fmt.Errorf("init redis cache: %w", err)
		}
		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rs.Ping(pingCtx); err != nil {
			return nil, fmt.Errorf("ping redis: %w", err)
		}
		a.redis = rs
		return &countingStore{inner: rs, metrics: a.metrics}, nil
	}
	dir := strings.TrimSpace(a.cfg.CacheDir)
	if dir == "" {
		return nil, nil
	}
	if a.cfg.CacheClear {
		if err := cache.ClearDir(dir); err != nil {
			log.Warn().Err(err).Str("dir", dir).Msg("cache clear failed")
		}
	}
	if a.cfg.CacheMaxAge > 0 {
		if n, _ := cache.PurgeByAge(dir, a.cfg.CacheMaxAge); n > 0 {
			log.Info().Int("removed", n).Msg("purged stale verdict cache entries")
		}
	}
	if a.cfg.CacheMaxEntries > 0 {
		if n, _ := cache.PurgeByCount(dir, a.cfg.CacheMaxEntries); n > 0 {
			log.Info().Int("removed", n).Msg("trimmed verdict cache to entry limit")
		}
	}
	fs := &cache.FileStore{Dir: dir, StrictPerms: a.cfg.CacheStrictPerms}
	return &countingStore{inner: fs, metrics: a.metrics}, nil
}

// Run serves HTTP until ctx is canceled, then drains connections.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", a.cfg.ListenAddr).Msg("listening")
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info().Msg("server stopped")
	return nil
}

// Close releases external connections.
func (a *App) Close() {
	if a.redis != nil {
		_ = a.redis.Close()
	}
}

// countingStore wraps a cache.Store with hit/miss metrics.
type countingStore struct {
	inner   cache.Store
	metrics *metrics.Metrics
}

func (s *countingStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, ok, err := s.inner.Get(ctx, key)
	if ok {
		s.metrics.IncCacheHit()
	} else {
		s.metrics.IncCacheMiss()
	}
	return b, ok, err
}

func (s *countingStore) Save(ctx context.Context, key string, data []byte) error {
	return s.inner.Save(ctx, key, data)
}
