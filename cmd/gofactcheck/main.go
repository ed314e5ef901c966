package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/gofactcheck/internal/app"
)

func main() {
	// Logging setup
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		envFiles       string
		configPath     string
		listenAddr     string
		allowOrigins   string
		requestTimeout time.Duration
		maxTextChars   int
		llmBaseURL     string
		llmModel       string
		llmKey         string
		searxURL       string
		searxKey       string
		searxUA        string
		fileSearchPath string
		maxResults     int
		maxClaims      int
		maxConcurrent  int
		deepEvidence   bool
		fetchPages     int
		fetchChars     int
		cacheDir       string
		cacheRedisURL  string
		cacheTTL       time.Duration
		cacheMaxAge    time.Duration
		cacheEntries   int
		cacheClear     bool
		cacheStrict    bool
		verbose        bool
	)

	flag.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files loaded before config resolution")
	flag.StringVar(&configPath, "config", os.Getenv("CONFIG_FILE"), "Path to YAML/JSON config file (optional)")
	flag.StringVar(&listenAddr, "listen", ":8000", "HTTP listen address")
	flag.StringVar(&allowOrigins, "cors.origins", os.Getenv("CORS_ORIGINS"), "Comma-separated CORS allow origins; empty allows all")
	flag.DurationVar(&requestTimeout, "request.timeout", 0, "Per-request pipeline timeout (e.g. 90s); 0 disables")
	flag.IntVar(&maxTextChars, "max.textChars", 20000, "Maximum accepted input text length")
	flag.StringVar(&llmBaseURL, "llm.base", os.Getenv("LLM_BASE_URL"), "OpenAI-compatible base URL")
	flag.StringVar(&llmModel, "llm.model", os.Getenv("LLM_MODEL"), "Model name")
	flag.StringVar(&llmKey, "llm.key", os.Getenv("LLM_API_KEY"), "API key for OpenAI-compatible server")
	flag.StringVar(&searxURL, "searx.url", os.Getenv("SEARX_URL"), "SearxNG base URL")
	flag.StringVar(&searxKey, "searx.key", os.Getenv("SEARX_KEY"), "SearxNG API key (optional)")
	flag.StringVar(&searxUA, "searx.ua", "gofactcheck/1.0 (+https://github.com/hyperifyio/gofactcheck)", "Custom User-Agent for outbound requests")
	flag.StringVar(&fileSearchPath, "search.file", os.Getenv("SEARCH_FILE"), "Path to JSON file for offline file-based search provider")
	flag.IntVar(&maxResults, "max.results", 5, "Maximum search results per claim")
	flag.IntVar(&maxClaims, "max.claims", 20, "Maximum claims checked per request")
	flag.IntVar(&maxConcurrent, "max.concurrent", 4, "Maximum claims checked in parallel")
	flag.BoolVar(&deepEvidence, "evidence.deep", false, "Fetch result pages and widen snippets with page text")
	flag.IntVar(&fetchPages, "evidence.pages", 3, "Pages fetched per claim in deep evidence mode")
	flag.IntVar(&fetchChars, "evidence.chars", 2000, "Maximum characters kept per fetched page")
	flag.StringVar(&cacheDir, "cache.dir", "", "Verdict cache directory; empty disables the file cache")
	flag.StringVar(&cacheRedisURL, "cache.redis", os.Getenv("CACHE_REDIS_URL"), "Redis URL for a shared verdict cache (overrides cache.dir)")
	flag.DurationVar(&cacheTTL, "cache.ttl", 0, "TTL for Redis verdict entries; 0 keeps them forever")
	flag.DurationVar(&cacheMaxAge, "cache.maxAge", 0, "Max age for file cache entries before purge; 0 disables")
	flag.IntVar(&cacheEntries, "cache.maxEntries", 0, "Max file cache entries kept; 0 disables")
	flag.BoolVar(&cacheClear, "cache.clear", false, "Clear file cache directory on startup")
	flag.BoolVar(&cacheStrict, "cache.strictPerms", false, "Restrict cache permissions (0700 dirs, 0600 files)")
	flag.BoolVar(&verbose, "v", false, "Verbose logging")
	flag.Parse()

	if verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if err := app.LoadEnvFiles(strings.Split(envFiles, ",")...); err != nil {
		log.Error().Err(err).Msg("dotenv load failed")
		os.Exit(2)
	}

	cfg := app.Config{
		ListenAddr:       listenAddr,
		RequestTimeout:   requestTimeout,
		MaxTextChars:     maxTextChars,
		LLMBaseURL:       llmBaseURL,
		LLMModel:         llmModel,
		LLMAPIKey:        llmKey,
		SearxURL:         searxURL,
		SearxKey:         searxKey,
		SearxUA:          searxUA,
		FileSearchPath:   fileSearchPath,
		MaxResults:       maxResults,
		MaxClaims:        maxClaims,
		MaxConcurrent:    maxConcurrent,
		DeepEvidence:     deepEvidence,
		FetchPages:       fetchPages,
		FetchChars:       fetchChars,
		CacheDir:         cacheDir,
		CacheRedisURL:    cacheRedisURL,
		CacheTTL:         cacheTTL,
		CacheMaxAge:      cacheMaxAge,
		CacheMaxEntries:  cacheEntries,
		CacheClear:       cacheClear,
		CacheStrictPerms: cacheStrict,
		Verbose:          verbose,
	}
	if s := strings.TrimSpace(allowOrigins); s != "" {
		parts := strings.Split(s, ",")
		list := make([]string, 0, len(parts))
		for _, p := range parts {
			if v := strings.TrimSpace(p); v != "" {
				list = append(list, v)
			}
		}
		cfg.AllowOrigins = list
	}

	if strings.TrimSpace(configPath) != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file load failed")
			os.Exit(2)
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyEnvToConfig(&cfg)

	if err := app.ValidateConfig(cfg); err != nil {
		log.Error().Err(err).Msg("invalid configuration")
		os.Exit(2)
	}

	log.Info().
		Str("version", app.BuildVersion).
		Str("commit", app.BuildCommit).
		Str("listen", cfg.ListenAddr).
		Msg("gofactcheck starting")

	if err := run(cfg); err != nil {
		log.Error().Err(err).Msg("run failed")
		os.Exit(1)
	}
}

func run(cfg app.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("init app: %w", err)
	}
	defer a.Close()

	return a.Run(ctx)
}
