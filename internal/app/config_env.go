package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.ListenAddr == "" {
		cfg.ListenAddr = os.Getenv("LISTEN_ADDR")
	}

	if cfg.LLMBaseURL == "" {
		cfg.LLMBaseURL = os.Getenv("LLM_BASE_URL")
	}
	if cfg.LLMModel == "" {
		cfg.LLMModel = os.Getenv("LLM_MODEL")
	}
	if cfg.LLMAPIKey == "" {
		// GROQ_API_KEY is accepted since Groq is a common backend choice.
		v := os.Getenv("LLM_API_KEY")
		if v == "" {
			v = os.Getenv("GROQ_API_KEY")
		}
		cfg.LLMAPIKey = v
	}

	if cfg.SearxURL == "" {
		// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
		v := os.Getenv("SEARX_URL")
		if v == "" {
			v = os.Getenv("SEARXNG_URL")
		}
		cfg.SearxURL = v
	}
	if cfg.SearxKey == "" {
		v := os.Getenv("SEARX_KEY")
		if v == "" {
			v = os.Getenv("SEARXNG_KEY")
		}
		cfg.SearxKey = v
	}
	if cfg.FileSearchPath == "" {
		cfg.FileSearchPath = os.Getenv("SEARCH_FILE")
	}

	if cfg.CacheDir == "" {
		cfg.CacheDir = os.Getenv("CACHE_DIR")
	}
	if cfg.CacheRedisURL == "" {
		cfg.CacheRedisURL = os.Getenv("CACHE_REDIS_URL")
	}

	if cfg.MaxConcurrent == 0 {
		if n, err := strconv.Atoi(strings.TrimSpace(os.Getenv("MAX_CONCURRENT"))); err == nil && n > 0 {
			cfg.MaxConcurrent = n
		}
	}

	if cfg.RequestTimeout == 0 {
		if d, err := time.ParseDuration(os.Getenv("REQUEST_TIMEOUT")); err == nil {
			cfg.RequestTimeout = d
		}
	}
	if cfg.CacheMaxAge == 0 {
		if d, err := time.ParseDuration(os.Getenv("CACHE_MAX_AGE")); err == nil {
			cfg.CacheMaxAge = d
		}
	}
	if cfg.CacheTTL == 0 {
		if d, err := time.ParseDuration(os.Getenv("CACHE_TTL")); err == nil {
			cfg.CacheTTL = d
		}
	}

	setBool := func(dst *bool, envKey string) {
		if *dst {
			return
		}
		switch strings.ToLower(strings.TrimSpace(os.Getenv(envKey))) {
		case "1", "true", "yes", "on":
			*dst = true
		}
	}
	setBool(&cfg.Verbose, "VERBOSE")
	setBool(&cfg.DeepEvidence, "DEEP_EVIDENCE")
	setBool(&cfg.CacheClear, "CACHE_CLEAR")
	setBool(&cfg.CacheStrictPerms, "CACHE_STRICT_PERMS")
}
