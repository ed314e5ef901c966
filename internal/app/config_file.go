package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema. Nested
// sections map naturally to flags and env.
type FileConfig struct {
	Server struct {
		Addr           string        `yaml:"addr" json:"addr"`
		AllowOrigins   []string      `yaml:"allowOrigins" json:"allowOrigins"`
		RequestTimeout time.Duration `yaml:"requestTimeout" json:"requestTimeout"`
		MaxTextChars   int           `yaml:"maxTextChars" json:"maxTextChars"`
	} `yaml:"server" json:"server"`

	LLM struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
		UA  string `yaml:"ua" json:"ua"`
	} `yaml:"searx" json:"searx"`

	Search struct {
		File string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	Check struct {
		MaxResults    int `yaml:"maxResults" json:"maxResults"`
		MaxClaims     int `yaml:"maxClaims" json:"maxClaims"`
		MaxConcurrent int `yaml:"maxConcurrent" json:"maxConcurrent"`
	} `yaml:"check" json:"check"`

	Evidence struct {
		Deep  bool `yaml:"deep" json:"deep"`
		Pages int  `yaml:"pages" json:"pages"`
		Chars int  `yaml:"chars" json:"chars"`
	} `yaml:"evidence" json:"evidence"`

	Cache struct {
		Dir         string        `yaml:"dir" json:"dir"`
		RedisURL    string        `yaml:"redisURL" json:"redisURL"`
		TTL         time.Duration `yaml:"ttl" json:"ttl"`
		MaxAge      time.Duration `yaml:"maxAge" json:"maxAge"`
		MaxEntries  int           `yaml:"maxEntries" json:"maxEntries"`
		Clear       bool          `yaml:"clear" json:"clear"`
		StrictPerms bool          `yaml:"strictPerms" json:"strictPerms"`
	} `yaml:"cache" json:"cache"`

	Verbose bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for fields still
// at their flag defaults, so explicit flags keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	const (
		addrDefault          = ":8000"
		searxUADefault       = "gofactcheck/1.0 (+https://github.com/hyperifyio/gofactcheck)"
		maxResultsDefault    = 5
		maxClaimsDefault     = 20
		maxConcurrentDefault = 4
		maxTextCharsDefault  = 20000
	)

	if (cfg.ListenAddr == "" || cfg.ListenAddr == addrDefault) && fc.Server.Addr != "" {
		cfg.ListenAddr = fc.Server.Addr
	}
	if len(cfg.AllowOrigins) == 0 && len(fc.Server.AllowOrigins) > 0 {
		cfg.AllowOrigins = append([]string{}, fc.Server.AllowOrigins...)
	}
	if cfg.RequestTimeout == 0 && fc.Server.RequestTimeout > 0 {
		cfg.RequestTimeout = fc.Server.RequestTimeout
	}
	if (cfg.MaxTextChars == 0 || cfg.MaxTextChars == maxTextCharsDefault) && fc.Server.MaxTextChars > 0 {
		cfg.MaxTextChars = fc.Server.MaxTextChars
	}

	if cfg.LLMBaseURL == "" && fc.LLM.BaseURL != "" {
		cfg.LLMBaseURL = fc.LLM.BaseURL
	}
	if cfg.LLMModel == "" && fc.LLM.Model != "" {
		cfg.LLMModel = fc.LLM.Model
	}
	if cfg.LLMAPIKey == "" && fc.LLM.APIKey != "" {
		cfg.LLMAPIKey = fc.LLM.APIKey
	}

	if cfg.SearxURL == "" && fc.Searx.URL != "" {
		cfg.SearxURL = fc.Searx.URL
	}
	if cfg.SearxKey == "" && fc.Searx.Key != "" {
		cfg.SearxKey = fc.Searx.Key
	}
	if (cfg.SearxUA == "" || cfg.SearxUA == searxUADefault) && fc.Searx.UA != "" {
		cfg.SearxUA = fc.Searx.UA
	}
	if cfg.FileSearchPath == "" && fc.Search.File != "" {
		cfg.FileSearchPath = fc.Search.File
	}

	if (cfg.MaxResults == 0 || cfg.MaxResults == maxResultsDefault) && fc.Check.MaxResults > 0 {
		cfg.MaxResults = fc.Check.MaxResults
	}
	if (cfg.MaxClaims == 0 || cfg.MaxClaims == maxClaimsDefault) && fc.Check.MaxClaims > 0 {
		cfg.MaxClaims = fc.Check.MaxClaims
	}
	if (cfg.MaxConcurrent == 0 || cfg.MaxConcurrent == maxConcurrentDefault) && fc.Check.MaxConcurrent > 0 {
		cfg.MaxConcurrent = fc.Check.MaxConcurrent
	}

	if !cfg.DeepEvidence && fc.Evidence.Deep {
		cfg.DeepEvidence = true
	}
	if cfg.FetchPages == 0 && fc.Evidence.Pages > 0 {
		cfg.FetchPages = fc.Evidence.Pages
	}
	if cfg.FetchChars == 0 && fc.Evidence.Chars > 0 {
		cfg.FetchChars = fc.Evidence.Chars
	}

	if cfg.CacheDir == "" && fc.Cache.Dir != "" {
		cfg.CacheDir = fc.Cache.Dir
	}
	if cfg.CacheRedisURL == "" && fc.Cache.RedisURL != "" {
		cfg.CacheRedisURL = fc.Cache.RedisURL
	}
	if cfg.CacheTTL == 0 && fc.Cache.TTL > 0 {
		cfg.CacheTTL = fc.Cache.TTL
	}
	if cfg.CacheMaxAge == 0 && fc.Cache.MaxAge > 0 {
		cfg.CacheMaxAge = fc.Cache.MaxAge
	}
	if cfg.CacheMaxEntries == 0 && fc.Cache.MaxEntries > 0 {
		cfg.CacheMaxEntries = fc.Cache.MaxEntries
	}
	if !cfg.CacheClear && fc.Cache.Clear {
		cfg.CacheClear = true
	}
	if !cfg.CacheStrictPerms && fc.Cache.StrictPerms {
		cfg.CacheStrictPerms = true
	}

	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.ListenAddr) == "" {
		return errors.New("config: listen address is required")
	}
	if strings.TrimSpace(cfg.LLMModel) == "" {
		return errors.New("config: llm.model is required (or set LLM_MODEL)")
	}
	if strings.TrimSpace(cfg.SearxURL) == "" && strings.TrimSpace(cfg.FileSearchPath) == "" {
		return errors.New("config: searx.url or search.file is required")
	}
	if cfg.MaxResults < 0 || cfg.MaxClaims < 0 || cfg.MaxConcurrent < 0 || cfg.MaxTextChars < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	return nil
}
