package app

import "time"

// Config holds runtime configuration for the service.
type Config struct {
	// Server
	ListenAddr     string
	AllowOrigins   []string
	RequestTimeout time.Duration
	MaxTextChars   int

	// LLM
	LLMBaseURL string
	LLMModel   string
	LLMAPIKey  string

	// Search
	SearxURL       string
	SearxKey       string
	SearxUA        string
	FileSearchPath string

	// Checking
	MaxResults    int
	MaxClaims     int
	MaxConcurrent int

	// Deep evidence: fetch result pages and widen snippets.
	DeepEvidence bool
	FetchPages   int
	FetchChars   int

	// Verdict cache
	CacheDir         string
	CacheRedisURL    string
	CacheTTL         time.Duration
	CacheMaxAge      time.Duration
	CacheMaxEntries  int
	CacheClear       bool
	CacheStrictPerms bool

	Verbose bool
}
