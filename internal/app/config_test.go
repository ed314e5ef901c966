package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  addr: ":9000"
  maxTextChars: 5000
llm:
  base: http://localhost:8081/v1
  model: test-model
searx:
  url: http://localhost:8888
check:
  maxResults: 7
cache:
  dir: /tmp/factcheck-cache
verbose: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	fc, err := LoadConfigFile(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if fc.Server.Addr != ":9000" || fc.Server.MaxTextChars != 5000 {
		t.Fatalf("unexpected server config: %+v", fc.Server)
	}
	if fc.LLM.Model != "test-model" || fc.Check.MaxResults != 7 {
		t.Fatalf("unexpected config: %+v", fc)
	}
	if fc.Cache.Dir != "/tmp/factcheck-cache" || !fc.Verbose {
		t.Fatalf("unexpected config: %+v", fc)
	}
}

func TestApplyFileConfig_FlagsWin(t *testing.T) {
	cfg := Config{
		ListenAddr: ":7777", // explicit flag value, not the default
		LLMModel:   "",
	}
	var fc FileConfig
	fc.Server.Addr = ":9000"
	fc.LLM.Model = "file-model"
	ApplyFileConfig(&cfg, fc)
	if cfg.ListenAddr != ":7777" {
		t.Fatalf("explicit flag overridden: %q", cfg.ListenAddr)
	}
	if cfg.LLMModel != "file-model" {
		t.Fatalf("file value not applied: %q", cfg.LLMModel)
	}
}

func TestApplyFileConfig_DefaultsYield(t *testing.T) {
	cfg := Config{ListenAddr: ":8000", MaxResults: 5}
	var fc FileConfig
	fc.Server.Addr = ":9000"
	fc.Check.MaxResults = 9
	ApplyFileConfig(&cfg, fc)
	if cfg.ListenAddr != ":9000" {
		t.Fatalf("default not overridden by file: %q", cfg.ListenAddr)
	}
	if cfg.MaxResults != 9 {
		t.Fatalf("default not overridden by file: %d", cfg.MaxResults)
	}
}

func TestApplyEnvToConfig(t *testing.T) {
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("SEARXNG_URL", "http://searx.env")
	t.Setenv("GROQ_API_KEY", "secret")
	t.Setenv("DEEP_EVIDENCE", "true")

	cfg := Config{}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "env-model" {
		t.Fatalf("env model not applied: %q", cfg.LLMModel)
	}
	if cfg.SearxURL != "http://searx.env" {
		t.Fatalf("env searx url not applied: %q", cfg.SearxURL)
	}
	if cfg.LLMAPIKey != "secret" {
		t.Fatalf("groq key fallback not applied: %q", cfg.LLMAPIKey)
	}
	if !cfg.DeepEvidence {
		t.Fatal("boolean env not applied")
	}
}

func TestApplyEnvToConfig_ExplicitWins(t *testing.T) {
	t.Setenv("LLM_MODEL", "env-model")
	cfg := Config{LLMModel: "explicit"}
	ApplyEnvToConfig(&cfg)
	if cfg.LLMModel != "explicit" {
		t.Fatalf("explicit value overridden: %q", cfg.LLMModel)
	}
}

func TestValidateConfig(t *testing.T) {
	valid := Config{ListenAddr: ":8000", LLMModel: "m", SearxURL: "http://x"}
	if err := ValidateConfig(valid); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := ValidateConfig(Config{ListenAddr: ":8000", SearxURL: "http://x"}); err == nil {
		t.Fatal("expected missing model error")
	}
	if err := ValidateConfig(Config{ListenAddr: ":8000", LLMModel: "m"}); err == nil {
		t.Fatal("expected missing search backend error")
	}
	fileOnly := Config{ListenAddr: ":8000", LLMModel: "m", FileSearchPath: "results.json"}
	if err := ValidateConfig(fileOnly); err != nil {
		t.Fatalf("file provider should satisfy search requirement: %v", err)
	}
}
