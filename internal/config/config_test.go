package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

func clearProviderEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"ORCHESTRATOR_PORT", "ORCHESTRATOR_LOG_LEVEL", "ORCHESTRATOR_LOG_FORMAT",
		"OPENAI_API_KEY", "ANTHROPIC_API_KEY", "GEMINI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "8080" {
		t.Errorf("default port = %s, want 8080", cfg.Server.Port)
	}
	if cfg.Router.FailureThreshold != 3 {
		t.Errorf("default failure threshold = %d, want 3", cfg.Router.FailureThreshold)
	}
	if cfg.Router.TimeoutCeiling != 30*time.Second {
		t.Errorf("default timeout ceiling = %v, want 30s", cfg.Router.TimeoutCeiling)
	}
	if cfg.Router.TransparencyRetention != 1024 {
		t.Errorf("default retention = %d, want 1024", cfg.Router.TransparencyRetention)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("default logging = %s/%s, want info/json", cfg.Logging.Level, cfg.Logging.Format)
	}

	// every capability tag has a routing entry out of the box
	for _, tag := range types.AllCapabilityTags {
		if len(cfg.Routing[string(tag)]) == 0 {
			t.Errorf("no default routing for tag %s", tag)
		}
	}
}

func TestLoadConfig_NoCredentials(t *testing.T) {
	clearProviderEnv(t)

	_, err := LoadConfig("")
	if err == nil {
		t.Fatal("expected error when no provider has an API key")
	}
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *types.ConfigurationError, got %T", err)
	}
	if cfgErr.Field != "providers" {
		t.Errorf("error field = %s, want providers", cfgErr.Field)
	}
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-openai")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant")
	t.Setenv("ORCHESTRATOR_PORT", "9090")
	t.Setenv("ORCHESTRATOR_LOG_LEVEL", "debug")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "9090" {
		t.Errorf("port = %s, want 9090 from env", cfg.Server.Port)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("log level = %s, want debug from env", cfg.Logging.Level)
	}
	if cfg.Providers.OpenAI.APIKey != "sk-openai" {
		t.Error("OpenAI key not picked up from env")
	}
	if cfg.Providers.Anthropic.APIKey != "sk-ant" {
		t.Error("Anthropic key not picked up from env")
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("GEMINI_API_KEY", "g-key")

	content := `
server:
  port: "3000"
router:
  failure_threshold: 5
logging:
  level: warn
cache:
  ttls:
    REAL_TIME: 10s
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Server.Port != "3000" {
		t.Errorf("port = %s, want 3000 from file", cfg.Server.Port)
	}
	if cfg.Router.FailureThreshold != 5 {
		t.Errorf("failure threshold = %d, want 5 from file", cfg.Router.FailureThreshold)
	}
	if cfg.Logging.Level != "warn" {
		t.Errorf("log level = %s, want warn from file", cfg.Logging.Level)
	}
	if got := cfg.Cache.TTLs["REAL_TIME"]; got != 10*time.Second {
		t.Errorf("REAL_TIME TTL = %v, want 10s", got)
	}
	// untouched defaults survive a partial file
	if cfg.Router.TimeoutCeiling != 30*time.Second {
		t.Errorf("timeout ceiling = %v, want default 30s", cfg.Router.TimeoutCeiling)
	}
}

func TestLoadConfig_ZeroLatencyBoundGetsDefault(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	content := `
providers:
  openai:
    latency_bound: 0
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Providers.OpenAI.LatencyBound != DefaultLatencyBound {
		t.Errorf("latency bound = %v, want default %v", cfg.Providers.OpenAI.LatencyBound, DefaultLatencyBound)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	if _, err := LoadConfig("/nonexistent/config.yaml"); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")
	t.Setenv("ORCHESTRATOR_LOG_LEVEL", "verbose")

	_, err := LoadConfig("")
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *types.ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "logging.level" {
		t.Errorf("error field = %s, want logging.level", cfgErr.Field)
	}
}

func TestValidate_UnknownRoutingTag(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Routing["SUPERINTELLIGENCE"] = []string{"openai"}

	err := cfg.validate()
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *types.ConfigurationError, got %v", err)
	}
}

func TestValidate_UndeclaredCapability(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	// anthropic does not declare REAL_TIME by default
	cfg.Routing[string(types.TagRealTime)] = []string{"anthropic"}

	err := cfg.validate()
	var cfgErr *types.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected *types.ConfigurationError, got %v", err)
	}
	if cfgErr.Field != "routing.REAL_TIME" {
		t.Errorf("error field = %s, want routing.REAL_TIME", cfgErr.Field)
	}
}

func TestValidate_UnknownRoutingProvider(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Providers.OpenAI.APIKey = "sk-test"
	cfg.Routing[string(types.TagResearch)] = []string{"mistral"}

	if err := cfg.validate(); err == nil {
		t.Fatal("expected error for unknown provider in routing table")
	}
}

func TestCandidateOrder_FiltersToEnabled(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Providers.Anthropic.APIKey = "sk-ant"
	// openai and gemini stay disabled

	order := cfg.CandidateOrder()
	research := order[types.TagResearch]
	if len(research) != 1 || research[0] != "anthropic" {
		t.Errorf("RESEARCH order = %v, want [anthropic]", research)
	}
	// a tag whose candidates are all disabled yields an empty list, not an error
	if got := order[types.TagRealTime]; len(got) != 0 {
		t.Errorf("REAL_TIME order = %v, want empty with gemini and openai disabled", got)
	}
}

func TestEnabledProviders(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	if got := cfg.EnabledProviders(); len(got) != 0 {
		t.Errorf("enabled = %v, want none without keys", got)
	}

	cfg.Providers.OpenAI.APIKey = "a"
	cfg.Providers.Gemini.APIKey = "b"
	got := cfg.EnabledProviders()
	if len(got) != 2 || got[0] != "openai" || got[1] != "gemini" {
		t.Errorf("enabled = %v, want [openai gemini]", got)
	}
}

func TestCacheTTLs_OverridesMergeOntoDefaults(t *testing.T) {
	cfg := &Config{}
	cfg.setDefaults()
	cfg.Cache.TTLs = map[string]time.Duration{
		string(types.TagRealTime): 5 * time.Second,
	}

	defaults := map[types.CapabilityTag]time.Duration{
		types.TagRealTime: 30 * time.Second,
		types.TagResearch: time.Hour,
	}
	ttls := cfg.CacheTTLs(defaults)
	if ttls[types.TagRealTime] != 5*time.Second {
		t.Errorf("REAL_TIME TTL = %v, want override 5s", ttls[types.TagRealTime])
	}
	if ttls[types.TagResearch] != time.Hour {
		t.Errorf("RESEARCH TTL = %v, want default 1h", ttls[types.TagResearch])
	}
}

func TestSaveToFile_RoundTrip(t *testing.T) {
	clearProviderEnv(t)
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	cfg.Server.Port = "7070"

	path := filepath.Join(t.TempDir(), "saved.yaml")
	if err := cfg.SaveToFile(path); err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}

	reloaded, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	if reloaded.Server.Port != "7070" {
		t.Errorf("reloaded port = %s, want 7070", reloaded.Server.Port)
	}
}
