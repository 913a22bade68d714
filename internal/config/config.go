package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/skillmesh/ai-orchestrator/internal/providers/anthropic"
	"github.com/skillmesh/ai-orchestrator/internal/providers/gemini"
	"github.com/skillmesh/ai-orchestrator/internal/providers/openai"
	"github.com/skillmesh/ai-orchestrator/internal/scoring"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Config represents the complete application configuration. It is loaded
// once at startup and treated as a read-only snapshot afterwards; there is
// no hot reload.
type Config struct {
	Server    ServerConfig        `yaml:"server"`
	Router    RouterConfig        `yaml:"router"`
	Providers ProvidersConfig     `yaml:"providers"`
	Routing   map[string][]string `yaml:"routing"` // tag -> candidate priority order
	Cache     CacheConfig         `yaml:"cache"`
	Scoring   ScoringConfig       `yaml:"scoring"`
	Logging   LoggingConfig       `yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port           string        `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
}

// RouterConfig holds routing engine configuration.
type RouterConfig struct {
	FailureThreshold      int           `yaml:"failure_threshold"`
	ProbeInterval         time.Duration `yaml:"probe_interval"`
	TimeoutCeiling        time.Duration `yaml:"timeout_ceiling"`
	TransparencyRetention int           `yaml:"transparency_retention"`
}

// ProvidersConfig holds configuration for all providers. A nil section, or
// one without an API key, leaves that provider disabled.
type ProvidersConfig struct {
	OpenAI    *openai.Config    `yaml:"openai"`
	Anthropic *anthropic.Config `yaml:"anthropic"`
	Gemini    *gemini.Config    `yaml:"gemini"`
}

// CacheConfig holds response cache configuration.
type CacheConfig struct {
	TTLs map[string]time.Duration `yaml:"ttls"` // tag -> TTL
}

// ScoringConfig holds scoring profile configuration.
type ScoringConfig struct {
	Profiles    map[string]*scoring.Profile `yaml:"profiles"`
	TagProfiles map[string]string           `yaml:"tag_profiles"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "json" or "text"
	Output string `yaml:"output"` // "stdout", "stderr", or file path
}

// LoadConfig loads configuration from file and environment variables.
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	config.setDefaults()

	if configPath != "" {
		if err := config.loadFromFile(configPath); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	config.loadFromEnv()
	config.applyLatencyBounds()

	if err := config.validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// setDefaults sets default configuration values.
func (c *Config) setDefaults() {
	c.Server = ServerConfig{
		Port:           "8080",
		ReadTimeout:    30 * time.Second,
		WriteTimeout:   30 * time.Second,
		MaxHeaderBytes: 1 << 20, // 1MB
	}

	c.Router = RouterConfig{
		FailureThreshold:      3,
		ProbeInterval:         30 * time.Second,
		TimeoutCeiling:        30 * time.Second,
		TransparencyRetention: 1024,
	}

	c.Logging = LoggingConfig{
		Level:  "info",
		Format: "json",
		Output: "stdout",
	}

	c.Providers = ProvidersConfig{
		OpenAI: &openai.Config{
			Model:        "gpt-4o-mini",
			LatencyBound: 8 * time.Second,
			Capabilities: types.AllCapabilityTags,
		},
		Anthropic: &anthropic.Config{
			Model:        "claude-3-5-sonnet-20241022",
			MaxTokens:    1024,
			LatencyBound: 12 * time.Second,
			Capabilities: []types.CapabilityTag{
				types.TagComplexAnalysis,
				types.TagResearch,
				types.TagCreative,
				types.TagJobMatching,
			},
		},
		Gemini: &gemini.Config{
			Model:        "gemini-2.0-flash",
			LatencyBound: 6 * time.Second,
			Capabilities: []types.CapabilityTag{
				types.TagRealTime,
				types.TagMultimodal,
				types.TagDemandPrediction,
				types.TagPricing,
				types.TagResearch,
			},
		},
	}

	c.Routing = map[string][]string{
		string(types.TagComplexAnalysis):  {"anthropic", "openai"},
		string(types.TagRealTime):         {"gemini", "openai"},
		string(types.TagResearch):         {"anthropic", "gemini", "openai"},
		string(types.TagCreative):         {"anthropic", "openai"},
		string(types.TagMultimodal):       {"gemini", "openai"},
		string(types.TagJobMatching):      {"openai", "anthropic"},
		string(types.TagDemandPrediction): {"gemini", "openai"},
		string(types.TagPricing):          {"openai", "gemini"},
	}

	c.Cache = CacheConfig{TTLs: map[string]time.Duration{}}
	c.Scoring = ScoringConfig{
		Profiles:    scoring.DefaultProfiles(),
		TagProfiles: map[string]string{},
	}
	for tag, profile := range scoring.DefaultTagProfiles() {
		c.Scoring.TagProfiles[string(tag)] = profile
	}
}

// loadFromFile loads configuration from a YAML file.
func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse YAML config: %w", err)
	}
	return nil
}

// loadFromEnv loads configuration from environment variables.
func (c *Config) loadFromEnv() {
	if port := os.Getenv("ORCHESTRATOR_PORT"); port != "" {
		c.Server.Port = port
	}

	if key := os.Getenv("OPENAI_API_KEY"); key != "" && c.Providers.OpenAI != nil {
		c.Providers.OpenAI.APIKey = key
	}
	if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" && c.Providers.Anthropic != nil {
		c.Providers.Anthropic.APIKey = key
	}
	if key := os.Getenv("GEMINI_API_KEY"); key != "" && c.Providers.Gemini != nil {
		c.Providers.Gemini.APIKey = key
	}

	if level := os.Getenv("ORCHESTRATOR_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if format := os.Getenv("ORCHESTRATOR_LOG_FORMAT"); format != "" {
		c.Logging.Format = format
	}
}

// DefaultLatencyBound applies to providers whose latency_bound is unset or
// zero. Call and probe contexts derive their timeouts from this bound, so a
// zero value would expire them immediately.
const DefaultLatencyBound = 10 * time.Second

// applyLatencyBounds gives every configured provider a usable latency bound.
func (c *Config) applyLatencyBounds() {
	if c.Providers.OpenAI != nil && c.Providers.OpenAI.LatencyBound <= 0 {
		c.Providers.OpenAI.LatencyBound = DefaultLatencyBound
	}
	if c.Providers.Anthropic != nil && c.Providers.Anthropic.LatencyBound <= 0 {
		c.Providers.Anthropic.LatencyBound = DefaultLatencyBound
	}
	if c.Providers.Gemini != nil && c.Providers.Gemini.LatencyBound <= 0 {
		c.Providers.Gemini.LatencyBound = DefaultLatencyBound
	}
}

// validate validates the configuration. Any failure here is fatal to
// process startup.
func (c *Config) validate() error {
	if c.Server.Port == "" {
		return &types.ConfigurationError{Field: "server.port", Reason: "cannot be empty"}
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true,
	}
	if !validLogLevels[c.Logging.Level] {
		return &types.ConfigurationError{Field: "logging.level", Reason: fmt.Sprintf("invalid level %q", c.Logging.Level)}
	}

	if c.Router.FailureThreshold < 1 {
		return &types.ConfigurationError{Field: "router.failure_threshold", Reason: "must be at least 1"}
	}

	enabled := c.EnabledProviders()
	if len(enabled) == 0 {
		return &types.ConfigurationError{Field: "providers", Reason: "at least one provider must have an API key"}
	}

	caps := c.capabilitiesByID()
	for rawTag, order := range c.Routing {
		tag := types.CapabilityTag(rawTag)
		if !tag.IsValid() {
			return &types.ConfigurationError{Field: "routing", Reason: fmt.Sprintf("unknown capability tag %q", rawTag)}
		}
		for _, id := range order {
			declared, known := caps[id]
			if !known {
				return &types.ConfigurationError{Field: "routing." + rawTag, Reason: fmt.Sprintf("unknown provider %q", id)}
			}
			if !declared[tag] {
				return &types.ConfigurationError{
					Field:  "routing." + rawTag,
					Reason: fmt.Sprintf("provider %q does not declare capability %s", id, tag),
				}
			}
		}
	}

	for rawTag := range c.Cache.TTLs {
		if !types.CapabilityTag(rawTag).IsValid() {
			return &types.ConfigurationError{Field: "cache.ttls", Reason: fmt.Sprintf("unknown capability tag %q", rawTag)}
		}
	}

	for rawTag := range c.Scoring.TagProfiles {
		if !types.CapabilityTag(rawTag).IsValid() {
			return &types.ConfigurationError{Field: "scoring.tag_profiles", Reason: fmt.Sprintf("unknown capability tag %q", rawTag)}
		}
	}

	return nil
}

// EnabledProviders returns the ids of providers with credentials configured.
func (c *Config) EnabledProviders() []string {
	var enabled []string
	if c.Providers.OpenAI != nil && c.Providers.OpenAI.APIKey != "" {
		enabled = append(enabled, "openai")
	}
	if c.Providers.Anthropic != nil && c.Providers.Anthropic.APIKey != "" {
		enabled = append(enabled, "anthropic")
	}
	if c.Providers.Gemini != nil && c.Providers.Gemini.APIKey != "" {
		enabled = append(enabled, "gemini")
	}
	return enabled
}

// capabilitiesByID maps every configured provider id to its declared tags,
// whether or not credentials are present.
func (c *Config) capabilitiesByID() map[string]map[types.CapabilityTag]bool {
	out := make(map[string]map[types.CapabilityTag]bool)
	add := func(id string, tags []types.CapabilityTag) {
		set := make(map[types.CapabilityTag]bool, len(tags))
		for _, t := range tags {
			set[t] = true
		}
		out[id] = set
	}
	if c.Providers.OpenAI != nil {
		add("openai", c.Providers.OpenAI.Capabilities)
	}
	if c.Providers.Anthropic != nil {
		add("anthropic", c.Providers.Anthropic.Capabilities)
	}
	if c.Providers.Gemini != nil {
		add("gemini", c.Providers.Gemini.Capabilities)
	}
	return out
}

// CandidateOrder converts the routing table to typed tags, keeping only
// providers that are actually enabled. A tag whose every candidate lacks
// credentials stays configured but will always degrade at runtime.
func (c *Config) CandidateOrder() map[types.CapabilityTag][]string {
	enabled := make(map[string]bool)
	for _, id := range c.EnabledProviders() {
		enabled[id] = true
	}

	order := make(map[types.CapabilityTag][]string, len(c.Routing))
	for rawTag, ids := range c.Routing {
		var kept []string
		for _, id := range ids {
			if enabled[id] {
				kept = append(kept, id)
			}
		}
		order[types.CapabilityTag(rawTag)] = kept
	}
	return order
}

// CacheTTLs converts configured TTL overrides onto the defaults.
func (c *Config) CacheTTLs(defaults map[types.CapabilityTag]time.Duration) map[types.CapabilityTag]time.Duration {
	out := make(map[types.CapabilityTag]time.Duration, len(defaults))
	for tag, ttl := range defaults {
		out[tag] = ttl
	}
	for rawTag, ttl := range c.Cache.TTLs {
		out[types.CapabilityTag(rawTag)] = ttl
	}
	return out
}

// TagProfiles converts the configured tag-to-profile mapping to typed tags.
func (c *Config) TagProfiles() map[types.CapabilityTag]string {
	out := make(map[types.CapabilityTag]string, len(c.Scoring.TagProfiles))
	for rawTag, profile := range c.Scoring.TagProfiles {
		out[types.CapabilityTag(rawTag)] = profile
	}
	return out
}

// SaveToFile saves the current configuration to a YAML file.
func (c *Config) SaveToFile(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config to YAML: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
