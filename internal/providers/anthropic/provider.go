package anthropic

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/providers"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Config holds Anthropic-specific configuration.
type Config struct {
	APIKey       string                `yaml:"api_key"`
	BaseURL      string                `yaml:"base_url"`
	Model        string                `yaml:"model"`
	MaxTokens    int64                 `yaml:"max_tokens"`
	Capabilities []types.CapabilityTag `yaml:"capabilities"`
	LatencyBound time.Duration         `yaml:"latency_bound"`
}

// Provider adapts the Anthropic Messages API to the uniform provider
// contract.
type Provider struct {
	client *anthropic.Client
	config *Config
	logger *logrus.Logger
}

// New creates an Anthropic provider instance.
func New(config *Config, logger *logrus.Logger) *Provider {
	opts := []option.RequestOption{option.WithAPIKey(config.APIKey)}
	if config.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(config.BaseURL))
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = 1024
	}

	client := anthropic.NewClient(opts...)
	return &Provider{
		client: &client,
		config: config,
		logger: logger,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "anthropic" }

// Capabilities returns the capability tags this provider is configured for.
func (p *Provider) Capabilities() []types.CapabilityTag {
	return p.config.Capabilities
}

// Invoke runs one task against the Anthropic backend and normalizes the
// output.
func (p *Provider) Invoke(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(p.config.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(providers.BuildPrompt(task))),
		},
		MaxTokens: p.config.MaxTokens,
	})
	if err != nil {
		return nil, p.mapError(err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, types.NewAdapterError(p.Name(), types.ErrKindInvalidResponse,
			fmt.Errorf("no text blocks in message %s", resp.ID))
	}

	result, err := providers.Normalize(p.Name(), task.Tag, text.String())
	if err != nil {
		p.logger.WithError(err).WithField("task", task.ID).Warn("Anthropic completion failed normalization")
		return nil, err
	}
	return result, nil
}

// HealthCheck probes the backend with a minimal one-token message.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model: anthropic.Model(p.config.Model),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
		MaxTokens: 1,
	})
	if err != nil {
		return fmt.Errorf("anthropic health check failed: %w", err)
	}
	return nil
}

// mapError converts SDK errors into the common taxonomy.
func (p *Provider) mapError(err error) *types.AdapterError {
	var apiErr *anthropic.Error
	if errors.As(err, &apiErr) {
		return providers.MapFailure(p.Name(), apiErr.StatusCode, err)
	}
	return providers.MapFailure(p.Name(), 0, err)
}

var _ providers.Provider = (*Provider)(nil)
