package openai

import (
	"context"
	"errors"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/providers"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Config holds OpenAI-specific configuration.
type Config struct {
	APIKey       string                `yaml:"api_key"`
	BaseURL      string                `yaml:"base_url"`
	Model        string                `yaml:"model"`
	Capabilities []types.CapabilityTag `yaml:"capabilities"`
	LatencyBound time.Duration         `yaml:"latency_bound"`
}

// Provider adapts the OpenAI chat completion API to the uniform provider
// contract.
type Provider struct {
	client *openai.Client
	config *Config
	logger *logrus.Logger
}

// New creates an OpenAI provider instance.
func New(config *Config, logger *logrus.Logger) *Provider {
	clientConfig := openai.DefaultConfig(config.APIKey)
	if config.BaseURL != "" {
		clientConfig.BaseURL = config.BaseURL
	}

	return &Provider{
		client: openai.NewClientWithConfig(clientConfig),
		config: config,
		logger: logger,
	}
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "openai" }

// Capabilities returns the capability tags this provider is configured for.
func (p *Provider) Capabilities() []types.CapabilityTag {
	return p.config.Capabilities
}

// Invoke runs one task against the OpenAI backend and normalizes the output.
func (p *Provider) Invoke(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, error) {
	req := openai.ChatCompletionRequest{
		Model: p.config.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: providers.BuildPrompt(task)},
		},
		Temperature: 0, // normalized output must stay deterministic-ish
	}

	resp, err := p.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, p.mapError(err)
	}

	if len(resp.Choices) == 0 {
		return nil, types.NewAdapterError(p.Name(), types.ErrKindInvalidResponse,
			fmt.Errorf("empty choices in completion %s", resp.ID))
	}

	result, err := providers.Normalize(p.Name(), task.Tag, resp.Choices[0].Message.Content)
	if err != nil {
		p.logger.WithError(err).WithField("task", task.ID).Warn("OpenAI completion failed normalization")
		return nil, err
	}
	return result, nil
}

// HealthCheck probes the backend with the cheapest call available.
func (p *Provider) HealthCheck(ctx context.Context) error {
	if _, err := p.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai health check failed: %w", err)
	}
	return nil
}

// mapError converts go-openai errors into the common taxonomy.
func (p *Provider) mapError(err error) *types.AdapterError {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return providers.MapFailure(p.Name(), apiErr.HTTPStatusCode, err)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return providers.MapFailure(p.Name(), reqErr.HTTPStatusCode, err)
	}
	return providers.MapFailure(p.Name(), 0, err)
}

var _ providers.Provider = (*Provider)(nil)
