package gemini

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"

	"github.com/skillmesh/ai-orchestrator/internal/providers"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Config holds Gemini-specific configuration.
type Config struct {
	APIKey       string                `yaml:"api_key"`
	Model        string                `yaml:"model"`
	Capabilities []types.CapabilityTag `yaml:"capabilities"`
	LatencyBound time.Duration         `yaml:"latency_bound"`
}

// Provider adapts the Gemini API to the uniform provider contract.
type Provider struct {
	client *genai.Client
	config *Config
	logger *logrus.Logger
}

// New creates a Gemini provider instance.
func New(ctx context.Context, config *Config, logger *logrus.Logger) (*Provider, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  config.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	return &Provider{
		client: client,
		config: config,
		logger: logger,
	}, nil
}

// Name returns the provider identifier.
func (p *Provider) Name() string { return "gemini" }

// Capabilities returns the capability tags this provider is configured for.
func (p *Provider) Capabilities() []types.CapabilityTag {
	return p.config.Capabilities
}

// Invoke runs one task against the Gemini backend and normalizes the output.
func (p *Provider) Invoke(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, error) {
	resp, err := p.client.Models.GenerateContent(ctx, p.config.Model,
		genai.Text(providers.BuildPrompt(task)), nil)
	if err != nil {
		return nil, p.mapError(err)
	}

	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, types.NewAdapterError(p.Name(), types.ErrKindInvalidResponse,
			fmt.Errorf("gemini returned no candidates"))
	}

	var text string
	for _, part := range resp.Candidates[0].Content.Parts {
		if part.Text != "" {
			text += part.Text
		}
	}

	result, err := providers.Normalize(p.Name(), task.Tag, text)
	if err != nil {
		p.logger.WithError(err).WithField("task", task.ID).Warn("Gemini completion failed normalization")
		return nil, err
	}
	return result, nil
}

// HealthCheck probes the backend with a minimal generation call.
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.client.Models.GenerateContent(ctx, p.config.Model, genai.Text("ping"), nil)
	if err != nil {
		return fmt.Errorf("gemini health check failed: %w", err)
	}
	return nil
}

// mapError converts genai errors into the common taxonomy.
func (p *Provider) mapError(err error) *types.AdapterError {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return providers.MapFailure(p.Name(), apiErr.Code, err)
	}
	return providers.MapFailure(p.Name(), 0, err)
}

var _ providers.Provider = (*Provider)(nil)
