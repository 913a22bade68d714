package providers

import (
	"context"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// Provider is the uniform capability-typed interface wrapping one external AI
// backend. Adapters normalize request and response shapes, map backend
// failures into the common taxonomy, and report liveness via HealthCheck.
//
// Invoke must return either a NormalizedResult or a *types.AdapterError;
// no other error type may escape an adapter.
type Provider interface {
	Name() string
	Capabilities() []types.CapabilityTag
	Invoke(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, error)
	HealthCheck(ctx context.Context) error
}
