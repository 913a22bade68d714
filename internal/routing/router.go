package routing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/cache"
	"github.com/skillmesh/ai-orchestrator/internal/classify"
	"github.com/skillmesh/ai-orchestrator/internal/registry"
	"github.com/skillmesh/ai-orchestrator/internal/scoring"
	"github.com/skillmesh/ai-orchestrator/internal/transparency"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// DefaultTimeoutCeiling is the global hard ceiling on any single provider
// invocation, regardless of the provider's declared latency bound.
const DefaultTimeoutCeiling = 30 * time.Second

// Router routes classified tasks to providers with deterministic fallback.
// Candidate order is fixed priority, never randomized or load-balanced:
// explainability requires a stable preferred path per capability tag.
type Router struct {
	classifier *classify.Classifier
	registry   *registry.Registry
	cache      *cache.ResponseCache
	scorer     *scoring.Engine
	reporter   *transparency.Reporter
	logger     *logrus.Logger
	ceiling    time.Duration
}

// New creates a router over the given collaborators. The registry is the
// single source of provider state, injected here rather than held globally.
func New(
	classifier *classify.Classifier,
	reg *registry.Registry,
	responseCache *cache.ResponseCache,
	scorer *scoring.Engine,
	reporter *transparency.Reporter,
	ceiling time.Duration,
	logger *logrus.Logger,
) *Router {
	if ceiling <= 0 {
		ceiling = DefaultTimeoutCeiling
	}
	return &Router{
		classifier: classifier,
		registry:   reg,
		cache:      responseCache,
		scorer:     scorer,
		reporter:   reporter,
		logger:     logger,
		ceiling:    ceiling,
	}
}

// Submit is the submit-task-get-result interface: classify, route with
// fallback, score, explain. The returned response is always structurally
// valid; callers must inspect Degraded to tell a placeholder from a genuine
// result. Only classification errors cross this boundary.
func (r *Router) Submit(ctx context.Context, kind types.TaskKind, payload map[string]any) (*types.TaskResponse, error) {
	tag, _, err := r.classifier.Classify(kind)
	if err != nil {
		return nil, err
	}

	fingerprint, err := cache.Fingerprint(tag, payload)
	if err != nil {
		return nil, &types.ClassificationError{Kind: kind}
	}

	// Cache hits are a performance optimization, not a distinct outcome: the
	// response keeps the original request id and provider, so the id the
	// caller holds still resolves to the retained transparency record.
	if entry, ok := r.cache.Get(fingerprint); ok {
		r.logger.WithFields(logrus.Fields{
			"task":        entry.Record.RequestID,
			"tag":         tag,
			"fingerprint": fingerprint,
			"provider":    entry.Record.Provider,
		}).Debug("Served from cache")
		return responseFrom(entry.Record.RequestID, entry.Result, entry.Record), nil
	}

	task := &types.TaskRequest{
		ID:          uuid.NewString(),
		Kind:        kind,
		Tag:         tag,
		Payload:     payload,
		Fingerprint: fingerprint,
		SubmittedAt: time.Now().UTC(),
	}

	result, outcome := r.route(ctx, task)

	breakdown := r.scoreResult(task, result)
	record := transparency.Explain(task, outcome.Provider, result, breakdown)
	r.reporter.Observe(record)
	r.cache.Put(fingerprint, tag, &cache.Entry{Result: result, Record: record})

	r.logger.WithFields(logrus.Fields{
		"task":             task.ID,
		"tag":              tag,
		"provider":         outcome.Provider,
		"degraded":         outcome.Degraded,
		"failed_providers": outcome.failedProviders(),
		"confidence":       result.Confidence,
	}).Info("Task routed")

	return responseFrom(task.ID, result, record), nil
}

// route walks the registry's live candidate order sequentially, stopping at
// the first success. Candidates run one at a time, never raced in parallel,
// so the serving provider is always unambiguous. Exhaustion degrades instead
// of failing the caller.
func (r *Router) route(ctx context.Context, task *types.TaskRequest) (*types.NormalizedResult, *routeOutcome) {
	outcome := &routeOutcome{}

	for _, desc := range r.registry.CandidatesFor(task.Tag) {
		result, err := r.invoke(ctx, task, desc)
		if err != nil {
			outcome.noteFailure(desc.ID, err)
			r.logger.WithError(err).WithFields(logrus.Fields{
				"task":     task.ID,
				"provider": desc.ID,
			}).Warn("Provider invocation failed, falling back")
			continue
		}

		outcome.Provider = desc.ID
		return result, outcome
	}

	outcome.Provider = degradedProviderID
	outcome.Degraded = true
	r.logger.WithFields(logrus.Fields{
		"task": task.ID,
		"tag":  task.Tag,
	}).Warn("All candidates unavailable, synthesizing degraded result")
	return synthesizeDegraded(task.Tag), outcome
}

// invoke runs one bounded provider call and reports the outcome to the
// registry and reporter exactly once, timeout included.
func (r *Router) invoke(ctx context.Context, task *types.TaskRequest, desc *types.ProviderDescriptor) (*types.NormalizedResult, error) {
	provider, ok := r.registry.Provider(desc.ID)
	if !ok {
		return nil, types.NewAdapterError(desc.ID, types.ErrKindUnreachable, nil)
	}

	timeout := desc.LatencyBound
	if timeout <= 0 || timeout > r.ceiling {
		timeout = r.ceiling
	}

	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := provider.Invoke(callCtx, task)
	success := err == nil
	r.registry.ReportOutcome(desc.ID, success)
	r.reporter.ObserveOutcome(desc.ID, success)

	if err != nil {
		if _, ok := types.AsAdapterError(err); !ok {
			// adapters must return taxonomy errors; anything else is treated
			// as unreachable
			err = types.NewAdapterError(desc.ID, types.ErrKindUnreachable, err)
		}
		return nil, err
	}

	result.Tag = task.Tag
	result.Clamp()
	return result, nil
}

// scoreResult merges provider-supplied factor signals with locally computed
// ones and runs the profile configured for the task's tag. Tags without a
// profile, and degraded results, stay unscored.
func (r *Router) scoreResult(task *types.TaskRequest, result *types.NormalizedResult) *types.ScoreBreakdown {
	profile, ok := r.scorer.ProfileFor(task.Tag)
	if !ok || result.Degraded {
		return nil
	}

	factors := localFactors(task.Payload)
	for name, v := range result.Factors {
		factors[name] = v
	}

	breakdown, err := r.scorer.Score(profile, factors)
	if err != nil {
		r.logger.WithError(err).WithField("task", task.ID).Error("Scoring failed")
		return nil
	}

	r.scoreMatches(profile, result)
	return breakdown
}

// scoreMatches scores each ranked match on its own factor signals and orders
// the list best-first.
func (r *Router) scoreMatches(profile string, result *types.NormalizedResult) {
	if len(result.Matches) == 0 {
		return
	}
	for i := range result.Matches {
		b, err := r.scorer.Score(profile, result.Matches[i].Factors)
		if err != nil {
			continue
		}
		result.Matches[i].Score = b.Aggregate
	}
	sortMatches(result.Matches)
}

func responseFrom(requestID string, result *types.NormalizedResult, record *types.TransparencyRecord) *types.TaskResponse {
	return &types.TaskResponse{
		RequestID:    requestID,
		Result:       result,
		Confidence:   result.Confidence,
		Provider:     record.Provider,
		Degraded:     result.Degraded,
		Transparency: record,
	}
}
