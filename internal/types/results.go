package types

import "time"

// DefaultConfidence is assumed when a backend supplies no confidence of its
// own. Conservative by contract: a result without a stated confidence must
// never look more certain than one with.
const DefaultConfidence = 0.5

// DegradedConfidence is the fixed confidence of a synthesized placeholder
// result returned when every candidate provider is unavailable.
const DegradedConfidence = 0.1

// RankedMatch is one candidate in a job-matching result, with the raw factor
// signals the scoring engine consumes.
type RankedMatch struct {
	CandidateID string             `json:"candidate_id"`
	Name        string             `json:"name,omitempty"`
	Factors     map[string]float64 `json:"factors,omitempty"`
	Score       float64            `json:"score,omitempty"`
}

// NormalizedResult is the provider-agnostic shape every adapter must produce.
// Backend-specific payload shapes never leak past the adapter boundary.
// Confidence is always present in [0,1]; adapters substitute
// DefaultConfidence when the backend supplies none.
type NormalizedResult struct {
	Tag        CapabilityTag      `json:"tag"`
	Summary    string             `json:"summary,omitempty"`
	Skills     []string           `json:"skills,omitempty"`
	Estimate   *float64           `json:"estimate,omitempty"`
	Matches    []RankedMatch      `json:"matches,omitempty"`
	Factors    map[string]float64 `json:"factors,omitempty"`
	Confidence float64            `json:"confidence"`
	Degraded   bool               `json:"degraded,omitempty"`
}

// Clamp bounds the confidence into [0,1]. An explicit zero is kept as is;
// the adapter layer resolves an absent confidence to the conservative
// default before results reach here.
func (r *NormalizedResult) Clamp() {
	if r.Confidence < 0 {
		r.Confidence = 0
	} else if r.Confidence > 1 {
		r.Confidence = 1
	}
}

// FactorContribution explains one factor of a score: its weight, the raw
// sub-score in [0,1], and the weighted contribution to the aggregate.
type FactorContribution struct {
	Factor       string  `json:"factor"`
	Weight       float64 `json:"weight"`
	SubScore     float64 `json:"sub_score"`
	Contribution float64 `json:"contribution"`
}

// ScoreBreakdown is the full attribution of an aggregate score. Weights
// across all factors of a profile sum to 1.0, so the aggregate stays in
// [0,1] given sub-scores in [0,1].
type ScoreBreakdown struct {
	Profile   string               `json:"profile"`
	Factors   []FactorContribution `json:"factors"`
	Aggregate float64              `json:"aggregate"`
}

// TransparencyRecord captures, for one served request, everything needed to
// explain how the result was derived. It is derived state: retained for the
// lifetime of the cache entry it accompanies, then discardable.
type TransparencyRecord struct {
	RequestID        string          `json:"request_id"`
	Provider         string          `json:"provider"`
	Tag              CapabilityTag   `json:"tag"`
	Breakdown        *ScoreBreakdown `json:"breakdown,omitempty"`
	Confidence       float64         `json:"confidence"`
	Degraded         bool            `json:"degraded"`
	AlgorithmVersion string          `json:"algorithm_version"`
	Timestamp        time.Time       `json:"timestamp"`
	FactorNotes      []string        `json:"factor_notes,omitempty"`
}

// ProviderStats aggregates outcomes for a single provider.
type ProviderStats struct {
	Served    int64 `json:"served"`
	Successes int64 `json:"successes"`
	Failures  int64 `json:"failures"`
}

// AggregateReport is the only externally queryable aggregate the engine
// maintains: per-provider usage, degraded-result rate, average confidence.
type AggregateReport struct {
	TotalRequests     int64                     `json:"total_requests"`
	DegradedRequests  int64                     `json:"degraded_requests"`
	DegradedRate      float64                   `json:"degraded_rate"`
	AverageConfidence float64                   `json:"average_confidence"`
	ProviderUsage     map[string]*ProviderStats `json:"provider_usage"`
	GeneratedAt       time.Time                 `json:"generated_at"`
}
