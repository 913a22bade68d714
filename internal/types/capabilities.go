package types

import "time"

// CapabilityTag classifies the kind of reasoning a task requires. A task is
// tagged exactly once at classification time and the tag never changes.
type CapabilityTag string

const (
	TagComplexAnalysis  CapabilityTag = "COMPLEX_ANALYSIS"
	TagRealTime         CapabilityTag = "REAL_TIME"
	TagResearch         CapabilityTag = "RESEARCH"
	TagCreative         CapabilityTag = "CREATIVE"
	TagMultimodal       CapabilityTag = "MULTIMODAL"
	TagJobMatching      CapabilityTag = "JOB_MATCHING"
	TagDemandPrediction CapabilityTag = "DEMAND_PREDICTION"
	TagPricing          CapabilityTag = "PRICING"
)

// AllCapabilityTags lists every known tag, used for config validation.
var AllCapabilityTags = []CapabilityTag{
	TagComplexAnalysis,
	TagRealTime,
	TagResearch,
	TagCreative,
	TagMultimodal,
	TagJobMatching,
	TagDemandPrediction,
	TagPricing,
}

// IsValid reports whether the tag is one of the known capability tags.
func (t CapabilityTag) IsValid() bool {
	for _, known := range AllCapabilityTags {
		if t == known {
			return true
		}
	}
	return false
}

// ProviderDescriptor describes one configured backend: its identity, the
// capability tags it can serve, and the latency bound used to derive per-call
// timeouts. Descriptors are owned by the registry; liveness updates flow
// one-way from call outcomes and health probes into the registry.
type ProviderDescriptor struct {
	ID           string          `json:"id"`
	Capabilities []CapabilityTag `json:"capabilities"`
	LatencyBound time.Duration   `json:"latency_bound"`
}

// Serves reports whether the descriptor declares the given capability tag.
func (d *ProviderDescriptor) Serves(tag CapabilityTag) bool {
	for _, c := range d.Capabilities {
		if c == tag {
			return true
		}
	}
	return false
}

// ProviderHealth is a point-in-time liveness snapshot for one provider,
// exposed for operational visibility.
type ProviderHealth struct {
	Status              string    `json:"status"` // "live" or "unavailable"
	ConsecutiveFailures int       `json:"consecutive_failures"`
	LastChecked         time.Time `json:"last_checked"`
	LastError           string    `json:"last_error,omitempty"`
}
