package types

import "time"

// TaskKind identifies what the caller wants done. The caller already knows
// its own task kind ("analyze-job", "find-matches", ...); classification
// dispatches on the kind rather than inferring intent from content.
type TaskKind string

const (
	KindAnalyzeJob       TaskKind = "analyze-job"
	KindFindMatches      TaskKind = "find-matches"
	KindPredictDemand    TaskKind = "predict-demand"
	KindSuggestPrice     TaskKind = "suggest-price"
	KindModerateContent  TaskKind = "moderate-content"
	KindResearchMarket   TaskKind = "research-market"
	KindDraftProposal    TaskKind = "draft-proposal"
	KindDescribeMedia    TaskKind = "describe-media"
)

// TaskRequest is the unit of work the router handles. It exists only for the
// duration of one call; nothing beyond the cache TTL ever persists it.
type TaskRequest struct {
	ID          string         `json:"id"`
	Kind        TaskKind       `json:"kind"`
	Tag         CapabilityTag  `json:"tag"`
	Payload     map[string]any `json:"payload"`
	Fingerprint string         `json:"fingerprint"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// TaskResponse is the unified result handed back to the caller. Callers must
// inspect Degraded to distinguish a genuine result from a placeholder; the
// engine never substitutes one silently.
type TaskResponse struct {
	RequestID    string              `json:"request_id"`
	Result       *NormalizedResult   `json:"result"`
	Confidence   float64             `json:"confidence"`
	Provider     string              `json:"provider"`
	Degraded     bool                `json:"degraded"`
	Transparency *TransparencyRecord `json:"transparency,omitempty"`
}
