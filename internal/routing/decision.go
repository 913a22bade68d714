package routing

import "github.com/skillmesh/ai-orchestrator/internal/types"

// attempt records one provider invocation during fallback iteration.
type attempt struct {
	Provider string                 `json:"provider"`
	Kind     types.AdapterErrorKind `json:"kind,omitempty"`
	Err      string                 `json:"error,omitempty"`
}

// routeOutcome summarizes how one task was served: which provider answered,
// every attempt made on the way there, and whether the answer came from
// degraded synthesis. Used for logging and tests; the caller-facing
// explanation lives in the transparency record.
type routeOutcome struct {
	Provider string    `json:"provider"`
	Attempts []attempt `json:"attempts,omitempty"`
	Degraded bool      `json:"degraded"`
}

func (o *routeOutcome) noteFailure(provider string, err error) {
	a := attempt{Provider: provider, Err: err.Error()}
	if ae, ok := types.AsAdapterError(err); ok {
		a.Kind = ae.Kind
	}
	o.Attempts = append(o.Attempts, a)
}

func (o *routeOutcome) failedProviders() []string {
	out := make([]string, 0, len(o.Attempts))
	for _, a := range o.Attempts {
		out = append(out, a.Provider)
	}
	return out
}
