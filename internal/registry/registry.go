package registry

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/skillmesh/ai-orchestrator/internal/providers"
	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// DefaultFailureThreshold marks a provider unavailable after this many
// consecutive failures.
const DefaultFailureThreshold = 3

// entry pairs a descriptor with its adapter and liveness bookkeeping. The
// counters are atomic so outcome reporting never takes a lock on the hot
// path; lastError is cold-path only and guarded separately.
type entry struct {
	descriptor *types.ProviderDescriptor
	provider   providers.Provider

	failures    atomic.Int32
	unavailable atomic.Bool
	lastChecked atomic.Int64 // unix nanos

	mu        sync.Mutex
	lastError string
}

// Registry holds the configured provider set, their declared capabilities,
// and a live/unavailable status driven by call outcomes and health probes.
// The provider set is a read-only snapshot taken at startup; only liveness
// state mutates afterwards. A provider is never removed at runtime.
type Registry struct {
	threshold int32
	entries   map[string]*entry
	order     map[types.CapabilityTag][]string
	logger    *logrus.Logger
}

// New creates a registry with the given consecutive-failure threshold and
// per-tag candidate priority order.
func New(threshold int, order map[types.CapabilityTag][]string, logger *logrus.Logger) *Registry {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	return &Registry{
		threshold: int32(threshold),
		entries:   make(map[string]*entry),
		order:     order,
		logger:    logger,
	}
}

// Register adds a provider to the startup snapshot. Called only during
// process construction, before any routing happens.
func (r *Registry) Register(desc *types.ProviderDescriptor, p providers.Provider) error {
	if _, exists := r.entries[desc.ID]; exists {
		return &types.ConfigurationError{Field: "providers", Reason: fmt.Sprintf("duplicate provider id %q", desc.ID)}
	}
	r.entries[desc.ID] = &entry{descriptor: desc, provider: p}
	r.logger.WithField("provider", desc.ID).Info("Provider registered")
	return nil
}

// Provider returns the adapter registered under the given id.
func (r *Registry) Provider(id string) (providers.Provider, bool) {
	e, ok := r.entries[id]
	if !ok {
		return nil, false
	}
	return e.provider, true
}

// CandidatesFor returns the live providers configured for the tag, in fixed
// priority order. An empty slice means every candidate is currently
// unavailable; that is a valid state the router resolves with a degraded
// result, not an error.
func (r *Registry) CandidatesFor(tag types.CapabilityTag) []*types.ProviderDescriptor {
	var live []*types.ProviderDescriptor
	for _, id := range r.order[tag] {
		e, ok := r.entries[id]
		if !ok || !e.descriptor.Serves(tag) {
			continue
		}
		if e.unavailable.Load() {
			continue
		}
		live = append(live, e.descriptor)
	}
	return live
}

// ReportOutcome records one call or probe outcome. A success resets the
// consecutive-failure count and marks the provider live; the Nth consecutive
// failure marks it unavailable. Exactly one report per invocation.
func (r *Registry) ReportOutcome(id string, success bool) {
	e, ok := r.entries[id]
	if !ok {
		return
	}

	if success {
		e.failures.Store(0)
		if e.unavailable.Swap(false) {
			r.logger.WithField("provider", id).Info("Provider marked live again")
		}
		return
	}

	n := e.failures.Add(1)
	if n >= r.threshold && !e.unavailable.Swap(true) {
		r.logger.WithFields(logrus.Fields{
			"provider":             id,
			"consecutive_failures": n,
		}).Warn("Provider marked unavailable")
	}
}

// IsLive reports whether the provider is currently routable.
func (r *Registry) IsLive(id string) bool {
	e, ok := r.entries[id]
	return ok && !e.unavailable.Load()
}

// IDs returns all registered provider ids.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	return ids
}

// Health returns a liveness snapshot for every registered provider.
func (r *Registry) Health() map[string]*types.ProviderHealth {
	out := make(map[string]*types.ProviderHealth, len(r.entries))
	for id, e := range r.entries {
		status := "live"
		if e.unavailable.Load() {
			status = "unavailable"
		}
		h := &types.ProviderHealth{
			Status:              status,
			ConsecutiveFailures: int(e.failures.Load()),
		}
		if ns := e.lastChecked.Load(); ns > 0 {
			h.LastChecked = time.Unix(0, ns)
		}
		e.mu.Lock()
		h.LastError = e.lastError
		e.mu.Unlock()
		out[id] = h
	}
	return out
}

// noteProbe records probe bookkeeping outside the atomic liveness path.
func (e *entry) noteProbe(err error) {
	e.lastChecked.Store(time.Now().UnixNano())
	e.mu.Lock()
	if err != nil {
		e.lastError = err.Error()
	} else {
		e.lastError = ""
	}
	e.mu.Unlock()
}
