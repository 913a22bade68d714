package transparency

import (
	"strconv"
	"sync"
	"time"

	"github.com/skillmesh/ai-orchestrator/internal/types"
)

// AlgorithmVersion tags every transparency record with the scoring and
// routing algorithm revision that produced it.
const AlgorithmVersion = "orchestrator/v1.2"

// DefaultRetention is how many recent records are kept addressable by
// request id.
const DefaultRetention = 1024

// Explain assembles the transparency record for one served request. Pure
// aggregation of data the router and scoring engine already computed; it
// never re-derives a score.
func Explain(task *types.TaskRequest, provider string, result *types.NormalizedResult, breakdown *types.ScoreBreakdown) *types.TransparencyRecord {
	rec := &types.TransparencyRecord{
		RequestID:        task.ID,
		Provider:         provider,
		Tag:              task.Tag,
		Breakdown:        breakdown,
		Confidence:       result.Confidence,
		Degraded:         result.Degraded,
		AlgorithmVersion: AlgorithmVersion,
		Timestamp:        time.Now().UTC(),
	}
	if breakdown != nil {
		for _, f := range breakdown.Factors {
			rec.FactorNotes = append(rec.FactorNotes, factorNote(f))
		}
	}
	return rec
}

func factorNote(f types.FactorContribution) string {
	return f.Factor + ": weight " + strconv.FormatFloat(f.Weight, 'f', 2, 64) +
		", sub-score " + strconv.FormatFloat(f.SubScore, 'f', 3, 64) +
		", contributed " + strconv.FormatFloat(f.Contribution, 'f', 3, 64)
}

// Reporter retains recent transparency records and the only externally
// queryable aggregates the engine maintains: per-provider usage, degraded
// rate, average confidence.
type Reporter struct {
	mu        sync.RWMutex
	records   map[string]*types.TransparencyRecord
	fifo      []string
	retention int

	total         int64
	degraded      int64
	confidenceSum float64
	usage         map[string]*types.ProviderStats
}

// NewReporter creates a reporter retaining the given number of records.
func NewReporter(retention int) *Reporter {
	if retention <= 0 {
		retention = DefaultRetention
	}
	return &Reporter{
		records:   make(map[string]*types.TransparencyRecord),
		retention: retention,
		usage:     make(map[string]*types.ProviderStats),
	}
}

// Observe records one served request into the aggregates and the bounded
// per-request retention window.
func (r *Reporter) Observe(rec *types.TransparencyRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	r.confidenceSum += rec.Confidence
	if rec.Degraded {
		r.degraded++
	}
	r.stats(rec.Provider).Served++

	r.records[rec.RequestID] = rec
	r.fifo = append(r.fifo, rec.RequestID)
	for len(r.fifo) > r.retention {
		delete(r.records, r.fifo[0])
		r.fifo = r.fifo[1:]
	}
}

// ObserveOutcome records one provider invocation attempt, success or failure.
func (r *Reporter) ObserveOutcome(provider string, success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := r.stats(provider)
	if success {
		s.Successes++
	} else {
		s.Failures++
	}
}

// Get returns the retained record for a request id, if still held.
func (r *Reporter) Get(requestID string) (*types.TransparencyRecord, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rec, ok := r.records[requestID]
	return rec, ok
}

// Report returns the aggregate statistics snapshot.
func (r *Reporter) Report() *types.AggregateReport {
	r.mu.RLock()
	defer r.mu.RUnlock()

	report := &types.AggregateReport{
		TotalRequests:    r.total,
		DegradedRequests: r.degraded,
		ProviderUsage:    make(map[string]*types.ProviderStats, len(r.usage)),
		GeneratedAt:      time.Now().UTC(),
	}
	if r.total > 0 {
		report.DegradedRate = float64(r.degraded) / float64(r.total)
		report.AverageConfidence = r.confidenceSum / float64(r.total)
	}
	for id, s := range r.usage {
		copied := *s
		report.ProviderUsage[id] = &copied
	}
	return report
}

// stats returns the mutable stats bucket for a provider; callers hold r.mu.
func (r *Reporter) stats(provider string) *types.ProviderStats {
	s, ok := r.usage[provider]
	if !ok {
		s = &types.ProviderStats{}
		r.usage[provider] = s
	}
	return s
}
