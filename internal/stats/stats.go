// Package stats keeps process-wide running counters over resolved
// questions. The recorder is an injectable component rather than ambient
// global state; its lifetime is the process, and outcomes are never rolled
// back once recorded.
package stats

import "sync"

// Outcome of one resolved question.
type Outcome int

const (
	Succeeded Outcome = iota
	Failed
)

// Snapshot is a consistent read of the counters at one instant.
// Succeeded+Failed == Total holds for every snapshot.
type Snapshot struct {
	Total        uint64  `json:"total_queries"`
	Succeeded    uint64  `json:"successful_queries"`
	Failed       uint64  `json:"failed_queries"`
	AvgLatencyMs float64 `json:"avg_response_time"`
	MaxLatencyMs float64 `json:"max_response_time"`
	SuccessRate  float64 `json:"success_rate"`
	ErrorRate    float64 `json:"error_rate"`
}

// Recorder is safe for concurrent use. A single mutex keeps the counters and
// the latency aggregate mutually consistent; it is held only for the few
// arithmetic operations, never across I/O.
type Recorder struct {
	mu        sync.Mutex
	total     uint64
	succeeded uint64
	failed    uint64
	avgMs     float64
	maxMs     float64
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

// Record folds one outcome and its end-to-end latency into the running
// aggregate.
func (r *Recorder) Record(outcome Outcome, latencyMs float64) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.total++
	if outcome == Succeeded {
		r.succeeded++
	} else {
		r.failed++
	}

	// Incremental mean over all completed requests.
	r.avgMs += (latencyMs - r.avgMs) / float64(r.total)
	if latencyMs > r.maxMs {
		r.maxMs = latencyMs
	}
}

// Snapshot returns the counters as of now.
func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Snapshot{
		Total:        r.total,
		Succeeded:    r.succeeded,
		Failed:       r.failed,
		AvgLatencyMs: r.avgMs,
		MaxLatencyMs: r.maxMs,
	}
	if r.total > 0 {
		s.SuccessRate = float64(r.succeeded) / float64(r.total) * 100
		s.ErrorRate = float64(r.failed) / float64(r.total) * 100
	}
	return s
}

// Reset zeroes all counters. Test hook; production code never resets.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.total, r.succeeded, r.failed = 0, 0, 0
	r.avgMs, r.maxMs = 0, 0
}
