package stats_test

import (
	"sync"
	"testing"

	"github.com/sageql/sageql/internal/stats"
)

func TestRecorderCounts(t *testing.T) {
	r := stats.NewRecorder()

	r.Record(stats.Succeeded, 100)
	r.Record(stats.Succeeded, 200)
	r.Record(stats.Failed, 50)

	s := r.Snapshot()
	if s.Total != 3 || s.Succeeded != 2 || s.Failed != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", s.Total, s.Succeeded, s.Failed)
	}
	if s.AvgLatencyMs < 116 || s.AvgLatencyMs > 117 {
		t.Errorf("AvgLatencyMs = %f, want ~116.67", s.AvgLatencyMs)
	}
	if s.MaxLatencyMs != 200 {
		t.Errorf("MaxLatencyMs = %f, want 200", s.MaxLatencyMs)
	}
	if s.SuccessRate < 66 || s.SuccessRate > 67 {
		t.Errorf("SuccessRate = %f, want ~66.67", s.SuccessRate)
	}
}

func TestRecorderEmptySnapshot(t *testing.T) {
	s := stats.NewRecorder().Snapshot()
	if s.Total != 0 || s.AvgLatencyMs != 0 || s.SuccessRate != 0 || s.ErrorRate != 0 {
		t.Errorf("zero recorder snapshot not zeroed: %+v", s)
	}
}

func TestRecorderConcurrent(t *testing.T) {
	r := stats.NewRecorder()

	const workers = 8
	const perWorker = 250

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if i%2 == 0 {
					r.Record(stats.Succeeded, float64(i))
				} else {
					r.Record(stats.Failed, float64(i))
				}
			}
		}(w)
	}
	wg.Wait()

	s := r.Snapshot()
	if s.Total != workers*perWorker {
		t.Errorf("Total = %d, want %d", s.Total, workers*perWorker)
	}
	if s.Succeeded+s.Failed != s.Total {
		t.Errorf("Succeeded+Failed = %d, want Total %d", s.Succeeded+s.Failed, s.Total)
	}
}

func TestRecorderReset(t *testing.T) {
	r := stats.NewRecorder()
	r.Record(stats.Succeeded, 100)
	r.Record(stats.Failed, 100)

	r.Reset()

	s := r.Snapshot()
	if s.Total != 0 || s.Succeeded != 0 || s.Failed != 0 || s.AvgLatencyMs != 0 || s.MaxLatencyMs != 0 {
		t.Errorf("snapshot after reset not zeroed: %+v", s)
	}

	// Recorder keeps working after a reset.
	r.Record(stats.Succeeded, 10)
	if s := r.Snapshot(); s.Total != 1 {
		t.Errorf("Total after post-reset record = %d, want 1", s.Total)
	}
}
