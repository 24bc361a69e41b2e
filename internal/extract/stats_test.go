package extract

import (
	"testing"
	"time"
)

func TestTimingsSnapshotPercentiles(t *testing.T) {
	stats := NewTimings()
	for _, ms := range []int64{300, 100, 500, 200, 400} {
		stats.Record(time.Duration(ms) * time.Millisecond)
	}

	snap := stats.Snapshot()
	if snap.Count != 5 {
		t.Fatalf("expected count=5, got %d", snap.Count)
	}
	if snap.MinMs != 100 || snap.MaxMs != 500 {
		t.Fatalf("expected min=100 max=500, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
	if snap.AvgMs != 300 {
		t.Fatalf("expected avg=300, got %f", snap.AvgMs)
	}
	if snap.P50Ms != 300 {
		t.Fatalf("expected p50=300, got %f", snap.P50Ms)
	}
	if snap.P95Ms != 480 {
		t.Fatalf("expected p95=480, got %f", snap.P95Ms)
	}
}

func TestTimingsEmpty(t *testing.T) {
	if snap := NewTimings().Snapshot(); snap.Count != 0 || snap.AvgMs != 0 {
		t.Fatalf("expected zero snapshot, got %+v", snap)
	}
}

func TestTimingsRecordClampsNegativeDuration(t *testing.T) {
	stats := NewTimings()
	stats.Record(-10 * time.Millisecond)
	snap := stats.Snapshot()
	if snap.Count != 1 {
		t.Fatalf("expected count=1, got %d", snap.Count)
	}
	if snap.MinMs != 0 || snap.MaxMs != 0 {
		t.Fatalf("expected clamped duration=0, got min=%d max=%d", snap.MinMs, snap.MaxMs)
	}
}
