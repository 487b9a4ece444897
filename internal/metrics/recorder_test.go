package metrics

import (
	"testing"
	"time"

	prom "github.com/prometheus/client_golang/prometheus"
)

func TestPrometheusRecorder(t *testing.T) {
	reg := prom.NewRegistry()
	pr := NewPrometheusRecorder(reg)
	pr.ObserveStageDuration("run-cmake", 150*time.Millisecond)
	pr.ObserveBuildDuration(500 * time.Millisecond)
	pr.IncStageResult("run-cmake", ResultSuccess)
	pr.IncBuildOutcome("success")
	pr.IncRebuildTrigger("watch")
	pr.IncLinkFindings(3)
	// Basic scrape to ensure metrics encode without panic
	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(mfs) == 0 {
		t.Fatalf("expected metrics, got none")
	}
}

func TestNilRecorderSafety(t *testing.T) {
	var pr *PrometheusRecorder
	// Methods must tolerate a nil receiver so callers can inject optionally.
	pr.ObserveStageDuration("x", time.Second)
	pr.ObserveBuildDuration(time.Second)
	pr.IncStageResult("x", ResultFatal)
	pr.IncBuildOutcome("failed")
	pr.IncRebuildTrigger("schedule")
	pr.IncLinkFindings(1)
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NoopRecorder{}
	r.ObserveStageDuration("x", time.Second)
	r.IncBuildOutcome("success")
}
