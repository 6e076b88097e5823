package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecording(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.Verdict("TRUE")
	m.Verdict("TRUE")
	m.Observable("FileObject", "FALSE")
	m.MemoHit()
	m.Artifacts(1000, true)
	m.Artifacts(3, false)
	m.IndicatorDuration(20 * time.Millisecond)

	if v := testutil.ToFloat64(m.Verdicts.WithLabelValues("TRUE")); v != 2 {
		t.Fatalf("expected 2 true verdicts, got %v", v)
	}
	if v := testutil.ToFloat64(m.Observables.WithLabelValues("FileObject", "FALSE")); v != 1 {
		t.Fatalf("expected 1 file evaluation, got %v", v)
	}
	if v := testutil.ToFloat64(m.MemoHits); v != 1 {
		t.Fatalf("expected 1 memo hit, got %v", v)
	}
	if v := testutil.ToFloat64(m.ArtifactsCreated); v != 1003 {
		t.Fatalf("expected 1003 artifacts, got %v", v)
	}
	if v := testutil.ToFloat64(m.CapHits); v != 1 {
		t.Fatalf("expected 1 cap hit, got %v", v)
	}
	if n := testutil.CollectAndCount(m.IndicatorSeconds); n != 1 {
		t.Fatalf("expected histogram to be collected, got %d", n)
	}
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.Verdict("TRUE")
	m.Observable("URIObject", "TRUE")
	m.MemoHit()
	m.Artifacts(1, true)
	m.IndicatorDuration(time.Second)
}

func TestDoubleRegistrationPanics(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)
	defer func() {
		if recover() == nil {
			t.Fatal("expected duplicate registration to panic")
		}
	}()
	New(reg)
}
