package metrics

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveHelpers(t *testing.T) {
	Init(nil, nil)

	before := testutil.ToFloat64(stageRunsTotal.WithLabelValues("update", ResultSuccess))
	ObserveStage("update", "", 250*time.Millisecond)
	if got := testutil.ToFloat64(stageRunsTotal.WithLabelValues("update", ResultSuccess)); got != before+1 {
		t.Fatalf("expected stage counter %v, got %v", before+1, got)
	}

	IncUpdateDecision("skip")
	if got := testutil.ToFloat64(updateDecisions.WithLabelValues("skip")); got < 1 {
		t.Fatalf("decision counter not incremented")
	}

	SetRecords("upload", 144)
	if got := testutil.ToFloat64(recordsProduced.WithLabelValues("upload")); got != 144 {
		t.Fatalf("expected 144 records, got %v", got)
	}

	staleBefore := testutil.ToFloat64(staleComparisons)
	IncStaleComparison()
	if got := testutil.ToFloat64(staleComparisons); got != staleBefore+1 {
		t.Fatalf("stale counter not incremented")
	}
}

func TestPush(t *testing.T) {
	Init(nil, nil)
	ObserveExport("csv", ResultSuccess, time.Millisecond)

	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	if err := Push(context.Background(), server.URL, "energy_test"); err != nil {
		t.Fatalf("push: %v", err)
	}
	if !strings.Contains(path, "/metrics/job/energy_test") {
		t.Fatalf("unexpected push path %q", path)
	}
	if err := Push(context.Background(), "", "ignored"); err != nil {
		t.Fatalf("empty url should be a no-op: %v", err)
	}
}

func TestResultLabels(t *testing.T) {
	Init(nil, nil)

	before := testutil.ToFloat64(notifyTotal.WithLabelValues("success"))
	IncNotify("")
	if got := testutil.ToFloat64(notifyTotal.WithLabelValues(ResultSuccess)); got != before+1 {
		t.Fatalf("empty result should count as %q", ResultSuccess)
	}

	errBefore := testutil.ToFloat64(exportTotal.WithLabelValues("pdf", "error"))
	ObserveExport("pdf", ResultError, time.Millisecond)
	if got := testutil.ToFloat64(exportTotal.WithLabelValues("pdf", "error")); got != errBefore+1 {
		t.Fatalf("expected error label %q to be recorded", ResultError)
	}
}
