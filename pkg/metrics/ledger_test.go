package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestLedgerMetricsCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncSuccess("delivery")
	m.IncSuccess("delivery")
	m.IncFailure("sale", "INSUFFICIENT_STOCK")
	m.ObserveDuration("delivery", 25*time.Millisecond)

	if got := testutil.ToFloat64(m.success.WithLabelValues("delivery")); got != 2 {
		t.Fatalf("expected 2 delivery successes, got %v", got)
	}
	if got := testutil.ToFloat64(m.failure.WithLabelValues("sale", "INSUFFICIENT_STOCK")); got != 1 {
		t.Fatalf("expected 1 sale failure, got %v", got)
	}
}

func TestLedgerMetricsNilSafe(t *testing.T) {
	var m *LedgerMetrics
	m.IncSuccess("delivery")
	m.IncFailure("waste", "CONFLICT")
	m.ObserveDuration("sale", time.Second)

	empty := NewLedgerMetrics(nil)
	empty.IncSuccess("delivery")
}
