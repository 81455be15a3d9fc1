package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics

	m.StoreWrite("set", ResultApplied)
	m.PersistOp("local", "set", ResultApplied)
	m.BusDispatch("localStorage.setItem")
	m.BusListeners(3)
	m.Render()
	m.RenderStorm()
}

func TestMetricsRecord(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(WithRegistry(reg), WithNamespace("test"))

	m.StoreWrite("set", ResultApplied)
	m.StoreWrite("set", ResultApplied)
	m.StoreWrite("set", ResultSuppressed)
	m.PersistOp("", "set", ResultApplied)
	m.BusDispatch("localStorage.setItem")
	m.BusListeners(2)
	m.Render()

	if got := testutil.ToFloat64(m.storeWrites.WithLabelValues("set", ResultApplied)); got != 2 {
		t.Errorf("applied writes: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.storeWrites.WithLabelValues("set", ResultSuppressed)); got != 1 {
		t.Errorf("suppressed writes: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.persistOps.WithLabelValues("generic", "set", ResultApplied)); got != 1 {
		t.Errorf("generic persist ops: got %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.busListeners); got != 2 {
		t.Errorf("listeners: got %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.renders); got != 1 {
		t.Errorf("renders: got %v, want 1", got)
	}

	count, err := testutil.GatherAndCount(reg)
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if count == 0 {
		t.Error("expected registered series")
	}
}
