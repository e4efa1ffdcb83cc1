package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestDispatchMetricsNilSafe(t *testing.T) {
	var m *DispatchMetrics
	m.ObserveDuration("email", time.Second)
	m.IncSuccess("email")
	m.IncFailure("whatsapp")

	empty := NewDispatchMetrics(nil)
	empty.ObserveDuration("email", time.Second)
	empty.IncSuccess("email")
}

func TestDispatchMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDispatchMetrics(reg)

	m.ObserveDuration("email", 250*time.Millisecond)
	m.IncSuccess("email")
	m.IncFailure("")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 3 {
		t.Fatalf("metric families = %d, want 3", len(families))
	}
}

func TestLedgerMetricsRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewLedgerMetrics(reg)

	m.IncPayment("cash")
	m.IncVoid()
	m.IncReprice()
	m.IncDenial("add_payment")

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) != 4 {
		t.Fatalf("metric families = %d, want 4", len(families))
	}
}
