package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// LedgerMetrics counts payment ledger and reprice activity.
type LedgerMetrics struct {
	payments *prometheus.CounterVec
	voids    prometheus.Counter
	reprices prometheus.Counter
	denials  *prometheus.CounterVec
}

// NewLedgerMetrics registers the ledger metrics on the provided registerer.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	payments := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_payments_recorded",
		Help: "Payment entries appended to the ledger.",
	}, []string{"method"})
	voids := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ledger_payments_voided",
		Help: "Payment entries voided.",
	})
	reprices := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "shipments_repriced",
		Help: "Reprice runs applied to shipments.",
	})
	denials := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_denials",
		Help: "Ledger operations denied by the authorization guard.",
	}, []string{"operation"})
	reg.MustRegister(payments, voids, reprices, denials)
	return &LedgerMetrics{
		payments: payments,
		voids:    voids,
		reprices: reprices,
		denials:  denials,
	}
}

// IncPayment increments the recorded payment counter for a method.
func (l *LedgerMetrics) IncPayment(method string) {
	if l == nil || l.payments == nil {
		return
	}
	l.payments.WithLabelValues(normalizeLabel(method)).Inc()
}

// IncVoid increments the voided payment counter.
func (l *LedgerMetrics) IncVoid() {
	if l == nil || l.voids == nil {
		return
	}
	l.voids.Inc()
}

// IncReprice increments the reprice counter.
func (l *LedgerMetrics) IncReprice() {
	if l == nil || l.reprices == nil {
		return
	}
	l.reprices.Inc()
}

// IncDenial increments the denial counter for an operation.
func (l *LedgerMetrics) IncDenial(operation string) {
	if l == nil || l.denials == nil {
		return
	}
	l.denials.WithLabelValues(normalizeLabel(operation)).Inc()
}
