package payments

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

func dec(v string) decimal.Decimal { return decimal.RequireFromString(v) }

func entry(amount string, voided bool) models.PaymentEntry {
	return models.PaymentEntry{Amount: dec(amount), Voided: voided}
}

func TestRecomputeSummaryStatuses(t *testing.T) {
	cases := []struct {
		name      string
		totalDue  string
		entries   []models.PaymentEntry
		totalPaid string
		balance   string
		status    enums.PaymentStatus
	}{
		{"no payments", "150", nil, "0", "150", enums.PaymentStatusPending},
		{"partial", "150", []models.PaymentEntry{entry("100", false)}, "100", "50", enums.PaymentStatusPartial},
		{"paid exactly", "150", []models.PaymentEntry{entry("100", false), entry("50", false)}, "150", "0", enums.PaymentStatusPaid},
		{"voided ignored", "150", []models.PaymentEntry{entry("100", true)}, "0", "150", enums.PaymentStatusPending},
		{"overpaid floors at zero", "150", []models.PaymentEntry{entry("200", false)}, "200", "0", enums.PaymentStatusPaid},
		{"zero due stays pending", "0", nil, "0", "0", enums.PaymentStatusPending},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			summary := RecomputeSummary(dec(tc.totalDue), tc.entries)
			if !summary.TotalPaid.Equal(dec(tc.totalPaid)) {
				t.Fatalf("total paid = %s, want %s", summary.TotalPaid, tc.totalPaid)
			}
			if !summary.Balance.Equal(dec(tc.balance)) {
				t.Fatalf("balance = %s, want %s", summary.Balance, tc.balance)
			}
			if summary.Status != tc.status {
				t.Fatalf("status = %s, want %s", summary.Status, tc.status)
			}
		})
	}
}

func TestRecomputeSummaryConservation(t *testing.T) {
	totalDue := dec("500")
	entries := []models.PaymentEntry{
		entry("120.55", false),
		entry("80", true),
		entry("0.45", false),
		entry("199", false),
	}
	summary := RecomputeSummary(totalDue, entries)
	if !summary.TotalPaid.Add(summary.Balance).Equal(totalDue) {
		t.Fatalf("paid %s + balance %s should equal due %s", summary.TotalPaid, summary.Balance, totalDue)
	}
}

func TestVoidReopensBalance(t *testing.T) {
	totalDue := dec("150")
	entries := []models.PaymentEntry{entry("100", false), entry("50", false)}
	paid := RecomputeSummary(totalDue, entries)
	if paid.Status != enums.PaymentStatusPaid {
		t.Fatalf("precondition: status = %s, want paid", paid.Status)
	}

	entries[0].Voided = true
	after := RecomputeSummary(totalDue, entries)
	if !after.Balance.Equal(dec("100")) {
		t.Fatalf("balance after void = %s, want 100", after.Balance)
	}
	if after.Status != enums.PaymentStatusPartial {
		t.Fatalf("status after void = %s, want partial", after.Status)
	}
}
