package payments

import (
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// RecomputeSummary derives the settlement view from the ledger. It is a pure
// function of total due and the entries: voided rows never count, the balance
// never goes below zero, and the status follows paid/partial/pending.
func RecomputeSummary(totalDue decimal.Decimal, entries []models.PaymentEntry) types.PaymentSummary {
	totalPaid := decimal.Zero
	for _, entry := range entries {
		if entry.Voided {
			continue
		}
		totalPaid = totalPaid.Add(entry.Amount)
	}
	totalPaid = totalPaid.Round(2)

	balance := totalDue.Sub(totalPaid).Round(2)
	if balance.IsNegative() {
		balance = decimal.Zero
	}

	status := enums.PaymentStatusPending
	switch {
	case balance.IsZero() && totalDue.IsPositive():
		status = enums.PaymentStatusPaid
	case totalPaid.IsPositive():
		status = enums.PaymentStatusPartial
	}

	return types.PaymentSummary{
		TotalDue:  totalDue.Round(2),
		TotalPaid: totalPaid,
		Balance:   balance,
		Status:    status,
	}
}

// applySummary copies the derived summary onto the shipment's stored columns.
func applySummary(shipment *models.Shipment, summary types.PaymentSummary) {
	shipment.TotalPaid = summary.TotalPaid
	shipment.Balance = summary.Balance
	shipment.PaymentStatus = summary.Status
}
