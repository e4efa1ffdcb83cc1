package types

import (
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// ChargeBreakdown itemizes the components of a shipment's price. All values
// are rounded to 2 decimal places.
type ChargeBreakdown struct {
	BaseCharge    decimal.Decimal `json:"base_charge"`
	ServiceCharge decimal.Decimal `json:"service_charge"`
	FuelSurcharge decimal.Decimal `json:"fuel_surcharge"`
	OtherFees     decimal.Decimal `json:"other_fees"`
	CODFee        decimal.Decimal `json:"cod_fee"`
}

// PaymentSummary is the derived settlement view over a shipment's ledger.
// It is recomputed from non-voided entries on every ledger mutation and is
// never the sole source of truth.
type PaymentSummary struct {
	TotalDue  decimal.Decimal     `json:"total_due"`
	TotalPaid decimal.Decimal     `json:"total_paid"`
	Balance   decimal.Decimal     `json:"balance"`
	Status    enums.PaymentStatus `json:"status"`
}
