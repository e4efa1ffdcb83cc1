package payments

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// AddPaymentInput records money received against a shipment.
type AddPaymentInput struct {
	Amount  decimal.Decimal      `json:"amount" validate:"required"`
	Method  enums.PaymentMethod  `json:"method" validate:"required"`
	Channel enums.PaymentChannel `json:"channel" validate:"required"`
	TxnRef  *string              `json:"txn_ref"`
	Note    *string              `json:"note"`
}

// SettleBalanceInput pays off the exact remaining balance.
type SettleBalanceInput struct {
	Method  enums.PaymentMethod  `json:"method" validate:"required"`
	Channel enums.PaymentChannel `json:"channel" validate:"required"`
	TxnRef  *string              `json:"txn_ref"`
}

// VoidPaymentInput voids one ledger entry.
type VoidPaymentInput struct {
	EntryID uuid.UUID `json:"entry_id" validate:"required"`
	Reason  string    `json:"reason"`
}

// ChangeMethodInput updates the stored payment preference.
type ChangeMethodInput struct {
	Method  *enums.PaymentMethod  `json:"method"`
	Channel *enums.PaymentChannel `json:"channel"`
}
