package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// PaymentEntry is one immutable record of money received against a shipment.
// Amounts never change after creation; corrections are modeled as a void plus
// a new entry. Voided entries stay in the ledger forever.
type PaymentEntry struct {
	ID         uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	ShipmentID uuid.UUID `gorm:"column:shipment_id;type:uuid;not null;index:ix_payment_entries_shipment_id"`

	Amount  decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Method  enums.PaymentMethod  `gorm:"column:method;type:text;not null"`
	Channel enums.PaymentChannel `gorm:"column:channel;type:text;not null"`

	CollectedBy *uuid.UUID `gorm:"column:collected_by;type:uuid"`
	TxnRef      *string    `gorm:"column:txn_ref"`
	Note        *string    `gorm:"column:note"`

	Voided bool `gorm:"column:voided;not null;default:false"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
