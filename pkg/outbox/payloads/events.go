package payloads

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// ShipmentCreatedEvent signals a new shipment was registered.
type ShipmentCreatedEvent struct {
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	TrackingNumber string          `json:"tracking_number"`
	OwnerID        uuid.UUID       `json:"owner_id"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Currency       enums.Currency  `json:"currency"`
	NeedsReprice   bool            `json:"needs_reprice"`
}

// ShipmentRepricedEvent is emitted after charges were recomputed and saved.
type ShipmentRepricedEvent struct {
	ShipmentID     uuid.UUID       `json:"shipment_id"`
	TrackingNumber string          `json:"tracking_number"`
	PricingVersion string          `json:"pricing_version"`
	GrandTotal     decimal.Decimal `json:"grand_total"`
	Currency       enums.Currency  `json:"currency"`
}

// ShipmentCancelledEvent is emitted when a shipment reaches the cancelled state.
type ShipmentCancelledEvent struct {
	ShipmentID  uuid.UUID `json:"shipment_id"`
	Reason      string    `json:"reason,omitempty"`
	CancelledAt time.Time `json:"cancelled_at"`
}

// StatusChangedEvent reports a lifecycle transition.
type StatusChangedEvent struct {
	ShipmentID uuid.UUID            `json:"shipment_id"`
	From       enums.ShipmentStatus `json:"from"`
	To         enums.ShipmentStatus `json:"to"`
}

// PaymentRecordedEvent is emitted after a ledger entry was appended.
type PaymentRecordedEvent struct {
	ShipmentID uuid.UUID           `json:"shipment_id"`
	EntryID    uuid.UUID           `json:"entry_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Method     enums.PaymentMethod `json:"method"`
	Balance    decimal.Decimal     `json:"balance"`
	Status     enums.PaymentStatus `json:"status"`
}

// PaymentVoidedEvent is emitted after a ledger entry was voided.
type PaymentVoidedEvent struct {
	ShipmentID uuid.UUID           `json:"shipment_id"`
	EntryID    uuid.UUID           `json:"entry_id"`
	Amount     decimal.Decimal     `json:"amount"`
	Balance    decimal.Decimal     `json:"balance"`
	Status     enums.PaymentStatus `json:"status"`
}

// BalanceSettledEvent is emitted when a settle operation paid off the balance.
type BalanceSettledEvent struct {
	ShipmentID uuid.UUID       `json:"shipment_id"`
	EntryID    uuid.UUID       `json:"entry_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// InvoiceRequestedEvent asks the dispatch worker to render and deliver an
// invoice for the shipment's current charge state.
type InvoiceRequestedEvent struct {
	ShipmentID     uuid.UUID `json:"shipment_id"`
	TrackingNumber string    `json:"tracking_number"`
	Trigger        string    `json:"trigger"`
}
