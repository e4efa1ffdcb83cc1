package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
)

// Shipment carries the pricing/payment slice of a consignment. Charge fields
// reflect the last successful pricing run against PricingVersion unless
// NeedsReprice is set. Rows are never deleted; cancellation is a terminal
// status.
type Shipment struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TrackingNumber string    `gorm:"column:tracking_number;not null;uniqueIndex:ux_shipments_tracking_number"`

	OwnerID         uuid.UUID  `gorm:"column:owner_id;type:uuid;not null"`
	PickupAgentID   *uuid.UUID `gorm:"column:pickup_agent_id;type:uuid"`
	DeliveryAgentID *uuid.UUID `gorm:"column:delivery_agent_id;type:uuid"`

	// Box selection: a preset catalog code, or custom dimensions.
	BoxCode        *string          `gorm:"column:box_code"`
	CustomLengthCm *decimal.Decimal `gorm:"column:custom_length_cm;type:numeric(10,2)"`
	CustomWidthCm  *decimal.Decimal `gorm:"column:custom_width_cm;type:numeric(10,2)"`
	CustomHeightCm *decimal.Decimal `gorm:"column:custom_height_cm;type:numeric(10,2)"`

	DeclaredWeightKg decimal.Decimal `gorm:"column:declared_weight_kg;type:numeric(12,4);not null;default:0"`
	PieceCount       int             `gorm:"column:piece_count;not null;default:1"`
	ServiceType      string          `gorm:"column:service_type;not null;default:'standard'"`
	Zone             *string         `gorm:"column:zone"`

	IsCOD     bool            `gorm:"column:is_cod;not null;default:false"`
	CODAmount decimal.Decimal `gorm:"column:cod_amount;type:numeric(12,2);not null;default:0"`

	Currency enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`

	// Derived weight and charge fields.
	VolumetricWeightKg decimal.Decimal `gorm:"column:volumetric_weight_kg;type:numeric(12,4);not null;default:0"`
	ChargeableWeightKg decimal.Decimal `gorm:"column:chargeable_weight_kg;type:numeric(12,4);not null;default:0"`
	BaseCharge         decimal.Decimal `gorm:"column:base_charge;type:numeric(12,2);not null;default:0"`
	ServiceCharge      decimal.Decimal `gorm:"column:service_charge;type:numeric(12,2);not null;default:0"`
	FuelSurcharge      decimal.Decimal `gorm:"column:fuel_surcharge;type:numeric(12,2);not null;default:0"`
	OtherFees          decimal.Decimal `gorm:"column:other_fees;type:numeric(12,2);not null;default:0"`
	CODFee             decimal.Decimal `gorm:"column:cod_fee;type:numeric(12,2);not null;default:0"`
	Tax                decimal.Decimal `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	GrandTotal         decimal.Decimal `gorm:"column:grand_total;type:numeric(12,2);not null;default:0"`

	PricingVersion *string `gorm:"column:pricing_version"`
	NeedsReprice   bool    `gorm:"column:needs_reprice;not null;default:false"`

	Status enums.ShipmentStatus `gorm:"column:status;type:text;not null;default:'created'"`

	// Payment preference plus the derived ledger summary.
	PreferredMethod  enums.PaymentMethod  `gorm:"column:preferred_method;type:text;not null;default:'cash'"`
	PreferredChannel enums.PaymentChannel `gorm:"column:preferred_channel;type:text;not null;default:'office'"`
	TotalPaid        decimal.Decimal      `gorm:"column:total_paid;type:numeric(12,2);not null;default:0"`
	Balance          decimal.Decimal      `gorm:"column:balance;type:numeric(12,2);not null;default:0"`
	PaymentStatus    enums.PaymentStatus  `gorm:"column:payment_status;type:text;not null;default:'pending'"`

	CancelReason *string    `gorm:"column:cancel_reason"`
	CancelledBy  *uuid.UUID `gorm:"column:cancelled_by;type:uuid"`
	CancelledAt  *time.Time `gorm:"column:cancelled_at"`

	// Optimistic concurrency token; bumped on every guarded save.
	LockVersion int `gorm:"column:lock_version;not null;default:0"`

	Payments []PaymentEntry `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	Logs     []ShipmentLog  `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`

	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}
