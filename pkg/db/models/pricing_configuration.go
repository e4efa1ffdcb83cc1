package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

// PricingConfiguration is a versioned tariff. At most one row is active at a
// time; archived rows stay resolvable by version for historical repricing.
type PricingConfiguration struct {
	ID      uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Version string            `gorm:"column:version;not null;uniqueIndex:ux_pricing_configurations_version"`
	Label   string            `gorm:"column:label;not null"`
	Mode    enums.PricingMode `gorm:"column:mode;type:text;not null;default:'weight'"`

	Currency enums.Currency `gorm:"column:currency;type:text;not null;default:'USD'"`

	// Nil rates mean "not configured", which is distinct from an explicit zero.
	PerKgRate         *decimal.Decimal `gorm:"column:per_kg_rate;type:numeric(12,4)"`
	PerPieceRate      *decimal.Decimal `gorm:"column:per_piece_rate;type:numeric(12,4)"`
	PerCubicCmRate    *decimal.Decimal `gorm:"column:per_cubic_cm_rate;type:numeric(16,8)"`
	PerCubicMeterRate *decimal.Decimal `gorm:"column:per_cubic_meter_rate;type:numeric(12,4)"`

	BaseFee              decimal.Decimal `gorm:"column:base_fee;type:numeric(12,2);not null;default:0"`
	MinCharge            decimal.Decimal `gorm:"column:min_charge;type:numeric(12,2);not null;default:0"`
	TaxPercent           decimal.Decimal `gorm:"column:tax_percent;type:numeric(6,3);not null;default:0"`
	FuelSurchargePercent decimal.Decimal `gorm:"column:fuel_surcharge_percent;type:numeric(6,3);not null;default:0"`
	OtherFees            decimal.Decimal `gorm:"column:other_fees;type:numeric(12,2);not null;default:0"`
	CODFeePercent        decimal.Decimal `gorm:"column:cod_fee_percent;type:numeric(6,3);not null;default:0"`
	CODFeeFloor          decimal.Decimal `gorm:"column:cod_fee_floor;type:numeric(12,2);not null;default:0"`
	VolumetricDivisor    decimal.Decimal `gorm:"column:volumetric_divisor;type:numeric(12,2);not null;default:5000"`

	Zones              types.ZoneOverrides      `gorm:"column:zones;type:jsonb;serializer:json"`
	ServiceMultipliers types.ServiceMultipliers `gorm:"column:service_multipliers;type:jsonb;serializer:json"`

	Active   bool `gorm:"column:active;not null;default:false"`
	Archived bool `gorm:"column:archived;not null;default:false"`

	CreatedBy *uuid.UUID `gorm:"column:created_by;type:uuid"`
	CreatedAt time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}
