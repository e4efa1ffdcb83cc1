package pricing

import (
	"github.com/shopspring/decimal"

	"github.com/swiftparcel/courierdesk-backend/internal/boxes"
	"github.com/swiftparcel/courierdesk-backend/pkg/db/models"
	pkgerrors "github.com/swiftparcel/courierdesk-backend/pkg/errors"
	"github.com/swiftparcel/courierdesk-backend/pkg/enums"
	"github.com/swiftparcel/courierdesk-backend/pkg/types"
)

var (
	one      = decimal.NewFromInt(1)
	hundred  = decimal.NewFromInt(100)
	cm3PerM3 = decimal.NewFromInt(1_000_000)
)

// Inputs carries the shipment attributes pricing depends on.
type Inputs struct {
	Selection        boxes.Selection
	DeclaredWeightKg decimal.Decimal
	PieceCount       int
	ServiceType      string
	Zone             *string
	IsCOD            bool
	CODAmount        decimal.Decimal
}

// Quote is the pre-tax pricing result. Callers that persist charges apply
// TaxPercent on top of GrandTotal; the calculator never bakes tax into the
// breakdown.
type Quote struct {
	VolumetricWeightKg decimal.Decimal       `json:"volumetric_weight_kg"`
	ChargeableWeightKg decimal.Decimal       `json:"chargeable_weight_kg"`
	Breakdown          types.ChargeBreakdown `json:"breakdown"`
	GrandTotal         decimal.Decimal       `json:"grand_total"`
	Currency           enums.Currency        `json:"currency"`
	TaxPercent         decimal.Decimal       `json:"tax_percent"`
	PricingVersion     string                `json:"pricing_version"`
}

// zoneOrDefault resolves an effective rate: the zone override when the
// shipment names a zone that carries one, otherwise the configuration value.
// A nil result means the rate is not configured at either level, which is
// distinct from an explicit zero.
func zoneOrDefault(cfg *models.PricingConfiguration, zone *string, pick func(types.ZoneRate) *decimal.Decimal, fallback *decimal.Decimal) *decimal.Decimal {
	if zone != nil && *zone != "" && cfg.Zones != nil {
		if zr, ok := cfg.Zones[*zone]; ok {
			if v := pick(zr); v != nil {
				return v
			}
		}
	}
	return fallback
}

func orZero(d *decimal.Decimal) decimal.Decimal {
	if d == nil {
		return decimal.Zero
	}
	return *d
}

// ComputeTotals prices a shipment against a configuration. It is pure: no
// I/O, deterministic for identical inputs. Each monetary component is rounded
// to 2 decimal places before summation.
func ComputeTotals(in Inputs, cfg *models.PricingConfiguration) (Quote, error) {
	if cfg == nil {
		return Quote{}, pkgerrors.New(pkgerrors.CodePricingUnavailable, "no pricing configuration supplied")
	}

	weights, err := ResolveWeights(in.Selection, in.DeclaredWeightKg, cfg.VolumetricDivisor)
	if err != nil {
		return Quote{}, err
	}

	var subtotal decimal.Decimal
	switch cfg.Mode {
	case enums.PricingModeVolume:
		subtotal = volumeSubtotal(in, weights, cfg)
	default:
		subtotal = weightSubtotal(in, weights, cfg)
	}

	multiplier := one
	if cfg.ServiceMultipliers != nil && in.ServiceType != "" {
		if m, ok := cfg.ServiceMultipliers[in.ServiceType]; ok && m.IsPositive() {
			multiplier = m
		}
	}
	serviceCharge := round2(subtotal.Mul(multiplier.Sub(one)))
	afterService := subtotal.Add(serviceCharge)

	fuelSurcharge := round2(afterService.Mul(cfg.FuelSurchargePercent).Div(hundred))
	otherFees := round2(cfg.OtherFees)

	codFee := decimal.Zero
	if in.IsCOD && in.CODAmount.IsPositive() {
		codFee = round2(maxDecimal(cfg.CODFeeFloor, in.CODAmount.Mul(cfg.CODFeePercent).Div(hundred)))
	}

	return Quote{
		VolumetricWeightKg: weights.VolumetricWeightKg,
		ChargeableWeightKg: weights.ChargeableWeightKg,
		Breakdown: types.ChargeBreakdown{
			BaseCharge:    subtotal,
			ServiceCharge: serviceCharge,
			FuelSurcharge: fuelSurcharge,
			OtherFees:     otherFees,
			CODFee:        codFee,
		},
		GrandTotal:     round2(afterService.Add(fuelSurcharge).Add(otherFees).Add(codFee)),
		Currency:       cfg.Currency,
		TaxPercent:     cfg.TaxPercent,
		PricingVersion: cfg.Version,
	}, nil
}

// Tax returns the flat tax on the after-service amount. Surcharges and fees
// stay outside the tax base.
func (q Quote) Tax() decimal.Decimal {
	afterService := q.Breakdown.BaseCharge.Add(q.Breakdown.ServiceCharge)
	return round2(afterService.Mul(q.TaxPercent).Div(hundred))
}

// TotalWithTax is the amount a shipment actually owes: the pre-tax grand
// total plus tax.
func (q Quote) TotalWithTax() decimal.Decimal {
	return round2(q.GrandTotal.Add(q.Tax()))
}

// ApplyTo writes the quote's derived fields onto a shipment and clears its
// reprice flag. The caller persists the shipment.
func (q Quote) ApplyTo(s *models.Shipment) {
	version := q.PricingVersion
	s.VolumetricWeightKg = q.VolumetricWeightKg
	s.ChargeableWeightKg = q.ChargeableWeightKg
	s.BaseCharge = q.Breakdown.BaseCharge
	s.ServiceCharge = q.Breakdown.ServiceCharge
	s.FuelSurcharge = q.Breakdown.FuelSurcharge
	s.OtherFees = q.Breakdown.OtherFees
	s.CODFee = q.Breakdown.CODFee
	s.Tax = q.Tax()
	s.GrandTotal = q.TotalWithTax()
	s.Currency = q.Currency
	s.PricingVersion = &version
	s.NeedsReprice = false
}

func weightSubtotal(in Inputs, weights WeightBreakdown, cfg *models.PricingConfiguration) decimal.Decimal {
	perKg := zoneOrDefault(cfg, in.Zone, func(z types.ZoneRate) *decimal.Decimal { return z.PerKgRate }, cfg.PerKgRate)
	perPiece := zoneOrDefault(cfg, in.Zone, func(z types.ZoneRate) *decimal.Decimal { return z.PerPieceRate }, cfg.PerPieceRate)
	minCharge := zoneOrDefault(cfg, in.Zone, func(z types.ZoneRate) *decimal.Decimal { return z.MinCharge }, &cfg.MinCharge)

	baseFromWeight := round2(weights.ChargeableWeightKg.Mul(orZero(perKg)))
	baseFromPieces := round2(decimal.NewFromInt(int64(in.PieceCount)).Mul(orZero(perPiece)))

	return round2(maxDecimal(baseFromWeight.Add(baseFromPieces), orZero(minCharge)))
}

func volumeSubtotal(in Inputs, weights WeightBreakdown, cfg *models.PricingConfiguration) decimal.Decimal {
	baseFee := zoneOrDefault(cfg, in.Zone, func(z types.ZoneRate) *decimal.Decimal { return z.BaseFee }, &cfg.BaseFee)
	minCharge := zoneOrDefault(cfg, in.Zone, func(z types.ZoneRate) *decimal.Decimal { return z.MinCharge }, &cfg.MinCharge)

	// Exactly one per-volume rate is expected; with neither configured the
	// subtotal collapses to the base fee.
	volumeCharge := decimal.Zero
	volumeCm3 := weights.Dimensions.VolumeCm3()
	if cfg.PerCubicCmRate != nil {
		volumeCharge = round2(volumeCm3.Mul(*cfg.PerCubicCmRate))
	} else if cfg.PerCubicMeterRate != nil {
		volumeCharge = round2(volumeCm3.Div(cm3PerM3).Mul(*cfg.PerCubicMeterRate))
	}

	return round2(maxDecimal(volumeCharge.Add(orZero(baseFee)), orZero(minCharge)))
}
